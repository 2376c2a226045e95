package upspa

import (
	"io"

	ristretto "github.com/gtank/ristretto255"
	"golang.org/x/crypto/chacha20"
)

// chachaRNG is a seeded, deterministic CSPRNG-shaped io.Reader built on the
// ChaCha20 stream cipher: it XORs a zero-filled buffer with the keystream,
// i.e. it returns the raw keystream itself. It is reentrant and holds no
// state beyond the underlying cipher's stream position, matching spec.md
// §5's "reentrant, no shared mutable state, explicit RNG per call".
//
// Production code MUST use an OS-backed CSPRNG (crypto/rand.Reader); this
// type exists only for reproducible tests and for the reference CLI's
// --seed-hex flag.
type chachaRNG struct {
	cipher *chacha20.Cipher
}

// DeterministicRNG returns a seeded ChaCha20-stream io.Reader. The same seed
// always produces the same byte stream, which is what lets the testable
// properties in spec.md §8 be reproduced exactly.
func DeterministicRNG(seed [32]byte) io.Reader {
	var nonce [chacha20.NonceSize]byte // all-zero nonce: the seed is the only entropy input
	c, err := chacha20.NewUnauthenticatedCipher(seed[:], nonce[:])
	if err != nil {
		panic(err) // seed/nonce sizes are fixed and always valid here
	}
	return &chachaRNG{cipher: c}
}

func (r *chachaRNG) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	r.cipher.XORKeyStream(p, p)
	return len(p), nil
}

// randomScalar rejection-samples a uniform non-zero Ristretto255 scalar:
// draw 64 uniform bytes, reduce mod L, and retry on the (astronomically
// unlikely) zero result.
func randomScalar(rng io.Reader) (*ristretto.Scalar, error) {
	for {
		var wide [64]byte
		if _, err := io.ReadFull(rng, wide[:]); err != nil {
			return nil, err
		}
		s := ristretto.NewScalar().FromUniformBytes(wide[:])
		if s.Equal(ristretto.NewScalar()) == 0 {
			return s, nil
		}
	}
}

// randomBytes draws n cryptographically random bytes from rng.
func randomBytes(rng io.Reader, n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rng, b); err != nil {
		return nil, err
	}
	return b, nil
}
