package upspa

import (
	"io"

	"golang.org/x/crypto/chacha20poly1305"
)

// encryptDetached seals plaintext under key with the given AAD using
// XChaCha20-Poly1305, drawing a fresh 24-byte nonce from rng for every call.
// The combined seal output ("ciphertext || tag") is split into the detached
// Blob shape on the wire: nonce(24) || ct(len(plaintext)) || tag(16).
func encryptDetached(key [32]byte, aad, plaintext []byte, rng io.Reader) (Blob, error) {
	aead, err := chacha20poly1305.NewX(key[:])
	if err != nil {
		// Only fails on a bad key size, which is impossible for a [32]byte.
		panic(err)
	}

	var nonce [NonceLen]byte
	if _, err := io.ReadFull(rng, nonce[:]); err != nil {
		return Blob{}, err
	}

	sealed := aead.Seal(nil, nonce[:], plaintext, aad)
	ctLen := len(sealed) - chacha20poly1305.Overhead

	var tag [TagLen]byte
	copy(tag[:], sealed[ctLen:])

	return Blob{
		Nonce: nonce,
		Ct:    sealed[:ctLen],
		Tag:   tag,
	}, nil
}

// decryptDetached opens a detached Blob. Any failure — AAD mismatch, tag
// forgery, or a corrupted nonce/ct — is collapsed to ErrAead; callers must
// not be able to distinguish sub-reasons.
func decryptDetached(key [32]byte, aad []byte, blob Blob) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key[:])
	if err != nil {
		panic(err)
	}

	sealed := make([]byte, 0, len(blob.Ct)+TagLen)
	sealed = append(sealed, blob.Ct...)
	sealed = append(sealed, blob.Tag[:]...)

	pt, err := aead.Open(nil, blob.Nonce[:], sealed, aad)
	if err != nil {
		return nil, ErrAead
	}
	return pt, nil
}
