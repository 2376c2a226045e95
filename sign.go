package upspa

import "crypto/ed25519"

const (
	// SigPKLen is the length of an Ed25519 public key.
	SigPKLen = ed25519.PublicKeySize
	// SigLen is the length of a detached Ed25519 signature.
	SigLen = ed25519.SignatureSize
)

// signingKeyFromSeed expands a 32-byte Ed25519 seed (the ssk stored inside
// CipherID) into a full private key usable for signing.
func signingKeyFromSeed(seed [32]byte) ed25519.PrivateKey {
	return ed25519.NewKeyFromSeed(seed[:])
}

// signDetached produces a detached 64-byte Ed25519 signature over msg.
func signDetached(seed [32]byte, msg []byte) [SigLen]byte {
	sk := signingKeyFromSeed(seed)
	sig := ed25519.Sign(sk, msg)

	var out [SigLen]byte
	copy(out[:], sig)
	return out
}

// verifyDetached checks a detached Ed25519 signature. Verification failure
// and a malformed public key are both collapsed to ErrSignature.
func verifyDetached(pk [SigPKLen]byte, msg []byte, sig [SigLen]byte) error {
	if !ed25519.Verify(ed25519.PublicKey(pk[:]), msg, sig[:]) {
		return ErrSignature
	}
	return nil
}
