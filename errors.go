package upspa

import "fmt"

// Sentinel errors for the unified error taxonomy. Callers should use
// errors.Is against these (and errors.As against InvalidLengthError) rather
// than inspecting error strings; decryption and signature failures are
// intentionally opaque about which step failed.
var (
	// ErrBase64 is returned when a base64url-no-pad decode fails.
	ErrBase64 = fmt.Errorf("upspa: base64 decode error")

	// ErrInvalidRistrettoPoint is returned when decompressing a Ristretto255
	// element fails.
	ErrInvalidRistrettoPoint = fmt.Errorf("upspa: invalid ristretto point encoding")

	// ErrInvalidScalar is returned when decoding a non-canonical or
	// otherwise malformed scalar.
	ErrInvalidScalar = fmt.Errorf("upspa: invalid scalar encoding")

	// ErrAead is returned for any AEAD decryption/authentication failure,
	// including AAD mismatch and tag forgery. Sub-reasons are never
	// distinguished.
	ErrAead = fmt.Errorf("upspa: aead error")

	// ErrSignature is returned when Ed25519 verification or key parsing
	// fails.
	ErrSignature = fmt.Errorf("upspa: signature error")
)

// InvalidLengthError reports a byte-string length mismatch at a parser
// boundary.
type InvalidLengthError struct {
	Expected int
	Got      int
}

func (e *InvalidLengthError) Error() string {
	return fmt.Sprintf("upspa: invalid length: expected %d, got %d", e.Expected, e.Got)
}

func newInvalidLength(expected, got int) error {
	return &InvalidLengthError{Expected: expected, Got: got}
}
