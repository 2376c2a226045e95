package upspa

import "encoding/base64"

// b64Encoding is base64url with no padding, used for every opaque byte
// string on the external interface (sig_pk, suid, vinfo, k_i, signatures,
// state keys, and the nonce/ct/tag fields of a cipher blob).
var b64Encoding = base64.RawURLEncoding

func b64Encode(b []byte) string {
	return b64Encoding.EncodeToString(b)
}

func b64Decode(s string) ([]byte, error) {
	b, err := b64Encoding.DecodeString(s)
	if err != nil {
		return nil, ErrBase64
	}
	return b, nil
}

// b64DecodeExact decodes s and requires the result to be exactly n bytes.
func b64DecodeExact(s string, n int) ([]byte, error) {
	b, err := b64Decode(s)
	if err != nil {
		return nil, err
	}
	if len(b) != n {
		return nil, newInvalidLength(n, len(b))
	}
	return b, nil
}

// B64Encode exposes the wire base64url-no-pad encoding used throughout the
// package, for callers that need to render opaque byte strings the same
// way.
func B64Encode(b []byte) string {
	return b64Encode(b)
}

// B64Decode exposes the wire base64url-no-pad decoding used throughout the
// package.
func B64Decode(s string) ([]byte, error) {
	return b64Decode(s)
}
