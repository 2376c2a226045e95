package upspa

import "encoding/json"

// Wire sizes for a cipher blob: nonce(24) || ct(PT_LEN) || tag(16).
const (
	NonceLen = 24
	TagLen   = 16
)

// Blob is the uniform cipher blob container: a random nonce, a ciphertext of
// some fixed plaintext length, and a detached authentication tag. Go has no
// array-length generics, so the PT_LEN parameter from spec.md is enforced by
// each concrete alias (CipherID, CipherSP) rather than by Blob itself — Blob
// stores Ct as a slice and callers are responsible for checking its length
// against the plaintext size they expect.
type Blob struct {
	Nonce [NonceLen]byte
	Ct    []byte
	Tag   [TagLen]byte
}

// wireLen returns the serialized length of the blob.
func (b Blob) wireLen() int {
	return NonceLen + len(b.Ct) + TagLen
}

// bytes serializes the blob as nonce || ct || tag.
func (b Blob) bytes() []byte {
	out := make([]byte, 0, b.wireLen())
	out = append(out, b.Nonce[:]...)
	out = append(out, b.Ct...)
	out = append(out, b.Tag[:]...)
	return out
}

// blobFromBytes parses a wire-format blob, requiring the ciphertext portion
// to be exactly ptLen bytes.
func blobFromBytes(data []byte, ptLen int) (Blob, error) {
	want := NonceLen + ptLen + TagLen
	if len(data) != want {
		return Blob{}, newInvalidLength(want, len(data))
	}
	var b Blob
	copy(b.Nonce[:], data[:NonceLen])
	b.Ct = append([]byte(nil), data[NonceLen:NonceLen+ptLen]...)
	copy(b.Tag[:], data[NonceLen+ptLen:])
	return b, nil
}

// blobJSON is the base64url-no-pad wire shape for a Blob, used by every
// cipher-blob-carrying message type.
type blobJSON struct {
	Nonce string `json:"nonce"`
	Ct    string `json:"ct"`
	Tag   string `json:"tag"`
}

func (b Blob) toJSON() blobJSON {
	return blobJSON{
		Nonce: b64Encode(b.Nonce[:]),
		Ct:    b64Encode(b.Ct),
		Tag:   b64Encode(b.Tag[:]),
	}
}

func blobFromJSON(j blobJSON, ptLen int) (Blob, error) {
	nonce, err := b64DecodeExact(j.Nonce, NonceLen)
	if err != nil {
		return Blob{}, err
	}
	ct, err := b64DecodeExact(j.Ct, ptLen)
	if err != nil {
		return Blob{}, err
	}
	tag, err := b64DecodeExact(j.Tag, TagLen)
	if err != nil {
		return Blob{}, err
	}
	var b Blob
	copy(b.Nonce[:], nonce)
	b.Ct = ct
	copy(b.Tag[:], tag)
	return b, nil
}

func (b Blob) marshalJSON() ([]byte, error) {
	return json.Marshal(b.toJSON())
}

// MarshalJSON implements json.Marshaler.
func (b Blob) MarshalJSON() ([]byte, error) {
	return b.marshalJSON()
}

// UnmarshalJSON implements json.Unmarshaler. Blob has no PT_LEN of its own,
// so unlike CipherID/CipherSP it places no constraint on the decoded
// ciphertext length.
func (b *Blob) UnmarshalJSON(data []byte) error {
	var j blobJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	nonce, err := b64DecodeExact(j.Nonce, NonceLen)
	if err != nil {
		return err
	}
	ct, err := b64Decode(j.Ct)
	if err != nil {
		return err
	}
	tag, err := b64DecodeExact(j.Tag, TagLen)
	if err != nil {
		return err
	}
	copy(b.Nonce[:], nonce)
	b.Ct = ct
	copy(b.Tag[:], tag)
	return nil
}
