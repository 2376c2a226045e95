package upspa

import (
	"crypto/ed25519"
	"encoding/json"
	"io"

	ristretto "github.com/gtank/ristretto255"
)

// SetupOutput is the client-retained result of Setup: the signing public
// key to distribute, the encrypted identity blob, and the raw shares (kept
// here only so the caller can build SetupSpPayload messages; in practice a
// caller discards these once the per-SP payloads are sent).
type SetupOutput struct {
	SigPK  [SigPKLen]byte
	Cid    CipherID
	Shares []ToprfShare
}

type setupOutputJSON struct {
	SigPK  string       `json:"sig_pk_b64"`
	Cid    CipherID     `json:"cid"`
	Shares []ToprfShare `json:"shares"`
}

func (o SetupOutput) MarshalJSON() ([]byte, error) {
	return json.Marshal(setupOutputJSON{SigPK: b64Encode(o.SigPK[:]), Cid: o.Cid, Shares: o.Shares})
}

func (o *SetupOutput) UnmarshalJSON(data []byte) error {
	var j setupOutputJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	pk, err := b64DecodeExact(j.SigPK, SigPKLen)
	if err != nil {
		return err
	}
	o.SigPK = [SigPKLen]byte{}
	copy(o.SigPK[:], pk)
	o.Cid = j.Cid
	o.Shares = j.Shares
	return nil
}

// ToprfShare is a single SP's share of the master OPRF scalar: (id, k_i).
type ToprfShare struct {
	ID    uint32
	Value [32]byte
}

type toprfShareJSON struct {
	ID  uint32 `json:"sp_id"`
	KiB string `json:"k_i_b64"`
}

func (s ToprfShare) MarshalJSON() ([]byte, error) {
	return json.Marshal(toprfShareJSON{ID: s.ID, KiB: b64Encode(s.Value[:])})
}

func (s *ToprfShare) UnmarshalJSON(data []byte) error {
	var j toprfShareJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	v, err := b64DecodeExact(j.KiB, 32)
	if err != nil {
		return err
	}
	s.ID = j.ID
	copy(s.Value[:], v)
	return nil
}

// SetupSpPayload is the message sent to SP i during Setup.
type SetupSpPayload struct {
	SpID  uint32
	Uid   []byte
	SigPK [SigPKLen]byte
	Cid   CipherID
	Ki    [32]byte
}

type setupSpPayloadJSON struct {
	SpID  uint32   `json:"sp_id"`
	Uid   string   `json:"uid_b64"`
	SigPK string   `json:"sig_pk_b64"`
	Cid   CipherID `json:"cid"`
	Ki    string   `json:"k_i_b64"`
}

func (p SetupSpPayload) MarshalJSON() ([]byte, error) {
	return json.Marshal(setupSpPayloadJSON{
		SpID:  p.SpID,
		Uid:   b64Encode(p.Uid),
		SigPK: b64Encode(p.SigPK[:]),
		Cid:   p.Cid,
		Ki:    b64Encode(p.Ki[:]),
	})
}

func (p *SetupSpPayload) UnmarshalJSON(data []byte) error {
	var j setupSpPayloadJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	uid, err := b64Decode(j.Uid)
	if err != nil {
		return err
	}
	pk, err := b64DecodeExact(j.SigPK, SigPKLen)
	if err != nil {
		return err
	}
	ki, err := b64DecodeExact(j.Ki, 32)
	if err != nil {
		return err
	}
	p.SpID = j.SpID
	p.Uid = uid
	p.SigPK = [SigPKLen]byte{}
	copy(p.SigPK[:], pk)
	p.Cid = j.Cid
	copy(p.Ki[:], ki)
	return nil
}

// Setup runs the initial setup flow (spec.md §4.4): it derives the state
// key for password, generates a fresh signing keypair, Rsp and K0, encrypts
// them into CipherID, and splits the master OPRF scalar into n Shamir
// shares with threshold t. The master scalar is never returned — it is
// discarded as soon as the state key has been derived.
func Setup(uid, password []byte, n, t int, rng io.Reader) (SetupOutput, []SetupSpPayload, error) {
	assertValidThreshold(n, t)

	rspBytes, err := randomBytes(rng, 32)
	if err != nil {
		return SetupOutput{}, nil, err
	}
	var rsp [32]byte
	copy(rsp[:], rspBytes)
	zero(rspBytes)

	a0, shares, err := toprfGen(n, t, rng)
	if err != nil {
		return SetupOutput{}, nil, err
	}

	sigSeed, err := randomBytes(rng, 32)
	if err != nil {
		return SetupOutput{}, nil, err
	}
	var ssk [32]byte
	copy(ssk[:], sigSeed)
	zero(sigSeed)
	signingKey := signingKeyFromSeed(ssk)
	var sigPK [SigPKLen]byte
	copy(sigPK[:], signingKey.Public().(ed25519.PublicKey))
	zero(signingKey)

	k0Bytes, err := randomBytes(rng, 32)
	if err != nil {
		return SetupOutput{}, nil, err
	}
	var k0 [32]byte
	copy(k0[:], k0Bytes)
	zero(k0Bytes)

	p := hashToPoint(password)
	y := ristretto.NewElement().ScalarMult(a0, p)
	stateKey := oprfFinalize(password, y)
	// a0 is an opaque *ristretto255.Scalar with no exported bytes and no
	// zeroing method; once y is derived it is left to the GC.

	cid, err := encryptCipherID(uid, stateKey, cidPlaintext{ssk: ssk, rsp: rsp, k0: k0}, rng)
	if err != nil {
		return SetupOutput{}, nil, err
	}

	outShares := make([]ToprfShare, n)
	payloads := make([]SetupSpPayload, n)
	for i, sh := range shares {
		var v [32]byte
		copy(v[:], sh.Value.Encode(nil))
		outShares[i] = ToprfShare{ID: sh.ID, Value: v}
		payloads[i] = SetupSpPayload{
			SpID:  sh.ID,
			Uid:   append([]byte(nil), uid...),
			SigPK: sigPK,
			Cid:   cid,
			Ki:    v,
		}
	}

	out := SetupOutput{SigPK: sigPK, Cid: cid, Shares: outShares}
	return out, payloads, nil
}
