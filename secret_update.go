package upspa

import (
	"encoding/json"
	"errors"
	"io"
	"math"
)

// SecretUpdateQueries mirrors AuthQueries: it re-uses the SUid lookup from
// authentication's prepare step.
type SecretUpdateQueries struct {
	K0    [32]byte
	PerSp []AuthSpQuery
}

// SecretUpdateOutput is the outcome of rotating R^{lsj} at LS j.
type SecretUpdateOutput struct {
	VinfoPrime [32]byte
	VinfoNew   [32]byte
	CjNew      CipherSP
	OldCtr     uint64
	NewCtr     uint64
}

type secretUpdateOutputJSON struct {
	VinfoPrime string   `json:"vinfo_prime_b64"`
	VinfoNew   string   `json:"vinfo_new_b64"`
	CjNew      CipherSP `json:"cj_new"`
	OldCtr     uint64   `json:"old_ctr"`
	NewCtr     uint64   `json:"new_ctr"`
}

func (o SecretUpdateOutput) MarshalJSON() ([]byte, error) {
	return json.Marshal(secretUpdateOutputJSON{
		VinfoPrime: b64Encode(o.VinfoPrime[:]),
		VinfoNew:   b64Encode(o.VinfoNew[:]),
		CjNew:      o.CjNew,
		OldCtr:     o.OldCtr,
		NewCtr:     o.NewCtr,
	})
}

func (o *SecretUpdateOutput) UnmarshalJSON(data []byte) error {
	var j secretUpdateOutputJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	vinfoPrime, err := b64DecodeExact(j.VinfoPrime, 32)
	if err != nil {
		return err
	}
	vinfoNew, err := b64DecodeExact(j.VinfoNew, 32)
	if err != nil {
		return err
	}
	copy(o.VinfoPrime[:], vinfoPrime)
	copy(o.VinfoNew[:], vinfoNew)
	o.CjNew = j.CjNew
	o.OldCtr = j.OldCtr
	o.NewCtr = j.NewCtr
	return nil
}

// ErrCounterOverflow is returned by SecretUpdateFinish when the stored
// counter is already math.MaxUint64. spec.md §9 leaves wrapping behavior at
// overflow undefined and suggests returning an error instead; this module
// takes that stricter option rather than silently wrapping to zero.
var ErrCounterOverflow = errors.New("upspa: secret-update counter overflow")

// SecretUpdatePrepare derives the SUid query set for lsj, identical to
// AuthPrepare (spec.md §4.7, "Prepare").
func SecretUpdatePrepare(uid, lsj []byte, stateKey [32]byte, cid CipherID, n int) (SecretUpdateQueries, error) {
	q, err := AuthPrepare(uid, lsj, stateKey, cid, n)
	if err != nil {
		return SecretUpdateQueries{}, err
	}
	return SecretUpdateQueries{K0: q.K0, PerSp: q.PerSp}, nil
}

// SecretUpdateFinish fetches and decrypts the old c_j blobs, derives the
// current counter and R^{lsj}, then rotates to a fresh R^{lsj} with
// ctr+1 (spec.md §4.7, "Finish").
func SecretUpdateFinish(uid, lsj []byte, k0 [32]byte, cjs []CipherSP, rng io.Reader) (SecretUpdateOutput, error) {
	if len(cjs) == 0 {
		return SecretUpdateOutput{}, newInvalidLength(1, 0)
	}

	var oldCtr uint64
	var oldRlsj [32]byte
	anyOK := false

	for _, cj := range cjs {
		pt, err := decryptCipherSP(uid, k0, cj)
		if err != nil {
			continue
		}
		anyOK = true
		if pt.ctr >= oldCtr {
			oldCtr = pt.ctr
			oldRlsj = pt.rlsj
		}
	}

	if !anyOK {
		return SecretUpdateOutput{}, ErrAead
	}

	if oldCtr == math.MaxUint64 {
		return SecretUpdateOutput{}, ErrCounterOverflow
	}

	vinfoPrime := hashVinfo(oldRlsj, lsj)

	newRlsjBytes, err := randomBytes(rng, 32)
	if err != nil {
		return SecretUpdateOutput{}, err
	}
	var newRlsj [32]byte
	copy(newRlsj[:], newRlsjBytes)
	zero(newRlsjBytes)

	newCtr := oldCtr + 1

	cjNew, err := encryptCipherSP(uid, k0, cipherSPPlaintext{rlsj: newRlsj, ctr: newCtr}, rng)
	if err != nil {
		return SecretUpdateOutput{}, err
	}

	return SecretUpdateOutput{
		VinfoPrime: vinfoPrime,
		VinfoNew:   hashVinfo(newRlsj, lsj),
		CjNew:      cjNew,
		OldCtr:     oldCtr,
		NewCtr:     newCtr,
	}, nil
}
