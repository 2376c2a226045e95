package upspa

import "encoding/json"

// AuthQueries is what the client needs to query the SPs during
// authentication: K0 (to later decrypt whatever c_j comes back) and the
// per-SP SUid index list.
type AuthQueries struct {
	K0    [32]byte
	PerSp []AuthSpQuery
}

// AuthSpQuery is a single (sp_id, SUid_{i,j}) pair.
type AuthSpQuery struct {
	SpID uint32
	Suid [32]byte
}

// AuthResult is the outcome of a successful authentication: the recomputed
// vinfo tag (which the LS compares against its stored value) and the
// highest counter observed among the SPs that responded.
type AuthResult struct {
	VinfoPrime [32]byte
	BestCtr    uint64
}

type authResultJSON struct {
	VinfoPrime string `json:"vinfo_prime_b64"`
	BestCtr    uint64 `json:"best_ctr"`
}

func (r AuthResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(authResultJSON{VinfoPrime: b64Encode(r.VinfoPrime[:]), BestCtr: r.BestCtr})
}

func (r *AuthResult) UnmarshalJSON(data []byte) error {
	var j authResultJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	vinfo, err := b64DecodeExact(j.VinfoPrime, 32)
	if err != nil {
		return err
	}
	copy(r.VinfoPrime[:], vinfo)
	r.BestCtr = j.BestCtr
	return nil
}

// AuthPrepare derives the SUid query set for lsj (spec.md §4.6, "Prepare").
func AuthPrepare(uid, lsj []byte, stateKey [32]byte, cid CipherID, n int) (AuthQueries, error) {
	cidPt, err := decryptCipherID(uid, stateKey, cid)
	if err != nil {
		return AuthQueries{}, err
	}

	perSp := make([]AuthSpQuery, n)
	for i := 1; i <= n; i++ {
		perSp[i-1] = AuthSpQuery{SpID: uint32(i), Suid: hashSuid(cidPt.rsp, lsj, uint32(i))}
	}

	return AuthQueries{K0: cidPt.k0, PerSp: perSp}, nil
}

// AuthFinish decrypts whatever c_j blobs the SPs returned and recomputes
// vinfo_prime from the highest counter among the ones that decrypt
// successfully. It fails with InvalidLengthError if cjs is empty, and with
// ErrAead if none of the blobs decrypt (an adversarial SP cannot forge a
// valid one, so this happens when no SP returned a genuine record).
func AuthFinish(uid, lsj []byte, k0 [32]byte, cjs []CipherSP) (AuthResult, error) {
	if len(cjs) == 0 {
		return AuthResult{}, newInvalidLength(1, 0)
	}

	var bestCtr uint64
	var bestRlsj [32]byte
	anyOK := false

	for _, cj := range cjs {
		pt, err := decryptCipherSP(uid, k0, cj)
		if err != nil {
			continue
		}
		anyOK = true
		if pt.ctr >= bestCtr {
			bestCtr = pt.ctr
			bestRlsj = pt.rlsj
		}
	}

	if !anyOK {
		return AuthResult{}, ErrAead
	}

	return AuthResult{VinfoPrime: hashVinfo(bestRlsj, lsj), BestCtr: bestCtr}, nil
}
