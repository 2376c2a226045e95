package upspa

import "testing"

func TestAuthenticateRoundTrip(t *testing.T) {
	rng := DeterministicRNG([32]byte{0x70})
	uid := []byte("user123")
	lsj := []byte("LS1")
	password := []byte("hunter2")

	setupOut, _, err := Setup(uid, password, 5, 3, rng)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	stateKey := deriveStateKeyForTest(password, setupOut)

	reg, err := Register(uid, lsj, stateKey, setupOut.Cid, 5, rng)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	authQ, err := AuthPrepare(uid, lsj, stateKey, setupOut.Cid, 5)
	if err != nil {
		t.Fatalf("AuthPrepare: %v", err)
	}

	cjs := make([]CipherSP, 0, 3)
	for _, m := range reg.PerSp[:3] {
		cjs = append(cjs, m.Cj)
	}

	res, err := AuthFinish(uid, lsj, authQ.K0, cjs)
	if err != nil {
		t.Fatalf("AuthFinish: %v", err)
	}
	if res.VinfoPrime != reg.ToLs.Vinfo {
		t.Fatal("recomputed vinfo does not match the registered vinfo")
	}
	if res.BestCtr != 0 {
		t.Fatalf("expected ctr 0 right after registration, got %d", res.BestCtr)
	}
}

// TestAuthenticateToleratesUnresponsiveSps verifies that a minority of
// garbled/unresponsive SP responses do not block authentication as long as
// at least one genuine c_j decrypts.
func TestAuthenticateToleratesUnresponsiveSps(t *testing.T) {
	rng := DeterministicRNG([32]byte{0x71})
	uid := []byte("user123")
	lsj := []byte("LS1")
	password := []byte("hunter2")

	setupOut, _, err := Setup(uid, password, 5, 3, rng)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	stateKey := deriveStateKeyForTest(password, setupOut)

	reg, err := Register(uid, lsj, stateKey, setupOut.Cid, 5, rng)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	authQ, err := AuthPrepare(uid, lsj, stateKey, setupOut.Cid, 5)
	if err != nil {
		t.Fatalf("AuthPrepare: %v", err)
	}

	garbled := CipherSP{Ct: make([]byte, CipherSPPtLen)}
	cjs := []CipherSP{garbled, garbled, reg.PerSp[2].Cj}

	res, err := AuthFinish(uid, lsj, authQ.K0, cjs)
	if err != nil {
		t.Fatalf("AuthFinish: %v", err)
	}
	if res.VinfoPrime != reg.ToLs.Vinfo {
		t.Fatal("recomputed vinfo does not match the registered vinfo")
	}
}

func TestAuthenticateFailsWhenNoBlobDecrypts(t *testing.T) {
	var k0 [32]byte
	garbled := CipherSP{Ct: make([]byte, CipherSPPtLen)}
	_, err := AuthFinish([]byte("user123"), []byte("LS1"), k0, []CipherSP{garbled, garbled})
	if err != ErrAead {
		t.Fatalf("expected ErrAead, got %v", err)
	}
}

func TestAuthenticateRejectsEmptyCjs(t *testing.T) {
	var k0 [32]byte
	_, err := AuthFinish([]byte("user123"), []byte("LS1"), k0, nil)
	if err == nil {
		t.Fatal("expected error for empty cjs")
	}
}
