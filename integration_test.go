package upspa

import "testing"

// TestEndToEndFlow runs Setup, Register, Authenticate, SecretUpdate and
// PasswordUpdate back to back against a single deterministic RNG stream,
// checking that each stage's output is consumable by the next exactly as a
// real client/LS/SP deployment would chain them.
func TestEndToEndFlow(t *testing.T) {
	var seed [32]byte
	for i := range seed {
		seed[i] = 0x42
	}
	rng := DeterministicRNG(seed)

	uid := []byte("user123")
	lsj := []byte("LS1")
	password := []byte("correct horse battery staple")
	newPassword := []byte("new correct horse battery staple")
	const n, th = 5, 3

	setupOut, _, err := Setup(uid, password, n, th, rng)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}

	client := ToprfClient{}
	state, blinded, err := client.Begin(password, rng)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	partials := make([]ToprfPartial, 0, th)
	for _, sh := range setupOut.Shares[:th] {
		y, err := ToprfServerEval(blinded, sh.Value)
		if err != nil {
			t.Fatalf("ToprfServerEval: %v", err)
		}
		partials = append(partials, ToprfPartial{ID: sh.ID, Y: y})
	}
	stateKey, err := client.Finish(password, state, partials)
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}

	reg, err := Register(uid, lsj, stateKey, setupOut.Cid, n, rng)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if len(reg.PerSp) != n {
		t.Fatalf("expected %d per-sp registration messages, got %d", n, len(reg.PerSp))
	}

	authQ, err := AuthPrepare(uid, lsj, stateKey, setupOut.Cid, n)
	if err != nil {
		t.Fatalf("AuthPrepare: %v", err)
	}
	cjs := cjsFrom(reg.PerSp, th)
	authRes, err := AuthFinish(uid, lsj, authQ.K0, cjs)
	if err != nil {
		t.Fatalf("AuthFinish: %v", err)
	}
	if authRes.VinfoPrime != reg.ToLs.Vinfo {
		t.Fatal("authentication vinfo mismatch")
	}
	if authRes.BestCtr != 0 {
		t.Fatalf("expected ctr 0, got %d", authRes.BestCtr)
	}

	suQ, err := SecretUpdatePrepare(uid, lsj, stateKey, setupOut.Cid, n)
	if err != nil {
		t.Fatalf("SecretUpdatePrepare: %v", err)
	}
	suRes, err := SecretUpdateFinish(uid, lsj, suQ.K0, cjs, rng)
	if err != nil {
		t.Fatalf("SecretUpdateFinish: %v", err)
	}
	if suRes.VinfoPrime != reg.ToLs.Vinfo {
		t.Fatal("secret-update vinfo_prime mismatch against what the LS has on file")
	}
	if suRes.NewCtr != 1 {
		t.Fatalf("expected new ctr 1, got %d", suRes.NewCtr)
	}

	// Re-authenticate against the rotated c_j: the LS must now compare
	// against vinfo_new, not the original vinfo.
	rotatedCjs := []CipherSP{suRes.CjNew}
	authRes2, err := AuthFinish(uid, lsj, suQ.K0, rotatedCjs)
	if err != nil {
		t.Fatalf("AuthFinish (post-rotation): %v", err)
	}
	if authRes2.VinfoPrime != suRes.VinfoNew {
		t.Fatal("post-rotation vinfo does not match vinfo_new")
	}
	if authRes2.BestCtr != 1 {
		t.Fatalf("expected ctr 1 after rotation, got %d", authRes2.BestCtr)
	}

	pwRes, err := PasswordUpdate(uid, stateKey, setupOut.Cid, n, th, newPassword, 1_700_000_000, rng)
	if err != nil {
		t.Fatalf("PasswordUpdate: %v", err)
	}
	for i, m := range pwRes.PerSp {
		if err := verifySpMessage(setupOut.SigPK, m); err != nil {
			t.Fatalf("per-sp message %d failed signature verification: %v", i, err)
		}
	}

	// The new password must reconstruct a usable state key against the
	// rotated shares, and that state key must open the new CipherID.
	newShares := make([]ToprfShare, len(pwRes.PerSp))
	for i, m := range pwRes.PerSp {
		newShares[i] = ToprfShare{ID: m.SpID, Value: m.KiNew}
	}
	newClient := ToprfClient{}
	newState, newBlinded, err := newClient.Begin(newPassword, rng)
	if err != nil {
		t.Fatalf("Begin (new password): %v", err)
	}
	newPartials := make([]ToprfPartial, 0, th)
	for _, sh := range newShares[:th] {
		y, err := ToprfServerEval(newBlinded, sh.Value)
		if err != nil {
			t.Fatalf("ToprfServerEval (new): %v", err)
		}
		newPartials = append(newPartials, ToprfPartial{ID: sh.ID, Y: y})
	}
	newStateKey, err := newClient.Finish(newPassword, newState, newPartials)
	if err != nil {
		t.Fatalf("Finish (new password): %v", err)
	}

	oldPt, err := decryptCipherID(uid, stateKey, setupOut.Cid)
	if err != nil {
		t.Fatalf("old state key did not open the old CipherID: %v", err)
	}
	newPt, err := decryptCipherID(uid, newStateKey, pwRes.CidNew)
	if err != nil {
		t.Fatalf("new state key did not open the new CipherID: %v", err)
	}
	if newPt != oldPt {
		t.Fatal("CipherID plaintext changed across the password update")
	}

	// The old password must no longer open the new CipherID.
	if _, err := decryptCipherID(uid, stateKey, pwRes.CidNew); err == nil {
		t.Fatal("old state key unexpectedly opened the new CipherID")
	}
}

func cjsFrom(msgs []RegistrationSpMessage, k int) []CipherSP {
	out := make([]CipherSP, 0, k)
	for _, m := range msgs[:k] {
		out = append(out, m.Cj)
	}
	return out
}

func verifySpMessage(sigPK [SigPKLen]byte, m PasswordUpdateSpMessage) error {
	var msg [PwdUpdateSigMsgLen]byte
	off := 0
	copy(msg[off:off+NonceLen], m.CidNew.Nonce[:])
	off += NonceLen
	copy(msg[off:off+CipherIDPtLen], m.CidNew.Ct)
	off += CipherIDPtLen
	copy(msg[off:off+TagLen], m.CidNew.Tag[:])
	off += TagLen
	copy(msg[off:off+32], m.KiNew[:])
	off += 32
	putUint64LE(msg[off:off+8], m.Timestamp)
	off += 8
	putUint32LE(msg[off:off+4], m.SpID)
	return verifyDetached(sigPK, msg[:], m.Sig)
}
