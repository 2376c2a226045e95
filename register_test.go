package upspa

import "testing"

func TestRegisterProducesPerSpMessages(t *testing.T) {
	rng := DeterministicRNG([32]byte{0x60})
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
	if len(reg.PerSp) != 5 {
		t.Fatalf("expected 5 per-sp messages, got %d", len(reg.PerSp))
	}

	seen := map[[32]byte]bool{}
	for i, m := range reg.PerSp {
		if m.SpID != uint32(i+1) {
			t.Fatalf("message %d has sp_id %d, want %d", i, m.SpID, i+1)
		}
		if seen[m.Suid] {
			t.Fatalf("duplicate SUid at index %d", i)
		}
		seen[m.Suid] = true
	}
}

// deriveStateKeyForTest recomputes the state key the same way Setup does,
// so tests that already ran Setup (and thus no longer have the master
// scalar) can still exercise Register/Authenticate/SecretUpdate against a
// real CipherID produced by Setup with a fresh, independently-driven OPRF.
func deriveStateKeyForTest(password []byte, out SetupOutput) [32]byte {
	// Re-run the threshold OPRF end-to-end against the shares Setup
	// returned, exactly the way a client would in production.
	rng := DeterministicRNG([32]byte{0xAA})
	client := ToprfClient{}
	state, blinded, err := client.Begin(password, rng)
	if err != nil {
		panic(err)
	}
	partials := make([]ToprfPartial, 0, 3)
	for _, sh := range out.Shares[:3] {
		y, err := ToprfServerEval(blinded, sh.Value)
		if err != nil {
			panic(err)
		}
		partials = append(partials, ToprfPartial{ID: sh.ID, Y: y})
	}
	key, err := client.Finish(password, state, partials)
	if err != nil {
		panic(err)
	}
	return key
}
