package upspa

import "testing"

func TestSetupProducesConsistentPayloads(t *testing.T) {
	rng := DeterministicRNG([32]byte{0x50})
	uid := []byte("user123")
	password := []byte("hunter2")

	out, payloads, err := Setup(uid, password, 5, 3, rng)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if len(out.Shares) != 5 {
		t.Fatalf("expected 5 shares, got %d", len(out.Shares))
	}
	if len(payloads) != 5 {
		t.Fatalf("expected 5 payloads, got %d", len(payloads))
	}

	for i, p := range payloads {
		if p.SpID != out.Shares[i].ID {
			t.Fatalf("payload %d sp_id mismatch: %d vs %d", i, p.SpID, out.Shares[i].ID)
		}
		if p.Ki != out.Shares[i].Value {
			t.Fatalf("payload %d share value mismatch", i)
		}
		if p.SigPK != out.SigPK {
			t.Fatalf("payload %d sig_pk mismatch", i)
		}
		if Blob(p.Cid).wireLen() != Blob(out.Cid).wireLen() {
			t.Fatalf("payload %d cid length mismatch", i)
		}
	}
}

func TestSetupDistinctSeedsDiverge(t *testing.T) {
	uid := []byte("user123")
	password := []byte("hunter2")

	outA, _, err := Setup(uid, password, 5, 3, DeterministicRNG([32]byte{1}))
	if err != nil {
		t.Fatalf("Setup a: %v", err)
	}
	outB, _, err := Setup(uid, password, 5, 3, DeterministicRNG([32]byte{2}))
	if err != nil {
		t.Fatalf("Setup b: %v", err)
	}
	if outA.SigPK == outB.SigPK {
		t.Fatal("distinct seeds produced identical signing keys")
	}
}

func TestSetupInvalidThresholdPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for invalid threshold")
		}
	}()
	Setup([]byte("u"), []byte("p"), 3, 4, DeterministicRNG([32]byte{1}))
}
