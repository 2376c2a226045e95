package upspa

import (
	"encoding/binary"
	"encoding/json"
	"io"

	ristretto "github.com/gtank/ristretto255"
)

// PwdUpdateSigMsgLen is the byte length of the password-update signing
// message: nonce(24) || ct(96) || tag(16) || k_i_new(32) || timestamp(8) ||
// sp_id(4) — normative per spec.md §6.
const PwdUpdateSigMsgLen = NonceLen + CipherIDPtLen + TagLen + 32 + 8 + 4

// PasswordUpdateSpMessage is sent to SP i during password update: the new
// share it should adopt, the new CipherID it should now store, and a
// signature over both (plus a timestamp) verifiable against the sig_pk it
// stored at setup.
type PasswordUpdateSpMessage struct {
	UidB64    string
	SpID      uint32
	Timestamp uint64
	Sig       [SigLen]byte
	KiNew     [32]byte
	CidNew    CipherID
}

type passwordUpdateSpMessageJSON struct {
	UidB64    string   `json:"uid_b64"`
	SpID      uint32   `json:"sp_id"`
	Timestamp uint64   `json:"timestamp"`
	Sig       string   `json:"sig_b64"`
	KiNew     string   `json:"k_i_new_b64"`
	CidNew    CipherID `json:"cid_new"`
}

func (m PasswordUpdateSpMessage) MarshalJSON() ([]byte, error) {
	return json.Marshal(passwordUpdateSpMessageJSON{
		UidB64:    m.UidB64,
		SpID:      m.SpID,
		Timestamp: m.Timestamp,
		Sig:       b64Encode(m.Sig[:]),
		KiNew:     b64Encode(m.KiNew[:]),
		CidNew:    m.CidNew,
	})
}

func (m *PasswordUpdateSpMessage) UnmarshalJSON(data []byte) error {
	var j passwordUpdateSpMessageJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	sig, err := b64DecodeExact(j.Sig, SigLen)
	if err != nil {
		return err
	}
	kiNew, err := b64DecodeExact(j.KiNew, 32)
	if err != nil {
		return err
	}
	m.UidB64 = j.UidB64
	m.SpID = j.SpID
	m.Timestamp = j.Timestamp
	copy(m.Sig[:], sig)
	copy(m.KiNew[:], kiNew)
	m.CidNew = j.CidNew
	return nil
}

// PasswordUpdateOutput bundles the new CipherID and the per-SP messages
// produced by PasswordUpdate. Its fields are themselves
// json.Marshaler/Unmarshaler, so it round-trips through encoding/json
// without a custom method of its own.
type PasswordUpdateOutput struct {
	CidNew CipherID                  `json:"cid_new"`
	PerSp  []PasswordUpdateSpMessage `json:"per_sp"`
}

// PasswordUpdate rolls the shared OPRF secret without changing the per-LS
// verifier (spec.md §4.8): it decrypts the old CipherID (implicitly
// authenticating knowledge of the old password), generates a fresh master
// scalar and shares, re-encrypts the same ssk||Rsp||K0 plaintext under the
// new state key, and signs a per-SP rotation message with the embedded
// signing key.
func PasswordUpdate(uid []byte, oldStateKey [32]byte, cidOld CipherID, n, t int, newPassword []byte, timestamp uint64, rng io.Reader) (PasswordUpdateOutput, error) {
	assertValidThreshold(n, t)

	cidPt, err := decryptCipherID(uid, oldStateKey, cidOld)
	if err != nil {
		return PasswordUpdateOutput{}, err
	}

	newA0, newShares, err := toprfGen(n, t, rng)
	if err != nil {
		return PasswordUpdateOutput{}, err
	}

	p := hashToPoint(newPassword)
	y := ristretto.NewElement().ScalarMult(newA0, p)
	newStateKey := oprfFinalize(newPassword, y)

	cidNew, err := encryptCipherID(uid, newStateKey, cidPt, rng)
	if err != nil {
		return PasswordUpdateOutput{}, err
	}

	uidB64 := b64Encode(uid)

	perSp := make([]PasswordUpdateSpMessage, len(newShares))
	for i, sh := range newShares {
		var kiNew [32]byte
		copy(kiNew[:], sh.Value.Encode(nil))

		var msg [PwdUpdateSigMsgLen]byte
		off := 0
		copy(msg[off:off+NonceLen], cidNew.Nonce[:])
		off += NonceLen
		copy(msg[off:off+CipherIDPtLen], cidNew.Ct)
		off += CipherIDPtLen
		copy(msg[off:off+TagLen], cidNew.Tag[:])
		off += TagLen
		copy(msg[off:off+32], kiNew[:])
		off += 32
		binary.LittleEndian.PutUint64(msg[off:off+8], timestamp)
		off += 8
		binary.LittleEndian.PutUint32(msg[off:off+4], sh.ID)
		off += 4

		sig := signDetached(cidPt.ssk, msg[:])

		perSp[i] = PasswordUpdateSpMessage{
			UidB64:    uidB64,
			SpID:      sh.ID,
			Timestamp: timestamp,
			Sig:       sig,
			KiNew:     kiNew,
			CidNew:    cidNew,
		}
	}

	return PasswordUpdateOutput{CidNew: cidNew, PerSp: perSp}, nil
}
