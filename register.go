package upspa

import (
	"encoding/json"
	"io"
)

// RegistrationSpMessage is sent to SP i during Register: the SUid index it
// should file c_j under, and c_j itself (the same ciphertext for every SP).
type RegistrationSpMessage struct {
	SpID uint32
	Suid [32]byte
	Cj   CipherSP
}

type registrationSpMessageJSON struct {
	SpID uint32   `json:"sp_id"`
	Suid string   `json:"suid_b64"`
	Cj   CipherSP `json:"cj"`
}

func (m RegistrationSpMessage) MarshalJSON() ([]byte, error) {
	return json.Marshal(registrationSpMessageJSON{SpID: m.SpID, Suid: b64Encode(m.Suid[:]), Cj: m.Cj})
}

func (m *RegistrationSpMessage) UnmarshalJSON(data []byte) error {
	var j registrationSpMessageJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	suid, err := b64DecodeExact(j.Suid, 32)
	if err != nil {
		return err
	}
	m.SpID = j.SpID
	copy(m.Suid[:], suid)
	m.Cj = j.Cj
	return nil
}

// RegistrationLsMessage is sent to the login service during Register.
type RegistrationLsMessage struct {
	Uid   []byte
	Vinfo [32]byte
}

type registrationLsMessageJSON struct {
	Uid   string `json:"uid_b64"`
	Vinfo string `json:"vinfo_b64"`
}

func (m RegistrationLsMessage) MarshalJSON() ([]byte, error) {
	return json.Marshal(registrationLsMessageJSON{Uid: b64Encode(m.Uid), Vinfo: b64Encode(m.Vinfo[:])})
}

func (m *RegistrationLsMessage) UnmarshalJSON(data []byte) error {
	var j registrationLsMessageJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	uid, err := b64Decode(j.Uid)
	if err != nil {
		return err
	}
	vinfo, err := b64DecodeExact(j.Vinfo, 32)
	if err != nil {
		return err
	}
	m.Uid = uid
	copy(m.Vinfo[:], vinfo)
	return nil
}

// RegistrationOutput bundles everything produced by Register. Its fields
// are themselves json.Marshaler/Unmarshaler, so it round-trips through
// encoding/json without a custom method of its own.
type RegistrationOutput struct {
	PerSp []RegistrationSpMessage `json:"per_sp"`
	ToLs  RegistrationLsMessage   `json:"to_ls"`
}

// Register runs the per-LS registration flow (spec.md §4.5): it decrypts
// CipherID to recover Rsp and K0, samples a fresh R^{lsj}, encrypts
// (R^{lsj}, ctr=0) into c_j, and derives the SUid index for each of the n
// SPs plus the vinfo tag for the LS.
func Register(uid, lsj []byte, stateKey [32]byte, cid CipherID, n int, rng io.Reader) (RegistrationOutput, error) {
	cidPt, err := decryptCipherID(uid, stateKey, cid)
	if err != nil {
		return RegistrationOutput{}, err
	}

	rlsjBytes, err := randomBytes(rng, 32)
	if err != nil {
		return RegistrationOutput{}, err
	}
	var rlsj [32]byte
	copy(rlsj[:], rlsjBytes)
	zero(rlsjBytes)

	cj, err := encryptCipherSP(uid, cidPt.k0, cipherSPPlaintext{rlsj: rlsj, ctr: 0}, rng)
	if err != nil {
		return RegistrationOutput{}, err
	}

	vinfo := hashVinfo(rlsj, lsj)

	perSp := make([]RegistrationSpMessage, n)
	for i := 1; i <= n; i++ {
		perSp[i-1] = RegistrationSpMessage{
			SpID: uint32(i),
			Suid: hashSuid(cidPt.rsp, lsj, uint32(i)),
			Cj:   cj,
		}
	}

	return RegistrationOutput{
		PerSp: perSp,
		ToLs:  RegistrationLsMessage{Uid: append([]byte(nil), uid...), Vinfo: vinfo},
	}, nil
}
