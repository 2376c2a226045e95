package upspa

import (
	"encoding/binary"
	"encoding/json"
	"io"
)

// Plaintext sizes for the two cipher blob shapes.
const (
	CipherIDPtLen = 96
	CipherSPPtLen = 40
)

// CipherID carries the signing secret key, Rsp and K0 under state_key.
type CipherID Blob

// CipherSP (c_j) carries R^{lsj} and a monotonic counter under K0.
type CipherSP Blob

func (c CipherID) MarshalJSON() ([]byte, error) { return Blob(c).marshalJSON() }
func (c *CipherID) UnmarshalJSON(data []byte) error {
	var j blobJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	b, err := blobFromJSON(j, CipherIDPtLen)
	if err != nil {
		return err
	}
	*c = CipherID(b)
	return nil
}

func (c CipherSP) MarshalJSON() ([]byte, error) { return Blob(c).marshalJSON() }
func (c *CipherSP) UnmarshalJSON(data []byte) error {
	var j blobJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	b, err := blobFromJSON(j, CipherSPPtLen)
	if err != nil {
		return err
	}
	*c = CipherSP(b)
	return nil
}

// cipheridAAD returns the AAD bound to CipherID: uid || "|cipherid".
func cipheridAAD(uid []byte) []byte {
	aad := make([]byte, 0, len(uid)+9)
	aad = append(aad, uid...)
	aad = append(aad, "|cipherid"...)
	return aad
}

// ciphersPAAD returns the AAD bound to CipherSP: uid || "|ciphersp".
func ciphersPAAD(uid []byte) []byte {
	aad := make([]byte, 0, len(uid)+9)
	aad = append(aad, uid...)
	aad = append(aad, "|ciphersp"...)
	return aad
}

// cidPlaintext is the 96-byte plaintext layout of CipherID:
// ssk(32) || Rsp(32) || K0(32).
type cidPlaintext struct {
	ssk [32]byte
	rsp [32]byte
	k0  [32]byte
}

func parseCipherIDPt(pt []byte) (cidPlaintext, error) {
	if len(pt) != CipherIDPtLen {
		return cidPlaintext{}, newInvalidLength(CipherIDPtLen, len(pt))
	}
	var out cidPlaintext
	copy(out.ssk[:], pt[0:32])
	copy(out.rsp[:], pt[32:64])
	copy(out.k0[:], pt[64:96])
	return out, nil
}

func (c cidPlaintext) bytes() [CipherIDPtLen]byte {
	var out [CipherIDPtLen]byte
	copy(out[0:32], c.ssk[:])
	copy(out[32:64], c.rsp[:])
	copy(out[64:96], c.k0[:])
	return out
}

// decryptCipherID decrypts cid under state_key with the cipherid AAD and
// parses its plaintext layout.
func decryptCipherID(uid []byte, stateKey [32]byte, cid CipherID) (cidPlaintext, error) {
	pt, err := decryptDetached(stateKey, cipheridAAD(uid), Blob(cid))
	if err != nil {
		return cidPlaintext{}, err
	}
	return parseCipherIDPt(pt)
}

// cipherSPPlaintext is the 40-byte plaintext layout of CipherSP:
// R^{lsj}(32) || ctr(8, little-endian).
type cipherSPPlaintext struct {
	rlsj [32]byte
	ctr  uint64
}

func parseCipherSPPt(pt []byte) (cipherSPPlaintext, error) {
	if len(pt) != CipherSPPtLen {
		return cipherSPPlaintext{}, newInvalidLength(CipherSPPtLen, len(pt))
	}
	var out cipherSPPlaintext
	copy(out.rlsj[:], pt[0:32])
	out.ctr = binary.LittleEndian.Uint64(pt[32:40])
	return out, nil
}

func (c cipherSPPlaintext) bytes() [CipherSPPtLen]byte {
	var out [CipherSPPtLen]byte
	copy(out[0:32], c.rlsj[:])
	binary.LittleEndian.PutUint64(out[32:40], c.ctr)
	return out
}

// decryptCipherSP decrypts c_j under K0 with the ciphersp AAD and parses
// its plaintext layout.
func decryptCipherSP(uid []byte, k0 [32]byte, cj CipherSP) (cipherSPPlaintext, error) {
	pt, err := decryptDetached(k0, ciphersPAAD(uid), Blob(cj))
	if err != nil {
		return cipherSPPlaintext{}, err
	}
	return parseCipherSPPt(pt)
}

// encryptCipherID encrypts the 96-byte CipherID plaintext under state_key.
func encryptCipherID(uid []byte, stateKey [32]byte, pt cidPlaintext, rng io.Reader) (CipherID, error) {
	ptBytes := pt.bytes()
	b, err := encryptDetached(stateKey, cipheridAAD(uid), ptBytes[:], rng)
	if err != nil {
		return CipherID{}, err
	}
	return CipherID(b), nil
}

// encryptCipherSP encrypts the 40-byte CipherSP plaintext under K0.
func encryptCipherSP(uid []byte, k0 [32]byte, pt cipherSPPlaintext, rng io.Reader) (CipherSP, error) {
	ptBytes := pt.bytes()
	b, err := encryptDetached(k0, ciphersPAAD(uid), ptBytes[:], rng)
	if err != nil {
		return CipherSP{}, err
	}
	return CipherSP(b), nil
}
