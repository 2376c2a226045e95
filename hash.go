package upspa

import (
	"encoding/binary"
	"io"

	ristretto "github.com/gtank/ristretto255"
	"lukechampine.com/blake3"
)

// Domain-separation prefixes for the keyed-BLAKE3-XOF hash family. These are
// load-bearing and MUST be preserved byte-for-byte: changing any of them
// changes every derived secret.
const (
	domainHashToPoint  = "uptspa/hash_to_point"
	domainOprfFinalize = "uptspa/oprf_finalize"
	domainSuid         = "uptspa/suid"
	domainVinfo        = "uptspa/vinfo"
)

// hashToPoint maps an arbitrary-length message to a Ristretto255 element by
// drawing 64 uniform bytes from a BLAKE3 XOF seeded with the domain prefix
// and the message, then applying the "from uniform bytes" map.
func hashToPoint(msg []byte) *ristretto.Element {
	h := blake3.New(32, nil)
	h.Write([]byte(domainHashToPoint))
	h.Write(msg)

	var wide [64]byte
	if _, err := io.ReadFull(h.XOF(), wide[:]); err != nil {
		panic(err) // XOF reads never fail
	}
	return ristretto.NewElement().FromUniformBytes(wide[:])
}

// oprfFinalize derives the 32-byte OPRF output from the password and the
// reconstructed group element Y = hash_to_point(password) * a0.
func oprfFinalize(password []byte, y *ristretto.Element) [32]byte {
	h := blake3.New(32, nil)
	h.Write([]byte(domainOprfFinalize))
	h.Write(password)
	h.Write(y.Encode(nil))

	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// hashSuid derives SUid_{i,j} = H("uptspa/suid" || Rsp || lsj || i_le32).
func hashSuid(rsp [32]byte, lsj []byte, i uint32) [32]byte {
	h := blake3.New(32, nil)
	h.Write([]byte(domainSuid))
	h.Write(rsp[:])
	h.Write(lsj)

	var iLE [4]byte
	binary.LittleEndian.PutUint32(iLE[:], i)
	h.Write(iLE[:])

	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// hashVinfo derives vinfo = H("uptspa/vinfo" || R^{lsj} || lsj).
func hashVinfo(rlsj [32]byte, lsj []byte) [32]byte {
	h := blake3.New(32, nil)
	h.Write([]byte(domainVinfo))
	h.Write(rlsj[:])
	h.Write(lsj)

	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
