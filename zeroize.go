package upspa

// zero overwrites b with zero bytes. It exists to erase the raw entropy
// buffers this package allocates for secret material (signing seeds, Rsp,
// K0, R^{lsj}) as soon as they have been copied into their final fixed-size
// representation — per spec.md §5's "SHOULD zeroize... where the target
// language supports it". It cannot reach into opaque types from
// gtank/ristretto255 (Scalar, Element), which expose no mutable byte
// access; those are left to the garbage collector.
func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
