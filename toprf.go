package upspa

import (
	"encoding/json"
	"io"

	ristretto "github.com/gtank/ristretto255"
)

// ToprfPartial is a single SP's evaluation of a blinded point, returned by
// ToprfServerEval and consumed by ToprfClient.Finish.
type ToprfPartial struct {
	ID uint32
	Y  [32]byte
}

type toprfPartialJSON struct {
	ID uint32 `json:"id"`
	Y  string `json:"y"`
}

func (p ToprfPartial) MarshalJSON() ([]byte, error) {
	return json.Marshal(toprfPartialJSON{ID: p.ID, Y: b64Encode(p.Y[:])})
}

func (p *ToprfPartial) UnmarshalJSON(data []byte) error {
	var j toprfPartialJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	y, err := b64DecodeExact(j.Y, 32)
	if err != nil {
		return err
	}
	p.ID = j.ID
	copy(p.Y[:], y)
	return nil
}

// ToprfClientState holds the client's blinding scalar r between Begin and
// Finish. It carries no password material and can be discarded after
// Finish returns.
type ToprfClientState struct {
	r [32]byte
}

// ToprfClient begins and finishes a threshold OPRF evaluation.
type ToprfClient struct{}

// Begin blinds password with a fresh random scalar r and returns the
// blinding state together with the blinded point to send to the SPs.
func (ToprfClient) Begin(password []byte, rng io.Reader) (ToprfClientState, [32]byte, error) {
	r, err := randomScalar(rng)
	if err != nil {
		return ToprfClientState{}, [32]byte{}, err
	}

	p := hashToPoint(password)
	blinded := ristretto.NewElement().ScalarMult(r, p)

	var state ToprfClientState
	copy(state.r[:], r.Encode(nil))

	var out [32]byte
	copy(out[:], blinded.Encode(nil))

	return state, out, nil
}

// Finish combines threshold-many partial evaluations into the final 32-byte
// state key. It fails if partials is empty, if the blinding scalar is
// non-canonical or zero, or if any partial's point is invalid.
func (ToprfClient) Finish(password []byte, state ToprfClientState, partials []ToprfPartial) ([32]byte, error) {
	if len(partials) == 0 {
		return [32]byte{}, newInvalidLength(1, 0)
	}

	r, err := scalarFromCanonicalBytes(state.r)
	if err != nil {
		return [32]byte{}, err
	}
	if r.Equal(ristretto.NewScalar()) == 1 {
		return [32]byte{}, ErrInvalidScalar
	}

	ids := make([]uint32, len(partials))
	for i, p := range partials {
		ids[i] = p.ID
	}
	lambdas, err := lagrangeCoeffsAtZero(ids)
	if err != nil {
		return [32]byte{}, err
	}

	acc := ristretto.NewElement()
	for i, p := range partials {
		yi, err := pointFromBytes(p.Y)
		if err != nil {
			return [32]byte{}, err
		}
		term := ristretto.NewElement().ScalarMult(lambdas[i], yi)
		acc.Add(acc, term)
	}

	rInv := ristretto.NewScalar().Invert(r)
	y := ristretto.NewElement().ScalarMult(rInv, acc)

	return oprfFinalize(password, y), nil
}

// toprfGen samples a non-zero master scalar a0 and splits it into n Shamir
// shares reconstructible by any t of them. Shares are indexed 1..n.
func toprfGen(n, t int, rng io.Reader) (*ristretto.Scalar, []toprfShare, error) {
	assertValidThreshold(n, t)

	coeffs := make([]*ristretto.Scalar, t)
	for i := range coeffs {
		c, err := randomScalar(rng)
		if err != nil {
			return nil, nil, err
		}
		coeffs[i] = c
	}
	a0 := coeffs[0]

	shares := make([]toprfShare, n)
	for i := 1; i <= n; i++ {
		shares[i-1] = toprfShare{
			ID:    uint32(i),
			Value: evalPolynomial(coeffs, uint32(i)),
		}
	}
	return a0, shares, nil
}

type toprfShare struct {
	ID    uint32
	Value *ristretto.Scalar
}

// evalPolynomial evaluates f(x) = c[0] + c[1]*x + ... via Horner's rule.
func evalPolynomial(coeffs []*ristretto.Scalar, x uint32) *ristretto.Scalar {
	xs := scalarFromUint32(x)
	acc := ristretto.NewScalar()
	for i := len(coeffs) - 1; i >= 0; i-- {
		acc.Multiply(acc, xs)
		acc.Add(acc, coeffs[i])
	}
	return acc
}

// lagrangeCoeffsAtZero computes λ_i = ∏_{j≠i} x_j / (x_j - x_i) for the
// given set of share ids, evaluating the reconstructed polynomial at zero.
func lagrangeCoeffsAtZero(ids []uint32) ([]*ristretto.Scalar, error) {
	xs := make([]*ristretto.Scalar, len(ids))
	for i, id := range ids {
		xs[i] = scalarFromUint32(id)
	}

	lambdas := make([]*ristretto.Scalar, len(ids))
	for i := range xs {
		num := one()
		den := one()
		for j := range xs {
			if i == j {
				continue
			}
			num = ristretto.NewScalar().Multiply(num, xs[j])

			diff := ristretto.NewScalar().Subtract(xs[j], xs[i])
			den = ristretto.NewScalar().Multiply(den, diff)
		}
		if den.Equal(ristretto.NewScalar()) == 1 {
			return nil, ErrInvalidScalar
		}
		inv := ristretto.NewScalar().Invert(den)
		lambdas[i] = ristretto.NewScalar().Multiply(num, inv)
	}
	return lambdas, nil
}

// ToprfServerEval is the single operation an SP performs in the protocol:
// it decodes the blinded point and the scalar share and returns their
// scalar product, compressed.
func ToprfServerEval(blinded [32]byte, share [32]byte) ([32]byte, error) {
	b, err := pointFromBytes(blinded)
	if err != nil {
		return [32]byte{}, err
	}
	k, err := scalarFromCanonicalBytes(share)
	if err != nil {
		return [32]byte{}, err
	}
	y := ristretto.NewElement().ScalarMult(k, b)

	var out [32]byte
	copy(out[:], y.Encode(nil))
	return out, nil
}

func pointFromBytes(b [32]byte) (*ristretto.Element, error) {
	p := ristretto.NewElement()
	if err := p.Decode(b[:]); err != nil {
		return nil, ErrInvalidRistrettoPoint
	}
	return p, nil
}

func scalarFromCanonicalBytes(b [32]byte) (*ristretto.Scalar, error) {
	s := ristretto.NewScalar()
	if err := s.Decode(b[:]); err != nil {
		return nil, ErrInvalidScalar
	}
	return s, nil
}

func scalarFromUint32(v uint32) *ristretto.Scalar {
	var wide [64]byte
	wide[0] = byte(v)
	wide[1] = byte(v >> 8)
	wide[2] = byte(v >> 16)
	wide[3] = byte(v >> 24)
	return ristretto.NewScalar().FromUniformBytes(wide[:])
}

func one() *ristretto.Scalar {
	s := scalarFromUint32(1)
	return s
}

func assertValidThreshold(n, t int) {
	if t < 1 || t > n {
		panic("upspa: invalid threshold: require 1 <= t <= n")
	}
}
