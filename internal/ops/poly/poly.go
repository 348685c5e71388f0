// Package poly provides polynomial operations and the Polynomial domain
// artifact they exchange.
package poly

import (
	"fmt"
	"io"
	"math/big"

	"github.com/vk/invariant/internal/hashing"
	"github.com/vk/invariant/internal/value"
)

// TypeName is the fully-qualified identifier Polynomial artifacts carry in
// envelopes and wire documents.
const TypeName = "poly.Polynomial"

// Polynomial is an immutable dense polynomial over arbitrary-precision
// integer coefficients, lowest degree first. Trailing zero coefficients are
// stripped at construction; the zero polynomial keeps a single 0.
type Polynomial struct {
	coeffs []*big.Int
}

// New builds a polynomial from coefficients, copying and normalising them.
func New(coeffs []*big.Int) *Polynomial {
	end := len(coeffs)
	for end > 1 && coeffs[end-1].Sign() == 0 {
		end--
	}
	if end == 0 {
		return &Polynomial{coeffs: []*big.Int{big.NewInt(0)}}
	}
	out := make([]*big.Int, end)
	for i := 0; i < end; i++ {
		out[i] = new(big.Int).Set(coeffs[i])
	}
	return &Polynomial{coeffs: out}
}

// NewFromInt64 is a convenience constructor for literal coefficient lists.
func NewFromInt64(coeffs ...int64) *Polynomial {
	bigs := make([]*big.Int, len(coeffs))
	for i, c := range coeffs {
		bigs[i] = big.NewInt(c)
	}
	return New(bigs)
}

// Degree is the index of the highest coefficient.
func (p *Polynomial) Degree() int { return len(p.coeffs) - 1 }

// Coefficients projects the coefficient list into the Value universe.
func (p *Polynomial) Coefficients() value.List {
	out := make(value.List, len(p.coeffs))
	for i, c := range p.coeffs {
		out[i] = value.NewIntFromBig(c)
	}
	return out
}

// TypeName implements value.Artifact.
func (p *Polynomial) TypeName() string { return TypeName }

// StableHash hashes the coefficient list; structurally equal polynomials
// hash identically across processes.
func (p *Polynomial) StableHash() [32]byte {
	return hashing.HashValue(value.Map{"coefficients": p.Coefficients()})
}

// EncodeTo writes a coefficient count followed by each coefficient.
func (p *Polynomial) EncodeTo(w io.Writer) error {
	if err := value.WriteUint32(w, uint32(len(p.coeffs))); err != nil {
		return err
	}
	for _, c := range p.coeffs {
		if err := value.WriteBig(w, c); err != nil {
			return err
		}
	}
	return nil
}

// Decode is the stream decoder registered for TypeName.
func Decode(r io.Reader) (value.Artifact, error) {
	n, err := value.ReadUint32(r)
	if err != nil {
		return nil, fmt.Errorf("polynomial coefficient count: %w", err)
	}
	coeffs := make([]*big.Int, n)
	for i := uint32(0); i < n; i++ {
		c, err := value.ReadBig(r)
		if err != nil {
			return nil, fmt.Errorf("polynomial coefficient %d: %w", i, err)
		}
		coeffs[i] = c
	}
	return New(coeffs), nil
}

// DecodeJSON builds a polynomial from the wire format's value form: a list
// of integer coefficients.
func DecodeJSON(v value.Value) (value.Artifact, error) {
	l, ok := v.(value.List)
	if !ok {
		return nil, fmt.Errorf("polynomial value form must be a list, got %s", v.Kind())
	}
	return fromCoefficientList(l)
}

// Attrs exposes the polynomial to expression field access.
func (p *Polynomial) Attrs() map[string]value.Value {
	return map[string]value.Value{
		"coefficients": p.Coefficients(),
		"degree":       value.NewInt(int64(p.Degree())),
	}
}

// Add returns p + q, zero-padding the shorter operand.
func (p *Polynomial) Add(q *Polynomial) *Polynomial {
	n := max(len(p.coeffs), len(q.coeffs))
	out := make([]*big.Int, n)
	for i := 0; i < n; i++ {
		sum := new(big.Int)
		if i < len(p.coeffs) {
			sum.Add(sum, p.coeffs[i])
		}
		if i < len(q.coeffs) {
			sum.Add(sum, q.coeffs[i])
		}
		out[i] = sum
	}
	return New(out)
}

// Mul returns p * q by convolving the coefficient lists.
func (p *Polynomial) Mul(q *Polynomial) *Polynomial {
	out := make([]*big.Int, len(p.coeffs)+len(q.coeffs)-1)
	for i := range out {
		out[i] = new(big.Int)
	}
	for i, a := range p.coeffs {
		for j, b := range q.coeffs {
			out[i+j].Add(out[i+j], new(big.Int).Mul(a, b))
		}
	}
	return New(out)
}

// Scale multiplies every coefficient by k.
func (p *Polynomial) Scale(k *big.Int) *Polynomial {
	out := make([]*big.Int, len(p.coeffs))
	for i, c := range p.coeffs {
		out[i] = new(big.Int).Mul(c, k)
	}
	return New(out)
}

// Derivative maps c[i]*x^i to i*c[i]*x^(i-1).
func (p *Polynomial) Derivative() *Polynomial {
	if len(p.coeffs) <= 1 {
		return New(nil)
	}
	out := make([]*big.Int, len(p.coeffs)-1)
	for i := 1; i < len(p.coeffs); i++ {
		out[i-1] = new(big.Int).Mul(p.coeffs[i], big.NewInt(int64(i)))
	}
	return New(out)
}

// Evaluate applies Horner's method at x.
func (p *Polynomial) Evaluate(x *big.Int) *big.Int {
	result := new(big.Int)
	for i := len(p.coeffs) - 1; i >= 0; i-- {
		result.Mul(result, x)
		result.Add(result, p.coeffs[i])
	}
	return result
}

func fromCoefficientList(l value.List) (*Polynomial, error) {
	coeffs := make([]*big.Int, len(l))
	for i, e := range l {
		c, ok := e.(value.Int)
		if !ok {
			return nil, fmt.Errorf("coefficient at index %d must be int, got %s", i, e.Kind())
		}
		coeffs[i] = c.Big()
	}
	return New(coeffs), nil
}
