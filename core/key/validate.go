package key

import (
	"crypto/elliptic"
	"math/big"

	"github.com/kochabx/webpush/errors"
)

// curve holds the short Weierstrass parameters y² = x³ + ax + b over GF(p).
type curve struct {
	name     string
	p        *big.Int
	a        *big.Int
	b        *big.Int
	cofactor int
}

// p256 has a = -3, stored reduced mod p.
var p256 = func() *curve {
	params := elliptic.P256().Params()
	return &curve{
		name:     params.Name,
		p:        params.P,
		a:        new(big.Int).Sub(params.P, big.NewInt(3)),
		b:        params.B,
		cofactor: 1,
	}
}()

// Validate performs the full public key validation of NIST SP 800-56A section 5.6.2.3 for a
// P-256 point given by its affine coordinates.
func Validate(x, y *big.Int) error {
	return p256.validate(x, y)
}

func (c *curve) validate(x, y *big.Int) error {
	if c.cofactor != 1 {
		return errors.PublicKeyValidation("the cofactor of %s is not 1", c.name)
	}
	if x == nil || y == nil || (x.Sign() == 0 && y.Sign() == 0) {
		return errors.PublicKeyValidation("the point is the point at infinity")
	}
	if !c.inField(x) {
		return errors.PublicKeyValidation("x is out of range [0, p-1]")
	}
	if !c.inField(y) {
		return errors.PublicKeyValidation("y is out of range [0, p-1]")
	}

	lhs := new(big.Int).Mul(y, y)
	lhs.Mod(lhs, c.p)

	rhs := new(big.Int).Mul(x, x)
	rhs.Mul(rhs, x)
	ax := new(big.Int).Mul(c.a, x)
	rhs.Add(rhs, ax)
	rhs.Add(rhs, c.b)
	rhs.Mod(rhs, c.p)

	if lhs.Cmp(rhs) != 0 {
		return errors.PublicKeyValidation("the point is not on %s", c.name)
	}
	return nil
}

func (c *curve) inField(v *big.Int) bool {
	return v.Sign() >= 0 && v.Cmp(c.p) < 0
}
