package curve

import (
	"fmt"
	"math/big"
)

// Type selects the invariant a pool prices against.
type Type uint8

const (
	// Volatile is the constant-product invariant x*y = k.
	Volatile Type = iota
	// Stable is the cubic invariant x^3*y + x*y^3 = k, used for pairs
	// expected to trade near parity.
	Stable
)

// MaxNewtonIterations bounds the stable-curve solver so it always terminates.
const MaxNewtonIterations = 255

func (t Type) String() string {
	if t == Stable {
		return "stable"
	}
	return "volatile"
}

// K returns the invariant value for the given reserves.
func K(x, y *big.Int, t Type) *big.Int {
	if t == Stable {
		return stableK(x, y)
	}
	return new(big.Int).Mul(x, y)
}

// stableK computes x^3*y + x*y^3.
func stableK(x, y *big.Int) *big.Int {
	x3y := new(big.Int).Mul(x, x)
	x3y.Mul(x3y, x)
	x3y.Mul(x3y, y)

	xy3 := new(big.Int).Mul(y, y)
	xy3.Mul(xy3, y)
	xy3.Mul(xy3, x)

	return x3y.Add(x3y, xy3)
}

// AmountOut prices a trade of netIn units against reserves (reserveIn,
// reserveOut). The fee must already be removed from netIn. Reserves must
// both be positive.
func AmountOut(reserveIn, reserveOut, netIn *big.Int, t Type) (*big.Int, error) {
	if reserveIn.Sign() <= 0 || reserveOut.Sign() <= 0 {
		return nil, fmt.Errorf("reserves must be positive")
	}
	if netIn.Sign() <= 0 {
		return nil, fmt.Errorf("input amount must be positive")
	}

	if t == Stable {
		return stableAmountOut(reserveIn, reserveOut, netIn)
	}

	// out = netIn * reserveOut / (reserveIn + netIn). Equivalent to
	// reserveOut - reserveIn*reserveOut/(reserveIn+netIn); flooring the
	// output side keeps the post-trade product at or above k.
	denom := new(big.Int).Add(reserveIn, netIn)
	out := new(big.Int).Mul(netIn, reserveOut)
	out.Quo(out, denom)
	return out, nil
}

// stableAmountOut solves x^3*y + x*y^3 = k for the post-trade output
// reserve y at x = reserveIn + netIn, then returns reserveOut - y.
// The cubic has no closed form, so Newton's method iterates from the
// current output reserve until the step shrinks to one unit.
func stableAmountOut(reserveIn, reserveOut, netIn *big.Int) (*big.Int, error) {
	k := stableK(reserveIn, reserveOut)
	x := new(big.Int).Add(reserveIn, netIn)
	y := solveY(x, reserveOut, k)
	return new(big.Int).Sub(reserveOut, y), nil
}

// solveY finds y such that x^3*y + x*y^3 ~= k, starting from y0.
func solveY(x, y0, k *big.Int) *big.Int {
	y := new(big.Int).Set(y0)
	one := big.NewInt(1)

	for i := 0; i < MaxNewtonIterations; i++ {
		f := stableK(x, y)
		d := derivative(x, y)
		if d.Sign() == 0 {
			break
		}

		var step *big.Int
		if f.Cmp(k) < 0 {
			step = new(big.Int).Sub(k, f)
			step.Quo(step, d)
			y.Add(y, step)
		} else {
			step = new(big.Int).Sub(f, k)
			step.Quo(step, d)
			y.Sub(y, step)
		}

		if step.Cmp(one) <= 0 {
			break
		}
	}

	return y
}

// derivative computes d/dy of x^3*y + x*y^3, i.e. 3*x*y^2 + x^3.
func derivative(x, y *big.Int) *big.Int {
	left := new(big.Int).Mul(y, y)
	left.Mul(left, x)
	left.Mul(left, big.NewInt(3))

	right := new(big.Int).Mul(x, x)
	right.Mul(right, x)

	return left.Add(left, right)
}
