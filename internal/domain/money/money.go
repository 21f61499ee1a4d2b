// Package money defines the integer-cent monetary type used across the
// storefront. All currency arithmetic happens in minor units (centavos);
// floating point never carries money.
package money

import "strconv"

// Cents is an amount of money in minor currency units (BRL centavos).
type Cents int64

// Clamp floors negative amounts at zero.
func (c Cents) Clamp() Cents {
	if c < 0 {
		return 0
	}
	return c
}

// Min returns the smaller of two amounts.
func Min(a, b Cents) Cents {
	if a < b {
		return a
	}
	return b
}

// RoundDiv divides n by d rounding half up. Both operands must be
// non-negative; d must be positive.
func RoundDiv(n, d int64) int64 {
	return (n + d/2) / d
}

// FormatBRL renders an amount as a pt-BR currency string, e.g. 1090 cents
// becomes "R$ 10,90". Thousands are grouped with dots.
func FormatBRL(c Cents) string {
	neg := c < 0
	if neg {
		c = -c
	}

	whole := int64(c) / 100
	frac := int64(c) % 100

	digits := strconv.FormatInt(whole, 10)
	var grouped []byte
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			grouped = append(grouped, '.')
		}
		grouped = append(grouped, byte(r))
	}

	out := "R$ " + string(grouped) + ","
	if frac < 10 {
		out += "0"
	}
	out += strconv.FormatInt(frac, 10)
	if neg {
		out = "-" + out
	}
	return out
}
