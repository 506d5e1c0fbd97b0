/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package decode

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Price is a fixed-point price, stored exactly as numerator/10^fracDigits
// with no binary-float rounding. Formatting follows the source's string
// rule, not decimal's default rendering: trailing zeros are stripped, but
// if exactly one fractional digit survives the strip, a trailing zero is
// restored, and a price with no fractional digits gets ".00", so every
// rendered price carries at least two decimal places.
type Price struct {
	dec decimal.Decimal
}

// Value is price*volume truncated to an integer, kept as its own type so
// callers can't accidentally mix it with a Price.
type Value decimal.Decimal

func (v Value) String() string {
	return decimal.Decimal(v).String()
}

func newPrice(numeratorField string, fracDigits int) (Price, error) {
	if numeratorField == "" {
		return Price{dec: decimal.Zero}, nil
	}
	d, err := decimal.NewFromString(numeratorField)
	if err != nil {
		return Price{}, &DecodeError{Field: "price", Value: numeratorField, Err: fmt.Errorf("not numeric")}
	}
	// Shift adjusts the exponent exactly; no division, no rounding.
	return Price{dec: d.Shift(int32(-fracDigits))}, nil
}

// String renders the price using the source's trim-then-pad rule.
func (p Price) String() string {
	raw := p.dec.StringFixed(int32(fracDigitsOf(p.dec)))
	dot := strings.IndexByte(raw, '.')
	if dot < 0 {
		return raw + ".00"
	}
	intPart, fracPart := raw[:dot], raw[dot+1:]
	fracPart = strings.TrimRight(fracPart, "0")
	if fracPart == "" {
		fracPart = "0"
	}
	if len(fracPart) == 1 {
		fracPart += "0"
	}
	return intPart + "." + fracPart
}

// fracDigitsOf returns the number of digits to the right of the decimal
// point implied by the decimal's own exponent, so StringFixed renders the
// full-precision value (e.g. "7.3000") before this package's own
// trim/pad rule is applied.
func fracDigitsOf(d decimal.Decimal) int {
	exp := d.Exponent()
	if exp >= 0 {
		return 0
	}
	return int(-exp)
}

// ComputeValue returns floor(price*volume), truncated toward zero exactly
// the way the source computes int(price*volume) on a float — including
// when volume is negative, which the amend-for-price path can produce
// verbatim (see the cancel disambiguator's design notes). Preserved, not
// "fixed".
func ComputeValue(price Price, volume int) Value {
	return Value(price.dec.Mul(decimal.NewFromInt(int64(volume))).Truncate(0))
}
