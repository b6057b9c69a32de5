package pricing

import "github.com/shopspring/decimal"

// Currency helpers for the decision engine. All prices are exact
// fixed-point values; binary floating point never enters the math.
// ⭐ SSOT: 통화 반올림은 이 패키지에서만

// CurrencyPlaces is the fractional precision of every stored price.
const CurrencyPlaces = 2

// RoundCurrency rounds to two fractional digits, half up.
// decimal.Round is half-away-from-zero, which for the non-negative
// values handled here is exactly round-half-up.
func RoundCurrency(d decimal.Decimal) decimal.Decimal {
	return d.Round(CurrencyPlaces)
}

// Mean returns the arithmetic mean of the given values. The result is
// not rounded; callers round after applying their policy.
func Mean(values []decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}

	sum := decimal.Zero
	for _, v := range values {
		sum = sum.Add(v)
	}
	return sum.Div(decimal.NewFromInt(int64(len(values))))
}

// AbsDiff returns |a - b|.
func AbsDiff(a, b decimal.Decimal) decimal.Decimal {
	return a.Sub(b).Abs()
}
