// Package money holds the decimal arithmetic shared by the services. All
// rounding is half away from zero, which matches half-up for the positive
// amounts the services deal in.
package money

import "github.com/shopspring/decimal"

func init() {
	// Amounts travel as JSON numbers, not strings
	decimal.MarshalJSONWithoutQuotes = true
}

var (
	Hundred     = decimal.NewFromInt(100)
	MaxPercent  = Hundred
	RatioPlaces = int32(4)
)

// Stored amounts are NUMERIC(15,2): 13 integer digits and 2 decimal places.
const (
	AmountPlaces        = 2
	AmountIntegerDigits = 13
)

var amountLimit = decimal.New(1, AmountIntegerDigits)

// FitsAmount reports whether d can be stored as an amount without rounding
// or overflow.
func FitsAmount(d decimal.Decimal) bool {
	return d.Equal(d.Round(AmountPlaces)) && d.Abs().LessThan(amountLimit)
}

// Ratio returns part/whole rounded to four places, or zero when whole is not
// positive.
func Ratio(part, whole decimal.Decimal) decimal.Decimal {
	if !whole.IsPositive() {
		return decimal.Zero
	}
	return part.DivRound(whole, RatioPlaces)
}

// Percent is Ratio scaled to a percentage.
func Percent(part, whole decimal.Decimal) decimal.Decimal {
	return Ratio(part, whole).Mul(Hundred)
}

// Completion is Percent capped at 100.
func Completion(current, target decimal.Decimal) decimal.Decimal {
	return decimal.Min(Percent(current, target), MaxPercent)
}

// Average divides total by count to two places. A non-positive count yields zero.
func Average(total decimal.Decimal, count int64) decimal.Decimal {
	if count <= 0 {
		return decimal.Zero
	}
	return total.DivRound(decimal.NewFromInt(count), 2)
}

func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
