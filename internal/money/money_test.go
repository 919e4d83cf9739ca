package money

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCompletion(t *testing.T) {
	t.Run("should compute a quarter as 25", func(t *testing.T) {
		assert.True(t, Completion(d("250"), d("1000")).Equal(d("25.00")))
	})

	t.Run("should cap at 100", func(t *testing.T) {
		assert.True(t, Completion(d("1500"), d("1000")).Equal(d("100")))
		assert.True(t, Completion(d("1000"), d("1000")).Equal(d("100")))
	})

	t.Run("should be zero for a non-positive target", func(t *testing.T) {
		assert.True(t, Completion(d("50"), d("0")).IsZero())
		assert.True(t, Completion(d("50"), d("-10")).IsZero())
	})

	t.Run("should round the ratio half-up to four places before scaling", func(t *testing.T) {
		// 1/3 = 0.33333 -> 0.3333 -> 33.33
		assert.True(t, Completion(d("1"), d("3")).Equal(d("33.33")))
		// 2/3 = 0.66666 -> 0.6667 -> 66.67
		assert.True(t, Completion(d("2"), d("3")).Equal(d("66.67")))
		// 0.00005 rounds up to 0.0001
		assert.True(t, Completion(d("0.5"), d("10000")).Equal(d("0.01")))
	})
}

func TestAverage(t *testing.T) {
	t.Run("should divide to two places", func(t *testing.T) {
		assert.True(t, Average(d("100"), 3).Equal(d("33.33")))
		assert.True(t, Average(d("0.05"), 2).Equal(d("0.03")))
	})

	t.Run("should be zero without a count", func(t *testing.T) {
		assert.True(t, Average(d("100"), 0).IsZero())
	})
}

func TestSum(t *testing.T) {
	assert.True(t, Sum().IsZero())
	assert.True(t, Sum(d("1.10"), d("2.20"), d("-0.30")).Equal(d("3")))
}

func TestDecimalJSON(t *testing.T) {
	t.Run("should encode amounts as numbers", func(t *testing.T) {
		out, err := json.Marshal(map[string]decimal.Decimal{"amount": d("12.5")})
		require.NoError(t, err)
		assert.JSONEq(t, `{"amount": 12.5}`, string(out))
	})
}

func TestFitsAmount(t *testing.T) {
	t.Run("should accept up to two decimal places", func(t *testing.T) {
		assert.True(t, FitsAmount(d("10")))
		assert.True(t, FitsAmount(d("10.5")))
		assert.True(t, FitsAmount(d("10.05")))
		assert.True(t, FitsAmount(d("10.500")))
	})

	t.Run("should reject a third significant decimal place", func(t *testing.T) {
		assert.False(t, FitsAmount(d("10.005")))
		assert.False(t, FitsAmount(d("0.001")))
	})

	t.Run("should accept thirteen integer digits", func(t *testing.T) {
		assert.True(t, FitsAmount(d("9999999999999.99")))
		assert.True(t, FitsAmount(d("-9999999999999.99")))
	})

	t.Run("should reject fourteen integer digits", func(t *testing.T) {
		assert.False(t, FitsAmount(d("10000000000000")))
		assert.False(t, FitsAmount(d("-10000000000000")))
	})
}
