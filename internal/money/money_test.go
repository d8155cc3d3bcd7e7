package money

import (
	"errors"
	"testing"

	"finance_tracker/internal/apperr"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestParse(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"1.23", "1.23", true},
		{"1,23", "1.23", true},
		{" 2.50 ", "2.5", true},
		{"0.01", "0.01", true},
		{"0", "0", true},
		{"1.230", "1.23", true},
		{"0.005", "", false},
		{"0.001", "", false},
		{"12.345", "", false},
		{"-1", "", false},
		{"+1", "", false},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := Parse(tc.in)
		if tc.ok {
			require.NoError(t, err, tc.in)
			assert.True(t, got.Equal(d(tc.out)), "%q: got %s", tc.in, got)
		} else {
			assert.True(t, errors.Is(err, apperr.ErrInvalidAmount), "%q expected invalid amount, got %v", tc.in, err)
		}
	}
}

func TestArithmeticIsExact(t *testing.T) {
	// 0.1 + 0.2 is the classic float trap
	assert.True(t, Add(d("0.1"), d("0.2")).Equal(d("0.3")))
	assert.True(t, Sub(d("100.00"), d("30.00")).Equal(d("70")))
	assert.Equal(t, -1, Cmp(d("1.00"), d("1.01")))
	assert.True(t, Equal(d("5"), d("5.000")))
}

func TestFloorZero(t *testing.T) {
	assert.True(t, FloorZero(d("-40.00")).Equal(Zero))
	assert.True(t, FloorZero(d("12.5")).Equal(d("12.5")))
	assert.True(t, FloorZero(Zero).Equal(Zero))
}

func TestSum(t *testing.T) {
	assert.True(t, Sum().Equal(Zero))
	assert.True(t, Sum(d("10"), d("20.25"), d("0.75")).Equal(d("31")))
}

func TestRequirePositive(t *testing.T) {
	assert.NoError(t, RequirePositive(d("0.01")))
	assert.ErrorIs(t, RequirePositive(Zero), apperr.ErrInvalidAmount)
	assert.ErrorIs(t, RequirePositive(d("-3")), apperr.ErrInvalidAmount)
	assert.ErrorIs(t, RequirePositive(d("0.005")), apperr.ErrInvalidAmount)
	assert.ErrorIs(t, RequirePositive(d("0.001")), apperr.ErrInvalidAmount)
	assert.NoError(t, RequirePositive(d("10.500")))
}

func TestRequireScale(t *testing.T) {
	assert.NoError(t, RequireScale(Zero))
	assert.NoError(t, RequireScale(d("99.99")))
	assert.NoError(t, RequireScale(d("-4.10")))
	err := RequireScale(d("99.995"))
	assert.ErrorIs(t, err, apperr.ErrInvalidAmount)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestString(t *testing.T) {
	assert.Equal(t, "50.00", String(d("50")))
	assert.Equal(t, "0.13", String(Round(d("0.125"))))
}
