package valueobject

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	hundred       = decimal.NewFromInt(100)
	maxMinorUnits = decimal.NewFromInt(math.MaxInt64)
)

// Amount is a strictly positive monetary value in major units.
type Amount struct{ value decimal.Decimal }

func NewAmount(v decimal.Decimal) (Amount, error) {
	if !v.IsPositive() {
		return Amount{}, invalid("amount", ErrAmountNotPositive)
	}
	if v.Mul(hundred).Truncate(0).GreaterThan(maxMinorUnits) {
		return Amount{}, invalid("amount", ErrAmountTooLarge)
	}
	return Amount{v}, nil
}

// ParseAmount reads a decimal string such as "99.99".
func ParseAmount(v string) (Amount, error) {
	if strings.TrimSpace(v) == "" {
		return Amount{}, invalid("amount", ErrRequired)
	}
	d, err := decimal.NewFromString(strings.TrimSpace(v))
	if err != nil {
		return Amount{}, invalid("amount", ErrMalformedAmount)
	}
	return NewAmount(d)
}

func (a Amount) Decimal() decimal.Decimal { return a.value }
func (a Amount) String() string           { return a.value.String() }

// MinorUnits converts to cents, truncating anything below one cent.
func (a Amount) MinorUnits() int64 {
	return a.value.Mul(hundred).Truncate(0).IntPart()
}

// PaidAt is the moment a payment was made. Any instant is accepted.
type PaidAt struct{ value time.Time }

func NewPaidAt(t time.Time) PaidAt { return PaidAt{t} }

func (p PaidAt) Time() time.Time { return p.value }
