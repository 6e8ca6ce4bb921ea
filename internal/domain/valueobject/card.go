package valueobject

import (
	"strings"
	"time"
)

// RegistrationSkew is how far in the future a registration date may be.
const RegistrationSkew = 2 * time.Minute

var supportedBrands = map[string]struct{}{
	"visa":       {},
	"mastercard": {},
	"amex":       {},
	"discover":   {},
	"jcb":        {},
	"diners":     {},
	"unionpay":   {},
}

// Brand is a card network name as reported by the gateway.
type Brand struct{ value string }

type ExpiryMonth struct{ value int }

type ExpiryYear struct{ value int }

// Last4 holds the trailing four digits of the card number.
type Last4 struct{ value string }

type RegisteredAt struct{ value time.Time }

func NewBrand(v string) (Brand, error) {
	if strings.TrimSpace(v) == "" {
		return Brand{}, invalid("brand", ErrRequired)
	}
	if _, ok := supportedBrands[strings.ToLower(v)]; !ok {
		return Brand{}, invalid("brand", ErrUnsupportedBrand)
	}
	return Brand{v}, nil
}

func NewExpiryMonth(v int) (ExpiryMonth, error) {
	if v < 1 || v > 12 {
		return ExpiryMonth{}, invalid("expiry month", ErrExpiryMonthOutOfRange)
	}
	return ExpiryMonth{v}, nil
}

// NewExpiryYear rejects years before now's year (UTC).
func NewExpiryYear(v int, now time.Time) (ExpiryYear, error) {
	if v < now.UTC().Year() {
		return ExpiryYear{}, invalid("expiry year", ErrExpiryYearInPast)
	}
	return ExpiryYear{v}, nil
}

// RestoreExpiryYear rebuilds a stored year. The year was checked when the
// method was registered; a card expiring since then must stay readable.
func RestoreExpiryYear(v int) ExpiryYear { return ExpiryYear{v} }

func NewLast4(v string) (Last4, error) {
	if strings.TrimSpace(v) == "" {
		return Last4{}, invalid("last4", ErrRequired)
	}
	if len(v) != 4 {
		return Last4{}, invalid("last4", ErrLast4Length)
	}
	for _, r := range v {
		if r < '0' || r > '9' {
			return Last4{}, invalid("last4", ErrLast4NotNumeric)
		}
	}
	return Last4{v}, nil
}

// NewRegisteredAt accepts dates up to RegistrationSkew after now.
func NewRegisteredAt(t, now time.Time) (RegisteredAt, error) {
	if t.After(now.Add(RegistrationSkew)) {
		return RegisteredAt{}, invalid("registration date", ErrRegisteredInFuture)
	}
	return RegisteredAt{t}, nil
}

// RestoreRegisteredAt rebuilds a stored registration date.
func RestoreRegisteredAt(t time.Time) RegisteredAt { return RegisteredAt{t} }

func (b Brand) String() string         { return b.value }
func (m ExpiryMonth) Int() int         { return m.value }
func (y ExpiryYear) Int() int          { return y.value }
func (l Last4) String() string         { return l.value }
func (r RegisteredAt) Time() time.Time { return r.value }

// Masked renders the card number the way it is shown to users.
func (l Last4) Masked() string { return "**** **** **** " + l.value }
