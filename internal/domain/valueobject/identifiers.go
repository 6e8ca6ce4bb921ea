package valueobject

import (
	"strings"

	"github.com/google/uuid"
)

const (
	GatewayMethodPrefix   = "pm_"
	GatewayCustomerPrefix = "cus_"
)

// PaymentMethodID identifies a locally stored payment method.
type PaymentMethodID struct{ value string }

// OwnerID identifies the marketplace user owning methods and payments.
type OwnerID struct{ value string }

// PaymentID identifies a locally stored payment.
type PaymentID struct{ value string }

// ReservationID identifies a reservation held by the reservation service.
type ReservationID struct{ value string }

// EventID identifies the marketplace event a payment belongs to.
type EventID struct{ value string }

// GatewayMethodID is the gateway's token for a card (pm_...).
type GatewayMethodID struct{ value string }

// GatewayCustomerID is the gateway's customer reference (cus_...).
type GatewayCustomerID struct{ value string }

func NewPaymentMethodID(v string) (PaymentMethodID, error) {
	s, err := parseGUID("payment method id", v)
	return PaymentMethodID{s}, err
}

// GeneratePaymentMethodID returns a fresh random identifier.
func GeneratePaymentMethodID() PaymentMethodID { return PaymentMethodID{uuid.NewString()} }

func NewOwnerID(v string) (OwnerID, error) {
	s, err := parseGUID("owner id", v)
	return OwnerID{s}, err
}

func NewPaymentID(v string) (PaymentID, error) {
	s, err := parseGUID("payment id", v)
	return PaymentID{s}, err
}

// GeneratePaymentID returns a fresh random identifier.
func GeneratePaymentID() PaymentID { return PaymentID{uuid.NewString()} }

func NewReservationID(v string) (ReservationID, error) {
	s, err := parseGUID("reservation id", v)
	return ReservationID{s}, err
}

func NewEventID(v string) (EventID, error) {
	s, err := parseGUID("event id", v)
	return EventID{s}, err
}

func NewGatewayMethodID(v string) (GatewayMethodID, error) {
	s, err := parsePrefixed("gateway payment method id", v, GatewayMethodPrefix, ErrGatewayMethodPrefix)
	return GatewayMethodID{s}, err
}

func NewGatewayCustomerID(v string) (GatewayCustomerID, error) {
	s, err := parsePrefixed("gateway customer id", v, GatewayCustomerPrefix, ErrGatewayCustomerPrefix)
	return GatewayCustomerID{s}, err
}

func (id PaymentMethodID) String() string   { return id.value }
func (id OwnerID) String() string           { return id.value }
func (id PaymentID) String() string         { return id.value }
func (id ReservationID) String() string     { return id.value }
func (id EventID) String() string           { return id.value }
func (id GatewayMethodID) String() string   { return id.value }
func (id GatewayCustomerID) String() string { return id.value }

func parseGUID(field, v string) (string, error) {
	if strings.TrimSpace(v) == "" {
		return "", invalid(field, ErrRequired)
	}
	if _, err := uuid.Parse(v); err != nil {
		return "", invalid(field, ErrMalformedGUID)
	}
	return v, nil
}

func parsePrefixed(field, v, prefix string, prefixErr error) (string, error) {
	if strings.TrimSpace(v) == "" {
		return "", invalid(field, ErrRequired)
	}
	if !strings.HasPrefix(v, prefix) {
		return "", invalid(field, prefixErr)
	}
	return v, nil
}
