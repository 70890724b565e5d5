package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Occupied PropertyStatus = "occupied"
	Vacant   PropertyStatus = "vacant"

	Residential PropertyType = "Residential"
	Commercial  PropertyType = "Commercial"
	Industrial  PropertyType = "Industrial"

	Paid    PaymentStatus = "paid"
	Pending PaymentStatus = "pending"
)

const dateLayout = "2006-01-02"

type (
	PropertyStatus string
	PropertyType   string
	PaymentStatus  string

	// ID is an opaque entity identifier. The backend may send it as a
	// JSON number or string; it is always held as a string.
	ID string

	Date struct {
		time.Time
	}

	Property struct {
		ID          ID             `json:"id"`
		Address     string         `json:"address"`
		UnitCount   int            `json:"unitCount"`
		MonthlyRent Money          `json:"monthlyRent"`
		Status      PropertyStatus `json:"status"`
		Type        PropertyType   `json:"type,omitempty"`
		ImageURL    string         `json:"imageUrl,omitempty"`
	}

	Tenant struct {
		ID         ID     `json:"id"`
		Name       string `json:"name"`
		PropertyID ID     `json:"propertyId"`
		LeaseStart Date   `json:"leaseStart"`
		LeaseEnd   Date   `json:"leaseEnd"`
		Email      string `json:"email"`
		Avatar     string `json:"avatar,omitempty"`
	}

	Payment struct {
		ID         ID            `json:"id"`
		PropertyID ID            `json:"propertyId"`
		TenantID   ID            `json:"tenantId"`
		Amount     Money         `json:"amount"`
		Date       Date          `json:"date"`
		Status     PaymentStatus `json:"status"`
	}

	User struct {
		ID    ID     `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
)

var (
	ErrEmptyAddress         = errors.New("empty address")
	ErrInvalidUnitCount     = errors.New("unit count must be positive")
	ErrNegativeRent         = errors.New("monthly rent cannot be negative")
	ErrInvalidStatus        = errors.New("invalid property status")
	ErrInvalidPropertyType  = errors.New("invalid property type")
	ErrEmptyName            = errors.New("empty name")
	ErrEmptyEmail           = errors.New("empty email")
	ErrInvalidEmail         = errors.New("invalid email")
	ErrEmptyPropertyID      = errors.New("empty property id")
	ErrEmptyTenantID        = errors.New("empty tenant id")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrMissingDate          = errors.New("date is required")
	ErrInvalidPaymentStatus = errors.New("invalid payment status")
	ErrEmptyUpdate          = errors.New("update has no fields")
	ErrEmptyPassword        = errors.New("empty password")
)

// ValidationError reports malformed caller input. It is raised before
// anything is sent over the network.
type ValidationError struct {
	Entity string
	Field  string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %s: %v", e.Entity, e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(entity, field string, err error) error {
	return &ValidationError{Entity: entity, Field: field, Err: err}
}

func (s PropertyStatus) Valid() bool {
	return s == Occupied || s == Vacant
}

func (t PropertyType) Valid() bool {
	switch t {
	case Residential, Commercial, Industrial:
		return true
	default:
		return false
	}
}

func (s PaymentStatus) Valid() bool {
	return s == Paid || s == Pending
}

func (id ID) String() string { return string(id) }

// IsZero reports whether the id is empty.
func (id ID) IsZero() bool { return strings.TrimSpace(string(id)) == "" }

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses YYYY-MM-DD, falling back to RFC 3339 timestamps.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return Date{Time: t}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	y, m, d := t.Date()
	return NewDate(y, int(m), d), nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Input shapes: the entity without its id.
type (
	PropertyInput struct {
		Address     string         `json:"address"`
		UnitCount   int            `json:"unitCount"`
		MonthlyRent Money          `json:"monthlyRent"`
		Status      PropertyStatus `json:"status"`
		Type        PropertyType   `json:"type"`
		ImageURL    string         `json:"imageUrl,omitempty"`
	}

	// PropertyUpdate carries only the fields being changed.
	PropertyUpdate struct {
		Address     *string         `json:"address,omitempty"`
		UnitCount   *int            `json:"unitCount,omitempty"`
		MonthlyRent *Money          `json:"monthlyRent,omitempty"`
		Status      *PropertyStatus `json:"status,omitempty"`
		Type        *PropertyType   `json:"type,omitempty"`
		ImageURL    *string         `json:"imageUrl,omitempty"`
	}

	TenantInput struct {
		Name       string `json:"name"`
		PropertyID ID     `json:"propertyId"`
		LeaseStart Date   `json:"leaseStart"`
		LeaseEnd   Date   `json:"leaseEnd"`
		Email      string `json:"email"`
		Avatar     string `json:"avatar,omitempty"`
	}

	PaymentInput struct {
		PropertyID ID            `json:"propertyId"`
		TenantID   ID            `json:"tenantId"`
		Amount     Money         `json:"amount"`
		Date       Date          `json:"date"`
		Status     PaymentStatus `json:"status"`
	}
)

func (in PropertyInput) Validate() error {
	if strings.TrimSpace(in.Address) == "" {
		return invalid("property", "address", ErrEmptyAddress)
	}
	if in.UnitCount < 1 {
		return invalid("property", "unitCount", ErrInvalidUnitCount)
	}
	if in.MonthlyRent.Cents < 0 {
		return invalid("property", "monthlyRent", ErrNegativeRent)
	}
	if !in.Status.Valid() {
		return invalid("property", "status", ErrInvalidStatus)
	}
	if !in.Type.Valid() {
		return invalid("property", "type", ErrInvalidPropertyType)
	}
	return nil
}

func (u PropertyUpdate) Validate() error {
	if u.IsEmpty() {
		return invalid("property", "update", ErrEmptyUpdate)
	}
	if u.Address != nil && strings.TrimSpace(*u.Address) == "" {
		return invalid("property", "address", ErrEmptyAddress)
	}
	if u.UnitCount != nil && *u.UnitCount < 1 {
		return invalid("property", "unitCount", ErrInvalidUnitCount)
	}
	if u.MonthlyRent != nil && u.MonthlyRent.Cents < 0 {
		return invalid("property", "monthlyRent", ErrNegativeRent)
	}
	if u.Status != nil && !u.Status.Valid() {
		return invalid("property", "status", ErrInvalidStatus)
	}
	if u.Type != nil && !u.Type.Valid() {
		return invalid("property", "type", ErrInvalidPropertyType)
	}
	return nil
}

// IsEmpty returns true when no field is set.
func (u PropertyUpdate) IsEmpty() bool {
	return u.Address == nil && u.UnitCount == nil && u.MonthlyRent == nil &&
		u.Status == nil && u.Type == nil && u.ImageURL == nil
}

// Apply returns p with the update's fields merged in.
func (u PropertyUpdate) Apply(p Property) Property {
	if u.Address != nil {
		p.Address = *u.Address
	}
	if u.UnitCount != nil {
		p.UnitCount = *u.UnitCount
	}
	if u.MonthlyRent != nil {
		p.MonthlyRent = *u.MonthlyRent
	}
	if u.Status != nil {
		p.Status = *u.Status
	}
	if u.Type != nil {
		p.Type = *u.Type
	}
	if u.ImageURL != nil {
		p.ImageURL = *u.ImageURL
	}
	return p
}

func (in TenantInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return invalid("tenant", "name", ErrEmptyName)
	}
	if in.PropertyID.IsZero() {
		return invalid("tenant", "propertyId", ErrEmptyPropertyID)
	}
	email := strings.TrimSpace(in.Email)
	if email == "" {
		return invalid("tenant", "email", ErrEmptyEmail)
	}
	if !strings.Contains(email, "@") {
		return invalid("tenant", "email", ErrInvalidEmail)
	}
	if in.LeaseStart.IsZero() {
		return invalid("tenant", "leaseStart", ErrMissingDate)
	}
	if in.LeaseEnd.IsZero() {
		return invalid("tenant", "leaseEnd", ErrMissingDate)
	}
	return nil
}

func (in PaymentInput) Validate() error {
	if in.PropertyID.IsZero() {
		return invalid("payment", "propertyId", ErrEmptyPropertyID)
	}
	if in.TenantID.IsZero() {
		return invalid("payment", "tenantId", ErrEmptyTenantID)
	}
	if err := in.Amount.Validate(); err != nil {
		return invalid("payment", "amount", err)
	}
	if in.Date.IsZero() {
		return invalid("payment", "date", ErrMissingDate)
	}
	if !in.Status.Valid() {
		return invalid("payment", "status", ErrInvalidPaymentStatus)
	}
	return nil
}

// ParseID is a convenience for CLI input.
func ParseID(s string) (ID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errors.New("empty id")
	}
	return ID(s), nil
}

// ValidateLogin checks login input before it is sent.
func ValidateLogin(email, password string) error {
	if strings.TrimSpace(email) == "" {
		return invalid("credentials", "email", ErrEmptyEmail)
	}
	if password == "" {
		return invalid("credentials", "password", ErrEmptyPassword)
	}
	return nil
}

// ValidateRegistration checks sign-up input before it is sent.
func ValidateRegistration(email, password, name string) error {
	if err := ValidateLogin(email, password); err != nil {
		return err
	}
	if strings.TrimSpace(name) == "" {
		return invalid("credentials", "name", ErrEmptyName)
	}
	return nil
}
