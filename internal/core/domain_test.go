package core

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProperty() PropertyInput {
	return PropertyInput{
		Address:     "Highland Manor, Unit 4B",
		UnitCount:   4,
		MonthlyRent: Dollars(3200),
		Status:      Vacant,
		Type:        Residential,
	}
}

func TestPropertyInputValidate(t *testing.T) {
	require.NoError(t, validProperty().Validate())

	zeroRent := validProperty()
	zeroRent.MonthlyRent = Money{}
	assert.NoError(t, zeroRent.Validate(), "zero rent is allowed")

	cases := []struct {
		name   string
		mutate func(*PropertyInput)
		field  string
		err    error
	}{
		{"blank address", func(p *PropertyInput) { p.Address = "  " }, "address", ErrEmptyAddress},
		{"zero units", func(p *PropertyInput) { p.UnitCount = 0 }, "unitCount", ErrInvalidUnitCount},
		{"negative rent", func(p *PropertyInput) { p.MonthlyRent = Money{Cents: -1} }, "monthlyRent", ErrNegativeRent},
		{"unknown status", func(p *PropertyInput) { p.Status = "leased" }, "status", ErrInvalidStatus},
		{"unknown type", func(p *PropertyInput) { p.Type = "Farm" }, "type", ErrInvalidPropertyType},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validProperty()
			tc.mutate(&in)
			err := in.Validate()
			require.Error(t, err)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, "property", verr.Entity)
			assert.Equal(t, tc.field, verr.Field)
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestPropertyUpdate(t *testing.T) {
	var empty PropertyUpdate
	assert.ErrorIs(t, empty.Validate(), ErrEmptyUpdate)

	status := Occupied
	rent := Dollars(1850)
	u := PropertyUpdate{Status: &status, MonthlyRent: &rent}
	require.NoError(t, u.Validate())

	got := u.Apply(Property{ID: "2", Address: "Oakwood", UnitCount: 1, Status: Vacant, MonthlyRent: Dollars(100)})
	assert.Equal(t, Occupied, got.Status)
	assert.Equal(t, rent, got.MonthlyRent)
	assert.Equal(t, "Oakwood", got.Address)

	units := 0
	assert.ErrorIs(t, PropertyUpdate{UnitCount: &units}.Validate(), ErrInvalidUnitCount)

	body, err := json.Marshal(u)
	require.NoError(t, err)
	assert.JSONEq(t, `{"monthlyRent":1850,"status":"occupied"}`, string(body))
}

func TestTenantInputValidate(t *testing.T) {
	good := TenantInput{
		Name:       "John Doe",
		PropertyID: "1",
		LeaseStart: NewDate(2024, 1, 1),
		LeaseEnd:   NewDate(2023, 1, 1), // lease order is not enforced
		Email:      "john@example.com",
	}
	require.NoError(t, good.Validate())

	bads := []struct {
		mutate func(*TenantInput)
		err    error
	}{
		{func(in *TenantInput) { in.Name = "" }, ErrEmptyName},
		{func(in *TenantInput) { in.PropertyID = "" }, ErrEmptyPropertyID},
		{func(in *TenantInput) { in.Email = "" }, ErrEmptyEmail},
		{func(in *TenantInput) { in.Email = "john.example.com" }, ErrInvalidEmail},
		{func(in *TenantInput) { in.LeaseStart = Date{} }, ErrMissingDate},
		{func(in *TenantInput) { in.LeaseEnd = Date{} }, ErrMissingDate},
	}
	for i, tc := range bads {
		in := good
		tc.mutate(&in)
		assert.ErrorIs(t, in.Validate(), tc.err, "case %d", i)
	}
}

func TestPaymentInputValidate(t *testing.T) {
	good := PaymentInput{PropertyID: "1", TenantID: "t1", Amount: Dollars(3200), Date: NewDate(2024, 4, 1), Status: Pending}
	require.NoError(t, good.Validate())

	bads := []struct {
		mutate func(*PaymentInput)
		err    error
	}{
		{func(in *PaymentInput) { in.PropertyID = "" }, ErrEmptyPropertyID},
		{func(in *PaymentInput) { in.TenantID = " " }, ErrEmptyTenantID},
		{func(in *PaymentInput) { in.Amount = Money{} }, ErrInvalidAmount},
		{func(in *PaymentInput) { in.Date = Date{} }, ErrMissingDate},
		{func(in *PaymentInput) { in.Status = "overdue" }, ErrInvalidPaymentStatus},
	}
	for i, tc := range bads {
		in := good
		tc.mutate(&in)
		assert.ErrorIs(t, in.Validate(), tc.err, "case %d", i)
	}
}

func TestDecodeBackendPayloads(t *testing.T) {
	// The reference backend sends integer ids, float rents and may omit optional fields.
	var p Property
	require.NoError(t, json.Unmarshal([]byte(`{"id":7,"address":"Seed St","unitCount":1,"monthlyRent":1000.0,"status":"vacant"}`), &p))
	assert.Equal(t, ID("7"), p.ID)
	assert.Equal(t, int64(100000), p.MonthlyRent.Cents)
	assert.Equal(t, Vacant, p.Status)

	var tn Tenant
	require.NoError(t, json.Unmarshal([]byte(`{"id":"t1","name":"Jane","propertyId":null,"leaseStart":"2023-06-15","leaseEnd":null,"email":"jane@example.com"}`), &tn))
	assert.True(t, tn.PropertyID.IsZero())
	assert.Equal(t, NewDate(2023, 6, 15), tn.LeaseStart)
	assert.True(t, tn.LeaseEnd.IsZero())

	var pay Payment
	require.Error(t, json.Unmarshal([]byte(`{"id":"p1","date":"not-a-date"}`), &pay))
}

func TestDateJSON(t *testing.T) {
	body, err := json.Marshal(struct {
		D Date `json:"d"`
	}{NewDate(2024, 3, 5)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"d":"2024-03-05"}`, string(body))

	d, err := ParseDate("2024-03-05T10:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, NewDate(2024, 3, 5), d)
}
