package contract

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freightlens/auditor/internal/domain"
)

type fakeMasterData struct {
	rates     map[string][]domain.RateLine
	fuelRates map[string]float64 // keyed by contractID
	err       error
}

func (f *fakeMasterData) GetRatesByContract(contractID string) ([]domain.RateLine, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rates[contractID], nil
}

func (f *fakeMasterData) GetApplicableFuelRate(contractID, date string) (float64, error) {
	rate, ok := f.fuelRates[contractID]
	if !ok {
		return 0, errors.New("no fuel rate")
	}
	return rate, nil
}

func activeRate(validFrom, validTo string) domain.RateLine {
	return domain.RateLine{
		Origin:      "Mumbai",
		Destination: "Delhi",
		BaseRate:    20,
		Unit:        domain.UnitKg,
		ValidFrom:   validFrom,
		ValidTo:     validTo,
		Status:      domain.RateActive,
	}
}

// newTestValidator pins "today" to 2024-06-15.
func newTestValidator(master MasterData) *Validator {
	v := NewValidator(master)
	v.now = func() time.Time {
		return time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)
	}
	return v
}

func errorTypes(res *domain.DateValidationResult) []domain.DateErrorType {
	types := make([]domain.DateErrorType, 0, len(res.Errors))
	for _, e := range res.Errors {
		types = append(types, e.Type)
	}
	return types
}

func TestValidateDates_Valid(t *testing.T) {
	master := &fakeMasterData{rates: map[string][]domain.RateLine{
		"CTR-1": {activeRate("2024-01-01", "2024-12-31")},
	}}
	v := newTestValidator(master)

	res, err := v.ValidateDates("2024-03-12", "2024-03-10", "CTR-1")
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)
}

func TestValidateDates_InvoicePredatesDocket(t *testing.T) {
	master := &fakeMasterData{rates: map[string][]domain.RateLine{
		"CTR-1": {activeRate("2024-01-01", "2024-12-31")},
	}}
	v := newTestValidator(master)

	res, err := v.ValidateDates("2024-01-10", "2024-01-15", "CTR-1")
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, []domain.DateErrorType{domain.DateErrDateLogic}, errorTypes(res))
}

func TestValidateDates_FutureDates(t *testing.T) {
	master := &fakeMasterData{rates: map[string][]domain.RateLine{
		"CTR-1": {activeRate("2024-01-01", "2024-12-31")},
	}}
	v := newTestValidator(master)

	res, err := v.ValidateDates("2024-09-02", "2024-09-01", "CTR-1")
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Contains(t, errorTypes(res), domain.DateErrInvalidInvoiceDate)
	assert.Contains(t, errorTypes(res), domain.DateErrInvalidDocketDate)
}

func TestValidateDates_ContractExpired(t *testing.T) {
	master := &fakeMasterData{rates: map[string][]domain.RateLine{
		"CTR-1": {activeRate("2023-01-01", "2023-12-31")},
	}}
	v := newTestValidator(master)

	res, err := v.ValidateDates("2024-03-12", "2024-03-10", "CTR-1")
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, []domain.DateErrorType{domain.DateErrContractExpired}, errorTypes(res))
}

func TestValidateDates_InactiveRatesDoNotCover(t *testing.T) {
	expired := activeRate("2024-01-01", "2024-12-31")
	expired.Status = domain.RateExpired
	master := &fakeMasterData{rates: map[string][]domain.RateLine{"CTR-1": {expired}}}
	v := newTestValidator(master)

	res, err := v.ValidateDates("2024-03-12", "2024-03-10", "CTR-1")
	require.NoError(t, err)
	assert.Contains(t, errorTypes(res), domain.DateErrContractExpired)
}

func TestValidateDates_NoRatesOnRecordSkipsContractCheck(t *testing.T) {
	master := &fakeMasterData{rates: map[string][]domain.RateLine{}}
	v := newTestValidator(master)

	res, err := v.ValidateDates("2024-03-12", "2024-03-10", "CTR-unknown")
	require.NoError(t, err)
	assert.True(t, res.Valid)
}

func TestValidateDates_CollectsAllErrors(t *testing.T) {
	master := &fakeMasterData{rates: map[string][]domain.RateLine{
		"CTR-1": {activeRate("2024-01-01", "2024-12-31")},
	}}
	v := newTestValidator(master)

	// Future invoice, future docket, and invoice predating the docket: all
	// three independent checks must fire together.
	res, err := v.ValidateDates("2025-01-01", "2025-02-01", "CTR-1")
	require.NoError(t, err)
	assert.Equal(t, []domain.DateErrorType{
		domain.DateErrInvalidInvoiceDate,
		domain.DateErrInvalidDocketDate,
		domain.DateErrDateLogic,
		domain.DateErrContractExpired,
	}, errorTypes(res))
}

func TestValidateDates_MalformedDates(t *testing.T) {
	master := &fakeMasterData{rates: map[string][]domain.RateLine{}}
	v := newTestValidator(master)

	res, err := v.ValidateDates("12/03/2024", "not-a-date", "CTR-1")
	require.NoError(t, err)
	assert.Equal(t, []domain.DateErrorType{
		domain.DateErrInvalidInvoiceDate,
		domain.DateErrInvalidDocketDate,
	}, errorTypes(res))
}

func TestValidateDates_MasterDataError(t *testing.T) {
	master := &fakeMasterData{err: errors.New("db down")}
	v := newTestValidator(master)

	_, err := v.ValidateDates("2024-03-12", "2024-03-10", "CTR-1")
	assert.Error(t, err)
}

func TestValidityWindow(t *testing.T) {
	master := &fakeMasterData{rates: map[string][]domain.RateLine{
		"CTR-1": {
			activeRate("2024-03-01", "2024-06-30"),
			activeRate("2024-01-01", "2024-04-30"),
		},
	}}
	v := newTestValidator(master)

	from, to, err := v.ValidityWindow("CTR-1")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", from)
	assert.Equal(t, "2024-06-30", to)
}

func TestValidityWindow_NoRates(t *testing.T) {
	v := newTestValidator(&fakeMasterData{rates: map[string][]domain.RateLine{}})

	from, to, err := v.ValidityWindow("CTR-1")
	require.NoError(t, err)
	assert.Empty(t, from)
	assert.Empty(t, to)
}

func TestDaysUntilExpiry(t *testing.T) {
	master := &fakeMasterData{rates: map[string][]domain.RateLine{
		"CTR-1": {activeRate("2024-01-01", "2024-12-31")},
		"CTR-2": {activeRate("2023-01-01", "2024-06-10")},
	}}
	v := newTestValidator(master)

	days, err := v.DaysUntilExpiry("CTR-1")
	require.NoError(t, err)
	assert.Equal(t, 199, days) // 2024-06-15 to 2024-12-31

	days, err = v.DaysUntilExpiry("CTR-2")
	require.NoError(t, err)
	assert.Equal(t, -5, days) // already expired

	_, err = v.DaysUntilExpiry("CTR-none")
	assert.Error(t, err)
}

func TestIsContractValidOn(t *testing.T) {
	master := &fakeMasterData{rates: map[string][]domain.RateLine{
		"CTR-1": {activeRate("2024-01-01", "2024-12-31")},
	}}
	v := newTestValidator(master)

	valid, err := v.IsContractValidOn("CTR-1", "2024-06-15")
	require.NoError(t, err)
	assert.True(t, valid)

	valid, err = v.IsContractValidOn("CTR-1", "2025-01-01")
	require.NoError(t, err)
	assert.False(t, valid)

	_, err = v.IsContractValidOn("CTR-1", "June 15")
	assert.Error(t, err)
}

func TestApplicableFuelRate(t *testing.T) {
	master := &fakeMasterData{fuelRates: map[string]float64{"CTR-1": 96.72}}
	v := newTestValidator(master)

	rate, err := v.ApplicableFuelRate("CTR-1", "2024-06-01")
	require.NoError(t, err)
	assert.Equal(t, 96.72, rate)

	_, err = v.ApplicableFuelRate("CTR-1", "bad-date")
	assert.Error(t, err)
}
