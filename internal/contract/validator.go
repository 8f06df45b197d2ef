package contract

import (
	"fmt"
	"math"
	"time"

	"github.com/freightlens/auditor/internal/domain"
)

// dateLayout is the required input form for all dates crossing this
// package's boundary. Callers must pass YYYY-MM-DD strings; no timezone
// normalization is performed.
const dateLayout = "2006-01-02"

// Validator checks invoice and shipment dates for internal consistency and
// for falling inside an active contract window.
type Validator struct {
	master MasterData
	now    func() time.Time
}

func NewValidator(master MasterData) *Validator {
	return &Validator{master: master, now: time.Now}
}

// ValidateDates runs all four date checks independently and collects every
// failure; it never short-circuits. The returned error covers master-data
// lookup faults only — business failures are data, not errors.
func (v *Validator) ValidateDates(invoiceDate, docketDate, contractID string) (*domain.DateValidationResult, error) {
	var errs []domain.DateValidationError
	today := v.now()

	inv, invErr := time.Parse(dateLayout, invoiceDate)
	if invErr != nil {
		errs = append(errs, domain.DateValidationError{
			Type:    domain.DateErrInvalidInvoiceDate,
			Message: fmt.Sprintf("invoice date %q is not a valid YYYY-MM-DD date", invoiceDate),
		})
	} else if inv.After(today) {
		errs = append(errs, domain.DateValidationError{
			Type:    domain.DateErrInvalidInvoiceDate,
			Message: fmt.Sprintf("invoice date %s is in the future", invoiceDate),
		})
	}

	dkt, dktErr := time.Parse(dateLayout, docketDate)
	if dktErr != nil {
		errs = append(errs, domain.DateValidationError{
			Type:    domain.DateErrInvalidDocketDate,
			Message: fmt.Sprintf("docket date %q is not a valid YYYY-MM-DD date", docketDate),
		})
	} else if dkt.After(today) {
		errs = append(errs, domain.DateValidationError{
			Type:    domain.DateErrInvalidDocketDate,
			Message: fmt.Sprintf("docket date %s is in the future", docketDate),
		})
	}

	if invErr == nil && dktErr == nil && inv.Before(dkt) {
		errs = append(errs, domain.DateValidationError{
			Type: domain.DateErrDateLogic,
			Message: fmt.Sprintf("invoice date %s predates docket date %s: an invoice cannot be raised before the shipment it bills",
				invoiceDate, docketDate),
		})
	}

	rates, err := v.master.GetRatesByContract(contractID)
	if err != nil {
		return nil, fmt.Errorf("lookup contract %s: %w", contractID, err)
	}
	if dktErr == nil && len(rates) > 0 && !coveredByActiveRate(rates, dkt) {
		errs = append(errs, domain.DateValidationError{
			Type: domain.DateErrContractExpired,
			Message: fmt.Sprintf("no active rate on contract %s covers docket date %s",
				contractID, docketDate),
		})
	}

	return &domain.DateValidationResult{Valid: len(errs) == 0, Errors: errs}, nil
}

// coveredByActiveRate reports whether any active rate line's validity
// window contains the date, inclusive on both bounds. Unparseable windows
// are skipped rather than failing the check.
func coveredByActiveRate(rates []domain.RateLine, date time.Time) bool {
	for _, rl := range rates {
		if rl.Status != domain.RateActive {
			continue
		}
		from, errFrom := time.Parse(dateLayout, rl.ValidFrom)
		to, errTo := time.Parse(dateLayout, rl.ValidTo)
		if errFrom != nil || errTo != nil {
			continue
		}
		if !date.Before(from) && !date.After(to) {
			return true
		}
	}
	return false
}

// IsContractValidOn reports whether any active rate line covers the date.
func (v *Validator) IsContractValidOn(contractID, date string) (bool, error) {
	d, err := time.Parse(dateLayout, date)
	if err != nil {
		return false, fmt.Errorf("parse date %q: %w", date, err)
	}
	rates, err := v.master.GetRatesByContract(contractID)
	if err != nil {
		return false, fmt.Errorf("lookup contract %s: %w", contractID, err)
	}
	return coveredByActiveRate(rates, d), nil
}

// ValidityWindow returns the overall [min validFrom, max validTo] across a
// contract's rate lines. Empty strings when the contract has no parseable
// windows on record.
func (v *Validator) ValidityWindow(contractID string) (from, to string, err error) {
	rates, err := v.master.GetRatesByContract(contractID)
	if err != nil {
		return "", "", fmt.Errorf("lookup contract %s: %w", contractID, err)
	}

	var minFrom, maxTo time.Time
	for _, rl := range rates {
		f, errFrom := time.Parse(dateLayout, rl.ValidFrom)
		t, errTo := time.Parse(dateLayout, rl.ValidTo)
		if errFrom != nil || errTo != nil {
			continue
		}
		if minFrom.IsZero() || f.Before(minFrom) {
			minFrom = f
		}
		if maxTo.IsZero() || t.After(maxTo) {
			maxTo = t
		}
	}
	if minFrom.IsZero() {
		return "", "", nil
	}
	return minFrom.Format(dateLayout), maxTo.Format(dateLayout), nil
}

// DaysUntilExpiry returns whole days from today until the contract's
// latest validTo. Negative when already expired; an error when the
// contract has no validity window on record.
func (v *Validator) DaysUntilExpiry(contractID string) (int, error) {
	_, to, err := v.ValidityWindow(contractID)
	if err != nil {
		return 0, err
	}
	if to == "" {
		return 0, fmt.Errorf("contract %s has no validity window on record", contractID)
	}

	expiry, err := time.Parse(dateLayout, to)
	if err != nil {
		return 0, fmt.Errorf("parse expiry %q: %w", to, err)
	}
	today := v.now().Truncate(24 * time.Hour)
	return int(math.Floor(expiry.Sub(today).Hours() / 24)), nil
}

// ApplicableFuelRate returns the fuel rate in force for the contract on a
// date. The lookup itself lives in master data.
func (v *Validator) ApplicableFuelRate(contractID, date string) (float64, error) {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return 0, fmt.Errorf("parse date %q: %w", date, err)
	}
	return v.master.GetApplicableFuelRate(contractID, date)
}
