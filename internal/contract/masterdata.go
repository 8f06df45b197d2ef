package contract

import "github.com/freightlens/auditor/internal/domain"

// MasterData is the read-only contract reference lookup the validator
// depends on. The repository layer implements it; tests use in-memory
// fakes. Any caching belongs behind this interface, never in the validator.
type MasterData interface {
	GetRatesByContract(contractID string) ([]domain.RateLine, error)
	GetApplicableFuelRate(contractID, date string) (float64, error)
}
