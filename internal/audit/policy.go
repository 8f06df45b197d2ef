package audit

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Policy holds the audit thresholds. The defaults reproduce the original
// dashboard behaviour: a flat 15% fuel surcharge and 18% GST applied on the
// contracted subtotal regardless of each rate line's own percentages. Keep
// them unless the contract terms say otherwise; a deployment that wants
// per-rate percentages expresses that here rather than in code.
type Policy struct {
	FuelSurchargePercent  float64 `yaml:"fuel_surcharge_percent"`
	GSTPercent            float64 `yaml:"gst_percent"`
	RateTolerance         float64 `yaml:"rate_tolerance"`
	ChargeTolerance       float64 `yaml:"charge_tolerance"`
	ReviewVariancePercent float64 `yaml:"review_variance_percent"`
}

// DefaultPolicy returns the standard audit thresholds: 15% fuel, 18% GST,
// ₹0.01 rate tolerance, ₹10 charge tolerance, 2% variance review threshold.
func DefaultPolicy() Policy {
	return Policy{
		FuelSurchargePercent:  15,
		GSTPercent:            18,
		RateTolerance:         0.01,
		ChargeTolerance:       10,
		ReviewVariancePercent: 2,
	}
}

// LoadPolicy reads a YAML policy file over the defaults. Fields absent from
// the file keep their default values.
func LoadPolicy(path string) (Policy, error) {
	pol := DefaultPolicy()

	data, err := os.ReadFile(path)
	if err != nil {
		return pol, fmt.Errorf("read policy: %w", err)
	}
	if err := yaml.Unmarshal(data, &pol); err != nil {
		return pol, fmt.Errorf("parse policy: %w", err)
	}
	return pol, nil
}
