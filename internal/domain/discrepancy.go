package domain

type DiscrepancyType string

const (
	DiscrepancyRateMismatch   DiscrepancyType = "rate_mismatch"
	DiscrepancyFuelSurcharge  DiscrepancyType = "fuel_surcharge"
	DiscrepancyGSTCalculation DiscrepancyType = "gst_calculation"
	DiscrepancyPODPending     DiscrepancyType = "pod_pending"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

type Recommendation string

const (
	RecommendApprove Recommendation = "approve"
	RecommendReview  Recommendation = "review"
	RecommendReject  Recommendation = "reject"
)

// Discrepancy is one audit finding. Expected and Actual are formatted
// strings because findings mix rates, percentages and document states.
// Impact is the signed currency delta the finding contributes to the
// total variance; 0 when not quantifiable (e.g. a missing POD).
type Discrepancy struct {
	Type        DiscrepancyType `json:"type"`
	Severity    Severity        `json:"severity"`
	Description string          `json:"description"`
	Expected    string          `json:"expected"`
	Actual      string          `json:"actual"`
	Impact      float64         `json:"impact"`
}

// MatchingResult is the audit engine's output. Constructed fresh per
// invocation; Variance always equals ActualAmount - ExpectedAmount and
// Recommendation is derived purely from Discrepancies and VariancePercent.
type MatchingResult struct {
	Matched         bool           `json:"matched"`
	Discrepancies   []Discrepancy  `json:"discrepancies"`
	ExpectedAmount  float64        `json:"expected_amount"`
	ActualAmount    float64        `json:"actual_amount"`
	Variance        float64        `json:"variance"`
	VariancePercent float64        `json:"variance_percent"`
	Recommendation  Recommendation `json:"recommendation"`
}
