package audit

import (
	"fmt"
	"math"

	"github.com/freightlens/auditor/internal/domain"
	"github.com/freightlens/auditor/internal/money"
)

// MatchInvoice reconciles a submitted invoice against the supplier's rate
// card. Pure function of its inputs: identical calls return identical
// results, so it is safe to run per-request with no locking or caching.
//
// Every anomaly becomes a Discrepancy, never an error — reconciliation
// failures are expected and must be reportable to a human. Findings are
// emitted in a stable order (rate mismatches in line-item order, then fuel
// surcharge, then GST, then POD) so reports are reproducible.
func MatchInvoice(inv *domain.SupplierInvoice, rateCard []domain.RateLine, pol Policy) *domain.MatchingResult {
	var discs []domain.Discrepancy
	var expectedSubtotal float64

	for _, item := range inv.LineItems {
		rl := FindContractRate(rateCard, item.Origin, item.Destination, item.Weight)
		if rl == nil {
			// The whole line is unexplained by the contract.
			discs = append(discs, domain.Discrepancy{
				Type:     domain.DiscrepancyRateMismatch,
				Severity: domain.SeverityHigh,
				Description: fmt.Sprintf("No contracted rate for %s -> %s (%.0f %s)",
					item.Origin, item.Destination, item.Weight, item.Unit),
				Expected: "no rate on contract",
				Actual:   money.FormatRate(item.Rate, string(item.Unit)),
				Impact:   item.Amount,
			})
			continue
		}

		contracted := item.Weight * rl.BaseRate
		if math.Abs(item.Rate-rl.BaseRate) > pol.RateTolerance {
			discs = append(discs, domain.Discrepancy{
				Type:     domain.DiscrepancyRateMismatch,
				Severity: domain.SeverityHigh,
				Description: fmt.Sprintf("Rate mismatch for %s -> %s: contracted %s, billed %s",
					item.Origin, item.Destination,
					money.FormatRate(rl.BaseRate, string(rl.Unit)),
					money.FormatRate(item.Rate, string(item.Unit))),
				Expected: money.FormatRate(rl.BaseRate, string(rl.Unit)),
				Actual:   money.FormatRate(item.Rate, string(item.Unit)),
				Impact:   item.Amount - contracted,
			})
		}
		// The contract wins over the invoice: the expected subtotal always
		// accumulates the contracted amount, mismatch or not.
		expectedSubtotal += contracted
	}

	expectedFuel := expectedSubtotal * pol.FuelSurchargePercent / 100
	if math.Abs(inv.FuelSurcharge-expectedFuel) > pol.ChargeTolerance {
		discs = append(discs, domain.Discrepancy{
			Type:     domain.DiscrepancyFuelSurcharge,
			Severity: domain.SeverityMedium,
			Description: fmt.Sprintf("Fuel surcharge billed %s, expected %s (%.0f%% of subtotal)",
				money.FormatINR(inv.FuelSurcharge), money.FormatINR(expectedFuel), pol.FuelSurchargePercent),
			Expected: money.FormatINR(expectedFuel),
			Actual:   money.FormatINR(inv.FuelSurcharge),
			Impact:   inv.FuelSurcharge - expectedFuel,
		})
	}

	expectedGST := (expectedSubtotal + expectedFuel) * pol.GSTPercent / 100
	if math.Abs(inv.GST-expectedGST) > pol.ChargeTolerance {
		discs = append(discs, domain.Discrepancy{
			Type:     domain.DiscrepancyGSTCalculation,
			Severity: domain.SeverityMedium,
			Description: fmt.Sprintf("GST billed %s, expected %s (%.0f%% of subtotal + fuel)",
				money.FormatINR(inv.GST), money.FormatINR(expectedGST), pol.GSTPercent),
			Expected: money.FormatINR(expectedGST),
			Actual:   money.FormatINR(inv.GST),
			Impact:   inv.GST - expectedGST,
		})
	}

	if inv.PODStatus == domain.PODPending {
		discs = append(discs, domain.Discrepancy{
			Type:        domain.DiscrepancyPODPending,
			Severity:    domain.SeverityHigh,
			Description: "Proof of delivery not uploaded; payment is blocked until POD is received",
			Expected:    string(domain.PODUploaded),
			Actual:      string(domain.PODPending),
			Impact:      0,
		})
	}

	expectedAmount := expectedSubtotal + expectedFuel + expectedGST
	variance := inv.TotalAmount - expectedAmount

	// A zero expected amount means no line resolved at all; each such line
	// already carries a high-severity rate mismatch, so 0% is safe here.
	var variancePct float64
	if expectedAmount != 0 {
		variancePct = variance / expectedAmount * 100
	}

	return &domain.MatchingResult{
		Matched:         len(discs) == 0,
		Discrepancies:   discs,
		ExpectedAmount:  expectedAmount,
		ActualAmount:    inv.TotalAmount,
		Variance:        variance,
		VariancePercent: variancePct,
		Recommendation:  recommend(discs, variancePct, pol),
	}
}

// recommend applies the severity-dominance rule: any high or critical
// finding rejects outright; any finding at all, or a variance beyond the
// review threshold, routes to a human; otherwise approve.
func recommend(discs []domain.Discrepancy, variancePct float64, pol Policy) domain.Recommendation {
	for _, d := range discs {
		if d.Severity == domain.SeverityHigh || d.Severity == domain.SeverityCritical {
			return domain.RecommendReject
		}
	}
	if len(discs) > 0 || math.Abs(variancePct) > pol.ReviewVariancePercent {
		return domain.RecommendReview
	}
	return domain.RecommendApprove
}
