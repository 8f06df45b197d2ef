package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freightlens/auditor/internal/domain"
)

// cleanInvoice is the baseline scenario: one leg of 500 kg at the
// contracted ₹20/kg, charges computed exactly at 15%/18%, POD verified.
func cleanInvoice() domain.SupplierInvoice {
	return domain.SupplierInvoice{
		InvoiceNumber: "INV-2024-0001",
		SupplierID:    "SUP-001",
		ContractID:    "CTR-2024-001",
		InvoiceDate:   "2024-03-12",
		DocketDate:    "2024-03-10",
		LineItems: []domain.InvoiceLineItem{{
			Description: "Mumbai to Delhi FTL",
			Origin:      "Mumbai",
			Destination: "Delhi",
			Weight:      500,
			Unit:        domain.UnitKg,
			Rate:        20,
			Amount:      10000,
		}},
		Subtotal:             10000,
		FuelSurcharge:        1500,
		FuelSurchargePercent: 15,
		GST:                  2070,
		GSTPercent:           18,
		TotalAmount:          13570,
		PODStatus:            domain.PODVerified,
		Status:               domain.InvoiceSubmitted,
	}
}

func cleanRateCard() []domain.RateLine {
	return []domain.RateLine{rateLine("Mumbai", "Delhi", 20, "")}
}

func TestMatchInvoice_CleanInvoiceApproves(t *testing.T) {
	inv := cleanInvoice()
	res := MatchInvoice(&inv, cleanRateCard(), DefaultPolicy())

	assert.True(t, res.Matched)
	assert.Empty(t, res.Discrepancies)
	assert.InDelta(t, 13570, res.ExpectedAmount, 0.001)
	assert.InDelta(t, 13570, res.ActualAmount, 0.001)
	assert.InDelta(t, 0, res.Variance, 0.001)
	assert.InDelta(t, 0, res.VariancePercent, 0.001)
	assert.Equal(t, domain.RecommendApprove, res.Recommendation)
}

func TestMatchInvoice_RateMismatchRejects(t *testing.T) {
	inv := cleanInvoice()
	inv.LineItems[0].Rate = 22
	inv.LineItems[0].Amount = 11000

	res := MatchInvoice(&inv, cleanRateCard(), DefaultPolicy())

	assert.False(t, res.Matched)
	require.Len(t, res.Discrepancies, 1)

	d := res.Discrepancies[0]
	assert.Equal(t, domain.DiscrepancyRateMismatch, d.Type)
	assert.Equal(t, domain.SeverityHigh, d.Severity)
	assert.InDelta(t, 1000, d.Impact, 0.001)

	// The contract still drives the expected amount.
	assert.InDelta(t, 13570, res.ExpectedAmount, 0.001)
	assert.Equal(t, domain.RecommendReject, res.Recommendation)
}

func TestMatchInvoice_RateWithinToleranceIsClean(t *testing.T) {
	inv := cleanInvoice()
	inv.LineItems[0].Rate = 20.005 // inside the ₹0.01 tolerance

	res := MatchInvoice(&inv, cleanRateCard(), DefaultPolicy())
	assert.True(t, res.Matched)
}

func TestMatchInvoice_NoRateFullLineImpact(t *testing.T) {
	inv := cleanInvoice()

	res := MatchInvoice(&inv, []domain.RateLine{rateLine("Chennai", "Kolkata", 20, "")}, DefaultPolicy())

	require.NotEmpty(t, res.Discrepancies)
	d := res.Discrepancies[0]
	assert.Equal(t, domain.DiscrepancyRateMismatch, d.Type)
	assert.Equal(t, domain.SeverityHigh, d.Severity)
	assert.InDelta(t, 10000, d.Impact, 0.001) // the whole line is unexplained

	// Nothing resolved: expected amount is zero and the percentage guard holds.
	assert.InDelta(t, 0, res.ExpectedAmount, 0.001)
	assert.InDelta(t, 0, res.VariancePercent, 0.001)
	assert.Equal(t, domain.RecommendReject, res.Recommendation)
}

func TestMatchInvoice_FuelSurchargeDiscrepancyReviews(t *testing.T) {
	inv := cleanInvoice()
	inv.FuelSurcharge = 1700 // ₹200 over the 15% policy
	inv.TotalAmount = 13770

	res := MatchInvoice(&inv, cleanRateCard(), DefaultPolicy())

	require.Len(t, res.Discrepancies, 1)
	d := res.Discrepancies[0]
	assert.Equal(t, domain.DiscrepancyFuelSurcharge, d.Type)
	assert.Equal(t, domain.SeverityMedium, d.Severity)
	assert.InDelta(t, 200, d.Impact, 0.001)
	assert.Equal(t, domain.RecommendReview, res.Recommendation)
}

func TestMatchInvoice_FuelSurchargeWithinToleranceIsClean(t *testing.T) {
	inv := cleanInvoice()
	inv.FuelSurcharge = 1508 // within the ₹10 tolerance
	inv.TotalAmount = 13578

	res := MatchInvoice(&inv, cleanRateCard(), DefaultPolicy())
	assert.Empty(t, res.Discrepancies)
}

func TestMatchInvoice_GSTDiscrepancy(t *testing.T) {
	inv := cleanInvoice()
	inv.GST = 2300
	inv.TotalAmount = 13800

	res := MatchInvoice(&inv, cleanRateCard(), DefaultPolicy())

	require.Len(t, res.Discrepancies, 1)
	d := res.Discrepancies[0]
	assert.Equal(t, domain.DiscrepancyGSTCalculation, d.Type)
	assert.Equal(t, domain.SeverityMedium, d.Severity)
	assert.InDelta(t, 230, d.Impact, 0.001)
	assert.Equal(t, domain.RecommendReview, res.Recommendation)
}

func TestMatchInvoice_PODPendingRejects(t *testing.T) {
	inv := cleanInvoice()
	inv.PODStatus = domain.PODPending

	res := MatchInvoice(&inv, cleanRateCard(), DefaultPolicy())

	require.Len(t, res.Discrepancies, 1)
	d := res.Discrepancies[0]
	assert.Equal(t, domain.DiscrepancyPODPending, d.Type)
	assert.Equal(t, domain.SeverityHigh, d.Severity)
	assert.Zero(t, d.Impact) // blocks payment, no monetary adjustment
	assert.Equal(t, domain.RecommendReject, res.Recommendation)
}

func TestMatchInvoice_VarianceAloneTriggersReview(t *testing.T) {
	inv := cleanInvoice()
	inv.TotalAmount = 14000 // ~3.2% over, no individual charge out of tolerance

	res := MatchInvoice(&inv, cleanRateCard(), DefaultPolicy())

	assert.True(t, res.Matched) // matched tracks discrepancies, not variance
	assert.Empty(t, res.Discrepancies)
	assert.InDelta(t, 430, res.Variance, 0.001)
	assert.Greater(t, res.VariancePercent, 2.0)
	assert.Equal(t, domain.RecommendReview, res.Recommendation)
}

func TestMatchInvoice_DiscrepancyOrderIsStable(t *testing.T) {
	inv := cleanInvoice()
	inv.LineItems[0].Rate = 22
	inv.LineItems[0].Amount = 11000
	inv.FuelSurcharge = 1700
	inv.GST = 2300
	inv.PODStatus = domain.PODPending

	res := MatchInvoice(&inv, cleanRateCard(), DefaultPolicy())

	require.Len(t, res.Discrepancies, 4)
	assert.Equal(t, domain.DiscrepancyRateMismatch, res.Discrepancies[0].Type)
	assert.Equal(t, domain.DiscrepancyFuelSurcharge, res.Discrepancies[1].Type)
	assert.Equal(t, domain.DiscrepancyGSTCalculation, res.Discrepancies[2].Type)
	assert.Equal(t, domain.DiscrepancyPODPending, res.Discrepancies[3].Type)
}

func TestMatchInvoice_VarianceInvariant(t *testing.T) {
	inv := cleanInvoice()
	inv.LineItems[0].Rate = 22
	inv.LineItems[0].Amount = 11000
	inv.TotalAmount = 14700

	res := MatchInvoice(&inv, cleanRateCard(), DefaultPolicy())

	assert.InDelta(t, res.ActualAmount-res.ExpectedAmount, res.Variance, 1e-9)
	assert.InDelta(t, res.Variance/res.ExpectedAmount*100, res.VariancePercent, 1e-9)
}

func TestMatchInvoice_Deterministic(t *testing.T) {
	inv := cleanInvoice()
	inv.LineItems[0].Rate = 22
	inv.LineItems[0].Amount = 11000
	inv.PODStatus = domain.PODPending
	card := cleanRateCard()

	first := MatchInvoice(&inv, card, DefaultPolicy())
	second := MatchInvoice(&inv, card, DefaultPolicy())

	assert.Equal(t, first, second)
}

func TestMatchInvoice_MultipleLineItems(t *testing.T) {
	inv := cleanInvoice()
	inv.LineItems = append(inv.LineItems, domain.InvoiceLineItem{
		Description: "Delhi to Kolkata FTL",
		Origin:      "Delhi",
		Destination: "Kolkata",
		Weight:      200,
		Unit:        domain.UnitKg,
		Rate:        25,
		Amount:      5000,
	})
	// Expected subtotal 10000 + 200×22 = 14400; fuel 2160; gst 2980.80.
	inv.Subtotal = 15000
	inv.FuelSurcharge = 2160
	inv.GST = 2980.80
	inv.TotalAmount = 19540.80

	card := append(cleanRateCard(), rateLine("Delhi", "Kolkata", 22, ""))
	res := MatchInvoice(&inv, card, DefaultPolicy())

	require.Len(t, res.Discrepancies, 1)
	assert.Equal(t, domain.DiscrepancyRateMismatch, res.Discrepancies[0].Type)
	assert.InDelta(t, 5000-4400, res.Discrepancies[0].Impact, 0.001)
	assert.InDelta(t, 19540.80, res.ExpectedAmount, 0.01)
}
