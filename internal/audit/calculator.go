package audit

import "github.com/freightlens/auditor/internal/domain"

// ExpectedCharges is the contracted cost breakdown for a set of line items.
type ExpectedCharges struct {
	Subtotal      float64 `json:"subtotal"`
	FuelSurcharge float64 `json:"fuel_surcharge"`
	GST           float64 `json:"gst"`
	Total         float64 `json:"total"`
}

// CalculateExpectedAmount derives what a set of legs should cost under the
// contract: weight × contracted rate per resolvable leg, then policy fuel
// surcharge and GST on top. Legs with no resolvable rate contribute zero —
// silently, unlike MatchInvoice which flags them. Used for "what should
// this invoice cost" previews independent of any submitted invoice.
func CalculateExpectedAmount(items []domain.InvoiceLineItem, rateCard []domain.RateLine, pol Policy) ExpectedCharges {
	var subtotal float64
	for _, item := range items {
		if rl := FindContractRate(rateCard, item.Origin, item.Destination, item.Weight); rl != nil {
			subtotal += item.Weight * rl.BaseRate
		}
	}

	fuel := subtotal * pol.FuelSurchargePercent / 100
	gst := (subtotal + fuel) * pol.GSTPercent / 100

	return ExpectedCharges{
		Subtotal:      subtotal,
		FuelSurcharge: fuel,
		GST:           gst,
		Total:         subtotal + fuel + gst,
	}
}
