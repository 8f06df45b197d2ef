package audit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/freightlens/auditor/internal/domain"
)

func TestFormatMatchingReport_Clean(t *testing.T) {
	inv := cleanInvoice()
	res := MatchInvoice(&inv, cleanRateCard(), DefaultPolicy())

	report := FormatMatchingReport(res)

	assert.Contains(t, report, "Status:          MATCHED")
	assert.Contains(t, report, "Expected Amount: ₹13570.00")
	assert.Contains(t, report, "Billed Amount:   ₹13570.00")
	assert.Contains(t, report, "Recommendation:  APPROVE")
	assert.NotContains(t, report, "Discrepancies")
}

func TestFormatMatchingReport_WithDiscrepancies(t *testing.T) {
	inv := cleanInvoice()
	inv.LineItems[0].Rate = 22
	inv.LineItems[0].Amount = 11000
	inv.PODStatus = domain.PODPending

	res := MatchInvoice(&inv, cleanRateCard(), DefaultPolicy())
	report := FormatMatchingReport(res)

	assert.Contains(t, report, "Status:          DISCREPANCIES FOUND")
	assert.Contains(t, report, "Recommendation:  REJECT")
	assert.Contains(t, report, "Discrepancies (2):")
	assert.Contains(t, report, "1. [HIGH] Rate mismatch for Mumbai -> Delhi")
	assert.Contains(t, report, "Impact:   ₹1000.00")
	assert.Contains(t, report, "2. [HIGH] Proof of delivery not uploaded")

	// Rate mismatch block renders the contracted vs billed rate.
	assert.Contains(t, report, "Expected: ₹20.00/kg")
	assert.Contains(t, report, "Actual:   ₹22.00/kg")

	// Deterministic: same result renders the same report.
	assert.Equal(t, report, FormatMatchingReport(res))
	assert.True(t, strings.HasPrefix(report, "=== INVOICE AUDIT REPORT ==="))
}
