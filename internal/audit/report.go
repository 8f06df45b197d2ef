package audit

import (
	"fmt"
	"strings"

	"github.com/freightlens/auditor/internal/domain"
	"github.com/freightlens/auditor/internal/money"
)

// FormatMatchingReport renders a matching result as a fixed-format plain
// text summary. Presentation only — nothing parses this back.
func FormatMatchingReport(res *domain.MatchingResult) string {
	var b strings.Builder

	status := "MATCHED"
	if !res.Matched {
		status = "DISCREPANCIES FOUND"
	}

	b.WriteString("=== INVOICE AUDIT REPORT ===\n")
	fmt.Fprintf(&b, "Status:          %s\n", status)
	fmt.Fprintf(&b, "Expected Amount: %s\n", money.FormatINR(res.ExpectedAmount))
	fmt.Fprintf(&b, "Billed Amount:   %s\n", money.FormatINR(res.ActualAmount))
	fmt.Fprintf(&b, "Variance:        %s (%.2f%%)\n", money.FormatINR(res.Variance), res.VariancePercent)
	fmt.Fprintf(&b, "Recommendation:  %s\n", strings.ToUpper(string(res.Recommendation)))

	if len(res.Discrepancies) > 0 {
		fmt.Fprintf(&b, "\nDiscrepancies (%d):\n", len(res.Discrepancies))
		for i, d := range res.Discrepancies {
			fmt.Fprintf(&b, "\n%d. [%s] %s\n", i+1, strings.ToUpper(string(d.Severity)), d.Description)
			fmt.Fprintf(&b, "   Expected: %s\n", d.Expected)
			fmt.Fprintf(&b, "   Actual:   %s\n", d.Actual)
			fmt.Fprintf(&b, "   Impact:   %s\n", money.FormatINR(d.Impact))
		}
	}

	return b.String()
}
