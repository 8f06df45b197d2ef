package domain

import "time"

type PODStatus string

const (
	PODPending  PODStatus = "pending"
	PODUploaded PODStatus = "uploaded"
	PODVerified PODStatus = "verified"
)

type InvoiceStatus string

const (
	InvoiceSubmitted   InvoiceStatus = "submitted"
	InvoiceUnderReview InvoiceStatus = "under_review"
	InvoiceApproved    InvoiceStatus = "approved"
	InvoiceRejected    InvoiceStatus = "rejected"
	InvoicePaid        InvoiceStatus = "paid"
)

// InvoiceLineItem is one billed leg. Amount is taken at face value from the
// invoice: the engine compares it as "what was billed", never re-derives it.
type InvoiceLineItem struct {
	Description string  `json:"description"`
	Origin      string  `json:"origin"`
	Destination string  `json:"destination"`
	Weight      float64 `json:"weight"`
	Unit        Unit    `json:"unit"`
	Rate        float64 `json:"rate"`
	Amount      float64 `json:"amount"`
}

// SupplierInvoice is the whole billed document as submitted. The audit
// engine is read-only over it; only workflow transitions mutate Status.
type SupplierInvoice struct {
	ID                   string            `json:"id"`
	InvoiceNumber        string            `json:"invoice_number"`
	SupplierID           string            `json:"supplier_id"`
	ContractID           string            `json:"contract_id"`
	InvoiceDate          string            `json:"invoice_date"`
	DocketDate           string            `json:"docket_date"`
	LineItems            []InvoiceLineItem `json:"line_items"`
	Subtotal             float64           `json:"subtotal"`
	FuelSurcharge        float64           `json:"fuel_surcharge"`
	FuelSurchargePercent float64           `json:"fuel_surcharge_percent"`
	GST                  float64           `json:"gst"`
	GSTPercent           float64           `json:"gst_percent"`
	TotalAmount          float64           `json:"total_amount"`
	PODStatus            PODStatus         `json:"pod_status"`
	Status               InvoiceStatus     `json:"status"`
	CreatedAt            time.Time         `json:"created_at"`
}
