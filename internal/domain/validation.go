package domain

type DateErrorType string

const (
	DateErrContractExpired    DateErrorType = "contract_expired"
	DateErrInvalidInvoiceDate DateErrorType = "invalid_invoice_date"
	DateErrInvalidDocketDate  DateErrorType = "invalid_docket_date"
	DateErrDateLogic          DateErrorType = "date_logic_error"
)

type DateValidationError struct {
	Type    DateErrorType `json:"type"`
	Message string        `json:"message"`
}

// DateValidationResult collects every date/contract check failure for one
// (invoice date, docket date, contract) triple. Checks never short-circuit.
type DateValidationResult struct {
	Valid  bool                  `json:"valid"`
	Errors []DateValidationError `json:"errors"`
}
