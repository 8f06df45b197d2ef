package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/freightlens/auditor/internal/audit"
	"github.com/freightlens/auditor/internal/contract"
	"github.com/freightlens/auditor/internal/ingestion"
	"github.com/freightlens/auditor/internal/repository"
)

// NewRouter creates the Chi router with all API routes mounted.
func NewRouter(
	supplierRepo *repository.SupplierRepo,
	invoiceRepo *repository.InvoiceRepo,
	auditRepo *repository.AuditRepo,
	validator *contract.Validator,
	ingestionSvc *ingestion.Service,
	policy audit.Policy,
) http.Handler {
	h := &Handlers{
		supplierRepo: supplierRepo,
		invoiceRepo:  invoiceRepo,
		auditRepo:    auditRepo,
		validator:    validator,
		ingestionSvc: ingestionSvc,
		policy:       policy,
	}

	r := chi.NewRouter()

	// Middleware.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.SetHeader("Content-Type", "application/json"))

	r.Route("/api/v1", func(r chi.Router) {
		// Rate cards.
		r.Post("/ratecards/ingest", h.IngestRateCard)
		r.Get("/suppliers", h.ListSuppliers)
		r.Get("/suppliers/{id}/ratecard", h.GetSupplierRateCard)

		// Invoices.
		r.Post("/invoices", h.SubmitInvoice)
		r.Get("/invoices", h.ListInvoices)
		r.Get("/invoices/{id}", h.GetInvoice)
		r.Post("/invoices/{id}/audit", h.AuditInvoice)
		r.Get("/invoices/{id}/report", h.GetInvoiceReport)
		r.Post("/invoices/{id}/status", h.UpdateInvoiceStatus)

		// Ad-hoc engine surfaces.
		r.Post("/audit/preview", h.PreviewAudit)
		r.Post("/estimate", h.Estimate)

		// Contracts.
		r.Get("/contracts/{id}/validate-dates", h.ValidateContractDates)
		r.Get("/contracts/{id}/validity", h.GetContractValidity)

		// Dashboard.
		r.Get("/dashboard", h.GetDashboard)
	})

	return r
}
