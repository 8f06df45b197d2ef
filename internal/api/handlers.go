package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/freightlens/auditor/internal/audit"
	"github.com/freightlens/auditor/internal/contract"
	"github.com/freightlens/auditor/internal/domain"
	"github.com/freightlens/auditor/internal/ingestion"
	"github.com/freightlens/auditor/internal/repository"
)

// Handlers groups all HTTP handler methods and their dependencies.
type Handlers struct {
	supplierRepo *repository.SupplierRepo
	invoiceRepo  *repository.InvoiceRepo
	auditRepo    *repository.AuditRepo
	validator    *contract.Validator
	ingestionSvc *ingestion.Service
	policy       audit.Policy
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[api] encode error: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return def
	}
	return v
}

// --- IngestRateCard ---

func (h *Handlers) IngestRateCard(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	supplierID := r.FormValue("supplier_id")
	if supplierID == "" {
		writeError(w, http.StatusBadRequest, "supplier_id is required")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required: "+err.Error())
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "read file: "+err.Error())
		return
	}

	result, err := h.ingestionSvc.IngestRateCard(data, supplierID)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// --- Suppliers ---

func (h *Handlers) ListSuppliers(w http.ResponseWriter, r *http.Request) {
	suppliers, err := h.supplierRepo.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"suppliers": suppliers})
}

func (h *Handlers) GetSupplierRateCard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rateCard, err := h.supplierRepo.GetRateCard(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"supplier_id": id, "rate_card": rateCard})
}

// --- SubmitInvoice ---

func (h *Handlers) SubmitInvoice(w http.ResponseWriter, r *http.Request) {
	var inv domain.SupplierInvoice
	if err := json.NewDecoder(r.Body).Decode(&inv); err != nil {
		writeError(w, http.StatusBadRequest, "invalid invoice payload: "+err.Error())
		return
	}
	if inv.SupplierID == "" || inv.InvoiceNumber == "" || len(inv.LineItems) == 0 {
		writeError(w, http.StatusBadRequest, "supplier_id, invoice_number and line_items are required")
		return
	}

	supplier, err := h.supplierRepo.GetByID(inv.SupplierID)
	if err != nil {
		writeError(w, http.StatusNotFound, "supplier not found")
		return
	}

	inv.ID = uuid.NewString()
	inv.ContractID = supplier.ContractID
	inv.Status = domain.InvoiceSubmitted
	inv.CreatedAt = time.Now()
	if inv.PODStatus == "" {
		inv.PODStatus = domain.PODPending
	}

	if err := h.invoiceRepo.Insert(&inv); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	run, err := h.runAudit(&inv, supplier.RateCard)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"invoice": inv, "audit": run})
}

// runAudit matches an invoice against a rate card and persists the run.
func (h *Handlers) runAudit(inv *domain.SupplierInvoice, rateCard []domain.RateLine) (*repository.AuditRun, error) {
	result := audit.MatchInvoice(inv, rateCard, h.policy)
	run := &repository.AuditRun{
		ID:        uuid.NewString(),
		InvoiceID: inv.ID,
		Result:    *result,
		CreatedAt: time.Now(),
	}
	if err := h.auditRepo.Insert(run); err != nil {
		return nil, err
	}
	log.Printf("[api] Audited invoice %s: matched=%t discrepancies=%d recommendation=%s",
		inv.InvoiceNumber, result.Matched, len(result.Discrepancies), result.Recommendation)
	return run, nil
}

// --- Invoices ---

func (h *Handlers) ListInvoices(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.InvoiceFilter{
		SupplierID: q.Get("supplier_id"),
		Status:     q.Get("status"),
		PODStatus:  q.Get("pod_status"),
		From:       q.Get("from"),
		To:         q.Get("to"),
		Page:       parseIntDefault(q.Get("page"), 1),
		Limit:      parseIntDefault(q.Get("limit"), 50),
	}

	invoices, total, err := h.invoiceRepo.List(filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"invoices": invoices,
		"total":    total,
		"page":     filter.Page,
		"limit":    filter.Limit,
	})
}

func (h *Handlers) GetInvoice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	inv, err := h.invoiceRepo.GetByID(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "invoice not found")
		return
	}

	runs, err := h.auditRepo.GetByInvoiceID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"invoice": inv, "audits": runs})
}

// --- AuditInvoice ---

func (h *Handlers) AuditInvoice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	inv, err := h.invoiceRepo.GetByID(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "invoice not found")
		return
	}

	rateCard, err := h.supplierRepo.GetRateCard(inv.SupplierID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	run, err := h.runAudit(inv, rateCard)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, run)
}

// --- GetInvoiceReport ---

func (h *Handlers) GetInvoiceReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	inv, err := h.invoiceRepo.GetByID(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "invoice not found")
		return
	}

	rateCard, err := h.supplierRepo.GetRateCard(inv.SupplierID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	result := audit.MatchInvoice(inv, rateCard, h.policy)
	report := audit.FormatMatchingReport(result)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(report)); err != nil {
		log.Printf("[api] write report: %v", err)
	}
}

// --- UpdateInvoiceStatus ---

var statusTransitions = map[domain.InvoiceStatus]bool{
	domain.InvoiceUnderReview: true,
	domain.InvoiceApproved:    true,
	domain.InvoiceRejected:    true,
	domain.InvoicePaid:        true,
}

func (h *Handlers) UpdateInvoiceStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		Status domain.InvoiceStatus `json:"status"`
		Force  bool                 `json:"force"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload: "+err.Error())
		return
	}
	if !statusTransitions[req.Status] {
		writeError(w, http.StatusBadRequest, "unsupported status: "+string(req.Status))
		return
	}

	// A reject-recommended invoice requires an explicit override to approve.
	if req.Status == domain.InvoiceApproved && !req.Force {
		latest, err := h.auditRepo.LatestByInvoiceID(id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if latest != nil && latest.Result.Recommendation == domain.RecommendReject {
			writeError(w, http.StatusConflict,
				"latest audit recommends reject; pass force=true to approve anyway")
			return
		}
	}

	if err := h.invoiceRepo.UpdateStatus(id, req.Status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "invoice not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": string(req.Status)})
}

// --- PreviewAudit ---

// PreviewAudit runs the engine on an inline invoice + rate card without
// persisting anything. The ad-hoc surface for callers holding their own data.
func (h *Handlers) PreviewAudit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Invoice  domain.SupplierInvoice `json:"invoice"`
		RateCard []domain.RateLine      `json:"rate_card"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload: "+err.Error())
		return
	}

	result := audit.MatchInvoice(&req.Invoice, req.RateCard, h.policy)
	writeJSON(w, http.StatusOK, result)
}

// --- Estimate ---

func (h *Handlers) Estimate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SupplierID string                   `json:"supplier_id"`
		RateCard   []domain.RateLine        `json:"rate_card"`
		LineItems  []domain.InvoiceLineItem `json:"line_items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload: "+err.Error())
		return
	}
	if len(req.LineItems) == 0 {
		writeError(w, http.StatusBadRequest, "line_items are required")
		return
	}

	rateCard := req.RateCard
	if len(rateCard) == 0 && req.SupplierID != "" {
		var err error
		rateCard, err = h.supplierRepo.GetRateCard(req.SupplierID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	charges := audit.CalculateExpectedAmount(req.LineItems, rateCard, h.policy)
	writeJSON(w, http.StatusOK, charges)
}

// --- Contracts ---

func (h *Handlers) ValidateContractDates(w http.ResponseWriter, r *http.Request) {
	contractID := chi.URLParam(r, "id")
	q := r.URL.Query()
	invoiceDate := q.Get("invoice_date")
	docketDate := q.Get("docket_date")
	if invoiceDate == "" || docketDate == "" {
		writeError(w, http.StatusBadRequest, "invoice_date and docket_date are required")
		return
	}

	result, err := h.validator.ValidateDates(invoiceDate, docketDate, contractID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) GetContractValidity(w http.ResponseWriter, r *http.Request) {
	contractID := chi.URLParam(r, "id")

	from, to, err := h.validator.ValidityWindow(contractID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if from == "" {
		writeError(w, http.StatusNotFound, "contract has no rate lines on record")
		return
	}

	days, err := h.validator.DaysUntilExpiry(contractID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := map[string]any{
		"contract_id":       contractID,
		"valid_from":        from,
		"valid_to":          to,
		"days_until_expiry": days,
	}

	if date := r.URL.Query().Get("date"); date != "" {
		valid, err := h.validator.IsContractValidOn(contractID, date)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		resp["valid_on"] = map[string]any{"date": date, "valid": valid}

		if rate, err := h.validator.ApplicableFuelRate(contractID, date); err == nil {
			resp["fuel_rate"] = rate
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// --- GetDashboard ---

func (h *Handlers) GetDashboard(w http.ResponseWriter, r *http.Request) {
	invStats, err := h.invoiceRepo.GetStats()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	auditSummary, err := h.auditRepo.GetSummary()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"invoices": invStats,
		"audits":   auditSummary,
	})
}
