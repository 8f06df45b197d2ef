package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/freightlens/auditor/internal/domain"
)

type InvoiceRepo struct {
	db *sql.DB
}

func NewInvoiceRepo(db *sql.DB) *InvoiceRepo {
	return &InvoiceRepo{db: db}
}

// Insert stores an invoice and its line items atomically.
func (r *InvoiceRepo) Insert(inv *domain.SupplierInvoice) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO invoices
		(id, invoice_number, supplier_id, contract_id, invoice_date,
		 docket_date, subtotal, fuel_surcharge, fuel_surcharge_percent,
		 gst, gst_percent, total_amount, pod_status, status, created_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		inv.ID, inv.InvoiceNumber, inv.SupplierID, inv.ContractID,
		inv.InvoiceDate, inv.DocketDate, inv.Subtotal, inv.FuelSurcharge,
		inv.FuelSurchargePercent, inv.GST, inv.GSTPercent, inv.TotalAmount,
		string(inv.PODStatus), string(inv.Status),
		inv.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert invoice: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO invoice_line_items
		(invoice_id, position, description, origin, destination, weight, unit, rate, amount)
		VALUES (?,?,?,?,?,?,?,?,?)`,
	)
	if err != nil {
		return fmt.Errorf("prepare items: %w", err)
	}
	defer stmt.Close()

	for i, item := range inv.LineItems {
		_, err := stmt.Exec(
			inv.ID, i, item.Description, item.Origin, item.Destination,
			item.Weight, string(item.Unit), item.Rate, item.Amount,
		)
		if err != nil {
			return fmt.Errorf("insert item %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *InvoiceRepo) GetByID(id string) (*domain.SupplierInvoice, error) {
	var inv domain.SupplierInvoice
	var pod, status, createdAt string

	err := r.db.QueryRow(
		`SELECT id, invoice_number, supplier_id, contract_id, invoice_date,
		 docket_date, subtotal, fuel_surcharge, fuel_surcharge_percent,
		 gst, gst_percent, total_amount, pod_status, status, created_at
		FROM invoices WHERE id = ?`, id,
	).Scan(
		&inv.ID, &inv.InvoiceNumber, &inv.SupplierID, &inv.ContractID,
		&inv.InvoiceDate, &inv.DocketDate, &inv.Subtotal, &inv.FuelSurcharge,
		&inv.FuelSurchargePercent, &inv.GST, &inv.GSTPercent,
		&inv.TotalAmount, &pod, &status, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	inv.PODStatus = domain.PODStatus(pod)
	inv.Status = domain.InvoiceStatus(status)
	inv.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

	inv.LineItems, err = r.getLineItems(id)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *InvoiceRepo) getLineItems(invoiceID string) ([]domain.InvoiceLineItem, error) {
	rows, err := r.db.Query(
		`SELECT description, origin, destination, weight, unit, rate, amount
		FROM invoice_line_items WHERE invoice_id = ? ORDER BY position`, invoiceID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.InvoiceLineItem
	for rows.Next() {
		var item domain.InvoiceLineItem
		var unit string
		if err := rows.Scan(&item.Description, &item.Origin, &item.Destination,
			&item.Weight, &unit, &item.Rate, &item.Amount); err != nil {
			return nil, err
		}
		item.Unit = domain.Unit(unit)
		items = append(items, item)
	}
	return items, rows.Err()
}

type InvoiceFilter struct {
	SupplierID string
	Status     string
	PODStatus  string
	From       string // invoice_date lower bound, YYYY-MM-DD
	To         string // invoice_date upper bound, YYYY-MM-DD
	Page       int
	Limit      int
}

// List returns invoices (without line items) matching the filter, newest
// first, plus the unpaginated total.
func (r *InvoiceRepo) List(f InvoiceFilter) ([]domain.SupplierInvoice, int, error) {
	where, args := buildInvoiceWhere(f)

	var total int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM invoices"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	offset := (f.Page - 1) * f.Limit

	q := `SELECT id, invoice_number, supplier_id, contract_id, invoice_date,
		 docket_date, subtotal, fuel_surcharge, fuel_surcharge_percent,
		 gst, gst_percent, total_amount, pod_status, status, created_at
		FROM invoices` + where + " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, f.Limit, offset)

	rows, err := r.db.Query(q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var invoices []domain.SupplierInvoice
	for rows.Next() {
		var inv domain.SupplierInvoice
		var pod, status, createdAt string
		err := rows.Scan(
			&inv.ID, &inv.InvoiceNumber, &inv.SupplierID, &inv.ContractID,
			&inv.InvoiceDate, &inv.DocketDate, &inv.Subtotal, &inv.FuelSurcharge,
			&inv.FuelSurchargePercent, &inv.GST, &inv.GSTPercent,
			&inv.TotalAmount, &pod, &status, &createdAt,
		)
		if err != nil {
			return nil, 0, err
		}
		inv.PODStatus = domain.PODStatus(pod)
		inv.Status = domain.InvoiceStatus(status)
		inv.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		invoices = append(invoices, inv)
	}
	return invoices, total, rows.Err()
}

func (r *InvoiceRepo) UpdateStatus(id string, status domain.InvoiceStatus) error {
	res, err := r.db.Exec("UPDATE invoices SET status = ? WHERE id = ?", string(status), id)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *InvoiceRepo) UpdatePODStatus(id string, pod domain.PODStatus) error {
	res, err := r.db.Exec("UPDATE invoices SET pod_status = ? WHERE id = ?", string(pod), id)
	if err != nil {
		return fmt.Errorf("update pod status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

type InvoiceStats struct {
	Total       int     `json:"total"`
	Submitted   int     `json:"submitted"`
	UnderReview int     `json:"under_review"`
	Approved    int     `json:"approved"`
	Rejected    int     `json:"rejected"`
	Paid        int     `json:"paid"`
	BilledTotal float64 `json:"billed_total"`
}

func (r *InvoiceRepo) GetStats() (*InvoiceStats, error) {
	s := &InvoiceStats{}
	err := r.db.QueryRow(`SELECT COUNT(*),
		COALESCE(SUM(CASE WHEN status = 'submitted' THEN 1 ELSE 0 END),0),
		COALESCE(SUM(CASE WHEN status = 'under_review' THEN 1 ELSE 0 END),0),
		COALESCE(SUM(CASE WHEN status = 'approved' THEN 1 ELSE 0 END),0),
		COALESCE(SUM(CASE WHEN status = 'rejected' THEN 1 ELSE 0 END),0),
		COALESCE(SUM(CASE WHEN status = 'paid' THEN 1 ELSE 0 END),0),
		COALESCE(SUM(total_amount),0)
		FROM invoices`).Scan(
		&s.Total, &s.Submitted, &s.UnderReview, &s.Approved, &s.Rejected,
		&s.Paid, &s.BilledTotal,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// --- helpers ---

func buildInvoiceWhere(f InvoiceFilter) (string, []any) {
	var clauses []string
	var args []any

	if f.SupplierID != "" {
		clauses = append(clauses, "supplier_id = ?")
		args = append(args, f.SupplierID)
	}
	if f.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, f.Status)
	}
	if f.PODStatus != "" {
		clauses = append(clauses, "pod_status = ?")
		args = append(args, f.PODStatus)
	}
	if f.From != "" {
		clauses = append(clauses, "invoice_date >= ?")
		args = append(args, f.From)
	}
	if f.To != "" {
		clauses = append(clauses, "invoice_date <= ?")
		args = append(args, f.To)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}
