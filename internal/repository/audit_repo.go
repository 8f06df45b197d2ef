package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/freightlens/auditor/internal/domain"
)

// AuditRun is one persisted engine invocation against a stored invoice.
type AuditRun struct {
	ID        string                `json:"id"`
	InvoiceID string                `json:"invoice_id"`
	Result    domain.MatchingResult `json:"result"`
	CreatedAt time.Time             `json:"created_at"`
}

type AuditRepo struct {
	db *sql.DB
}

func NewAuditRepo(db *sql.DB) *AuditRepo {
	return &AuditRepo{db: db}
}

// Insert stores an audit run with its discrepancies in emission order.
func (r *AuditRepo) Insert(run *AuditRun) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res := run.Result
	_, err = tx.Exec(
		`INSERT INTO audits
		(id, invoice_id, matched, expected_amount, actual_amount, variance,
		 variance_percent, recommendation, created_at)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		run.ID, run.InvoiceID, boolToInt(res.Matched), res.ExpectedAmount,
		res.ActualAmount, res.Variance, res.VariancePercent,
		string(res.Recommendation), run.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert audit: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO audit_discrepancies
		(audit_id, position, type, severity, description, expected, actual, impact)
		VALUES (?,?,?,?,?,?,?,?)`,
	)
	if err != nil {
		return fmt.Errorf("prepare discrepancies: %w", err)
	}
	defer stmt.Close()

	for i, d := range res.Discrepancies {
		_, err := stmt.Exec(
			run.ID, i, string(d.Type), string(d.Severity), d.Description,
			d.Expected, d.Actual, d.Impact,
		)
		if err != nil {
			return fmt.Errorf("insert discrepancy %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// GetByInvoiceID returns all audit runs for an invoice, newest first.
func (r *AuditRepo) GetByInvoiceID(invoiceID string) ([]AuditRun, error) {
	rows, err := r.db.Query(
		`SELECT id, invoice_id, matched, expected_amount, actual_amount,
		 variance, variance_percent, recommendation, created_at
		FROM audits WHERE invoice_id = ? ORDER BY created_at DESC`, invoiceID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []AuditRun
	for rows.Next() {
		run, err := scanAuditRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range runs {
		runs[i].Result.Discrepancies, err = r.getDiscrepancies(runs[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return runs, nil
}

// LatestByInvoiceID returns the most recent audit run for an invoice, or
// nil when the invoice has never been audited.
func (r *AuditRepo) LatestByInvoiceID(invoiceID string) (*AuditRun, error) {
	rows, err := r.db.Query(
		`SELECT id, invoice_id, matched, expected_amount, actual_amount,
		 variance, variance_percent, recommendation, created_at
		FROM audits WHERE invoice_id = ? ORDER BY created_at DESC LIMIT 1`, invoiceID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	run, err := scanAuditRun(rows)
	if err != nil {
		return nil, err
	}
	run.Result.Discrepancies, err = r.getDiscrepancies(run.ID)
	if err != nil {
		return nil, err
	}
	return run, nil
}

func (r *AuditRepo) getDiscrepancies(auditID string) ([]domain.Discrepancy, error) {
	rows, err := r.db.Query(
		`SELECT type, severity, description, expected, actual, impact
		FROM audit_discrepancies WHERE audit_id = ? ORDER BY position`, auditID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var discs []domain.Discrepancy
	for rows.Next() {
		var d domain.Discrepancy
		var dtype, sev string
		if err := rows.Scan(&dtype, &sev, &d.Description, &d.Expected, &d.Actual, &d.Impact); err != nil {
			return nil, err
		}
		d.Type = domain.DiscrepancyType(dtype)
		d.Severity = domain.Severity(sev)
		discs = append(discs, d)
	}
	return discs, rows.Err()
}

type AuditSummary struct {
	TotalRuns        int            `json:"total_runs"`
	Matched          int            `json:"matched"`
	ByRecommendation map[string]int `json:"by_recommendation"`
	ByType           map[string]int `json:"by_type"`
	BySeverity       map[string]int `json:"by_severity"`
	TotalImpact      float64        `json:"total_impact"`
}

func (r *AuditRepo) GetSummary() (*AuditSummary, error) {
	s := &AuditSummary{
		ByRecommendation: make(map[string]int),
		ByType:           make(map[string]int),
		BySeverity:       make(map[string]int),
	}

	if err := r.db.QueryRow(
		"SELECT COUNT(*), COALESCE(SUM(matched),0) FROM audits",
	).Scan(&s.TotalRuns, &s.Matched); err != nil {
		return nil, err
	}

	if err := scanGroupCount(r.db, "audits", "recommendation", s.ByRecommendation); err != nil {
		return nil, err
	}
	if err := scanGroupCount(r.db, "audit_discrepancies", "type", s.ByType); err != nil {
		return nil, err
	}
	if err := scanGroupCount(r.db, "audit_discrepancies", "severity", s.BySeverity); err != nil {
		return nil, err
	}

	if err := r.db.QueryRow(
		"SELECT COALESCE(SUM(ABS(impact)),0) FROM audit_discrepancies",
	).Scan(&s.TotalImpact); err != nil {
		return nil, err
	}

	return s, nil
}

// --- helpers ---

func scanAuditRun(rows *sql.Rows) (*AuditRun, error) {
	var run AuditRun
	var matched int
	var rec, createdAt string

	err := rows.Scan(
		&run.ID, &run.InvoiceID, &matched, &run.Result.ExpectedAmount,
		&run.Result.ActualAmount, &run.Result.Variance,
		&run.Result.VariancePercent, &rec, &createdAt,
	)
	if err != nil {
		return nil, err
	}
	run.Result.Matched = matched != 0
	run.Result.Recommendation = domain.Recommendation(rec)
	run.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &run, nil
}

func scanGroupCount(db *sql.DB, table, col string, m map[string]int) error {
	rows, err := db.Query(
		"SELECT " + col + ", COUNT(*) FROM " + table + " GROUP BY " + col,
	)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var k string
		var v int
		if err := rows.Scan(&k, &v); err != nil {
			return err
		}
		m[k] = v
	}
	return rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
