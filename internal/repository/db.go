package repository

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// InitDB opens (or creates) a SQLite database at the given path and ensures
// all required tables exist. Pass ":memory:" for an in-memory database.
func InitDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set wal mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return db, nil
}

func createTables(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS suppliers (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			contract_id TEXT NOT NULL,
			city TEXT,
			created_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_suppliers_contract ON suppliers(contract_id)`,

		`CREATE TABLE IF NOT EXISTS rate_lines (
			id TEXT PRIMARY KEY,
			supplier_id TEXT NOT NULL,
			contract_id TEXT NOT NULL,
			origin TEXT NOT NULL,
			destination TEXT NOT NULL,
			mode TEXT NOT NULL,
			base_rate REAL NOT NULL,
			unit TEXT NOT NULL,
			weight_slab TEXT,
			fuel_surcharge_percent REAL NOT NULL DEFAULT 0,
			gst_percent REAL NOT NULL DEFAULT 0,
			additional_charges TEXT,
			valid_from TEXT NOT NULL,
			valid_to TEXT NOT NULL,
			status TEXT NOT NULL,
			FOREIGN KEY (supplier_id) REFERENCES suppliers(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_rate_lines_supplier ON rate_lines(supplier_id)`,
		`CREATE INDEX IF NOT EXISTS idx_rate_lines_contract ON rate_lines(contract_id)`,
		`CREATE INDEX IF NOT EXISTS idx_rate_lines_route ON rate_lines(origin, destination)`,

		`CREATE TABLE IF NOT EXISTS fuel_rates (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			contract_id TEXT NOT NULL,
			effective_from TEXT NOT NULL,
			rate REAL NOT NULL,
			UNIQUE (contract_id, effective_from)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_fuel_rates_contract ON fuel_rates(contract_id)`,

		`CREATE TABLE IF NOT EXISTS rate_card_uploads (
			id TEXT PRIMARY KEY,
			supplier_id TEXT NOT NULL,
			file_hash TEXT UNIQUE NOT NULL,
			line_count INTEGER NOT NULL,
			ingested_at DATETIME NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS invoices (
			id TEXT PRIMARY KEY,
			invoice_number TEXT UNIQUE NOT NULL,
			supplier_id TEXT NOT NULL,
			contract_id TEXT NOT NULL,
			invoice_date TEXT NOT NULL,
			docket_date TEXT NOT NULL,
			subtotal REAL NOT NULL,
			fuel_surcharge REAL NOT NULL,
			fuel_surcharge_percent REAL NOT NULL,
			gst REAL NOT NULL,
			gst_percent REAL NOT NULL,
			total_amount REAL NOT NULL,
			pod_status TEXT NOT NULL,
			status TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (supplier_id) REFERENCES suppliers(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_invoices_supplier ON invoices(supplier_id)`,
		`CREATE INDEX IF NOT EXISTS idx_invoices_status ON invoices(status)`,
		`CREATE INDEX IF NOT EXISTS idx_invoices_invoice_date ON invoices(invoice_date)`,

		`CREATE TABLE IF NOT EXISTS invoice_line_items (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			invoice_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			description TEXT NOT NULL,
			origin TEXT NOT NULL,
			destination TEXT NOT NULL,
			weight REAL NOT NULL,
			unit TEXT NOT NULL,
			rate REAL NOT NULL,
			amount REAL NOT NULL,
			FOREIGN KEY (invoice_id) REFERENCES invoices(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_line_items_invoice ON invoice_line_items(invoice_id)`,

		`CREATE TABLE IF NOT EXISTS audits (
			id TEXT PRIMARY KEY,
			invoice_id TEXT NOT NULL,
			matched INTEGER NOT NULL,
			expected_amount REAL NOT NULL,
			actual_amount REAL NOT NULL,
			variance REAL NOT NULL,
			variance_percent REAL NOT NULL,
			recommendation TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (invoice_id) REFERENCES invoices(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_audits_invoice ON audits(invoice_id)`,
		`CREATE INDEX IF NOT EXISTS idx_audits_recommendation ON audits(recommendation)`,

		`CREATE TABLE IF NOT EXISTS audit_discrepancies (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			audit_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			type TEXT NOT NULL,
			severity TEXT NOT NULL,
			description TEXT NOT NULL,
			expected TEXT NOT NULL,
			actual TEXT NOT NULL,
			impact REAL NOT NULL,
			FOREIGN KEY (audit_id) REFERENCES audits(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_discrepancies_audit ON audit_discrepancies(audit_id)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_discrepancies_type ON audit_discrepancies(type)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_discrepancies_severity ON audit_discrepancies(severity)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:60], err)
		}
	}

	return nil
}
