package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/freightlens/auditor/internal/domain"
)

// SupplierRepo stores suppliers, their rate cards and the fuel-rate master
// table. It implements contract.MasterData.
type SupplierRepo struct {
	db *sql.DB
}

func NewSupplierRepo(db *sql.DB) *SupplierRepo {
	return &SupplierRepo{db: db}
}

func (r *SupplierRepo) Insert(s *domain.Supplier) error {
	_, err := r.db.Exec(
		`INSERT INTO suppliers (id, name, contract_id, city, created_at)
		VALUES (?,?,?,?,?)`,
		s.ID, s.Name, s.ContractID, s.City, s.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert supplier: %w", err)
	}
	if len(s.RateCard) > 0 {
		if _, err := r.InsertRateLines(s.ID, s.RateCard); err != nil {
			return err
		}
	}
	return nil
}

func (r *SupplierRepo) InsertRateLines(supplierID string, lines []domain.RateLine) (int, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT OR IGNORE INTO rate_lines
		(id, supplier_id, contract_id, origin, destination, mode, base_rate,
		 unit, weight_slab, fuel_surcharge_percent, gst_percent,
		 additional_charges, valid_from, valid_to, status)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
	)
	if err != nil {
		return 0, fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for i := range lines {
		rl := &lines[i]
		charges, err := marshalCharges(rl.AdditionalCharges)
		if err != nil {
			return inserted, fmt.Errorf("marshal charges %d: %w", i, err)
		}
		res, err := stmt.Exec(
			rl.ID, supplierID, rl.ContractID, rl.Origin, rl.Destination,
			rl.Mode, rl.BaseRate, string(rl.Unit), rl.WeightSlab,
			rl.FuelSurchargePercent, rl.GSTPercent, charges,
			rl.ValidFrom, rl.ValidTo, string(rl.Status),
		)
		if err != nil {
			return inserted, fmt.Errorf("insert rate line %d: %w", i, err)
		}
		ra, _ := res.RowsAffected()
		inserted += int(ra)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}

func (r *SupplierRepo) GetByID(id string) (*domain.Supplier, error) {
	var s domain.Supplier
	var createdAt string
	err := r.db.QueryRow(
		"SELECT id, name, contract_id, COALESCE(city,''), created_at FROM suppliers WHERE id = ?", id,
	).Scan(&s.ID, &s.Name, &s.ContractID, &s.City, &createdAt)
	if err != nil {
		return nil, err
	}
	s.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

	s.RateCard, err = r.GetRateCard(id)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SupplierRepo) List() ([]domain.Supplier, error) {
	rows, err := r.db.Query(
		"SELECT id, name, contract_id, COALESCE(city,''), created_at FROM suppliers ORDER BY name",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var suppliers []domain.Supplier
	for rows.Next() {
		var s domain.Supplier
		var createdAt string
		if err := rows.Scan(&s.ID, &s.Name, &s.ContractID, &s.City, &createdAt); err != nil {
			return nil, err
		}
		s.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		suppliers = append(suppliers, s)
	}
	return suppliers, rows.Err()
}

func (r *SupplierRepo) Count() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM suppliers").Scan(&count)
	return count, err
}

// GetRateCard returns a supplier's rate lines in contract-data order.
func (r *SupplierRepo) GetRateCard(supplierID string) ([]domain.RateLine, error) {
	rows, err := r.db.Query(
		selectRateLines+" WHERE supplier_id = ? ORDER BY rowid", supplierID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRateLines(rows)
}

// GetRatesByContract returns all rate lines recorded under a contract.
// Part of the contract.MasterData interface.
func (r *SupplierRepo) GetRatesByContract(contractID string) ([]domain.RateLine, error) {
	rows, err := r.db.Query(
		selectRateLines+" WHERE contract_id = ? ORDER BY rowid", contractID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRateLines(rows)
}

func (r *SupplierRepo) InsertFuelRate(contractID, effectiveFrom string, rate float64) error {
	_, err := r.db.Exec(
		`INSERT OR REPLACE INTO fuel_rates (contract_id, effective_from, rate) VALUES (?,?,?)`,
		contractID, effectiveFrom, rate,
	)
	if err != nil {
		return fmt.Errorf("insert fuel rate: %w", err)
	}
	return nil
}

// GetApplicableFuelRate returns the latest fuel rate effective on or before
// the given date. Part of the contract.MasterData interface.
func (r *SupplierRepo) GetApplicableFuelRate(contractID, date string) (float64, error) {
	var rate float64
	err := r.db.QueryRow(
		`SELECT rate FROM fuel_rates
		WHERE contract_id = ? AND effective_from <= ?
		ORDER BY effective_from DESC LIMIT 1`,
		contractID, date,
	).Scan(&rate)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("no fuel rate on record for contract %s on %s", contractID, date)
	}
	if err != nil {
		return 0, err
	}
	return rate, nil
}

func (r *SupplierRepo) UploadExistsByHash(hash string) (bool, error) {
	var count int
	err := r.db.QueryRow(
		"SELECT COUNT(*) FROM rate_card_uploads WHERE file_hash = ?", hash,
	).Scan(&count)
	return count > 0, err
}

func (r *SupplierRepo) InsertUpload(id, supplierID, hash string, lineCount int) error {
	_, err := r.db.Exec(
		`INSERT INTO rate_card_uploads (id, supplier_id, file_hash, line_count, ingested_at)
		VALUES (?,?,?,?,?)`,
		id, supplierID, hash, lineCount, time.Now().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert upload: %w", err)
	}
	return nil
}

// --- helpers ---

const selectRateLines = `SELECT id, contract_id, origin, destination, mode,
	base_rate, unit, COALESCE(weight_slab,''), fuel_surcharge_percent,
	gst_percent, additional_charges, valid_from, valid_to, status
	FROM rate_lines`

func scanRateLines(rows *sql.Rows) ([]domain.RateLine, error) {
	var lines []domain.RateLine
	for rows.Next() {
		var rl domain.RateLine
		var unit, status string
		var charges sql.NullString

		err := rows.Scan(
			&rl.ID, &rl.ContractID, &rl.Origin, &rl.Destination, &rl.Mode,
			&rl.BaseRate, &unit, &rl.WeightSlab, &rl.FuelSurchargePercent,
			&rl.GSTPercent, &charges, &rl.ValidFrom, &rl.ValidTo, &status,
		)
		if err != nil {
			return nil, err
		}

		rl.Unit = domain.Unit(unit)
		rl.Status = domain.RateStatus(status)
		if charges.Valid && charges.String != "" {
			if err := json.Unmarshal([]byte(charges.String), &rl.AdditionalCharges); err != nil {
				return nil, fmt.Errorf("unmarshal charges for %s: %w", rl.ID, err)
			}
		}
		lines = append(lines, rl)
	}
	return lines, rows.Err()
}

func marshalCharges(charges []domain.AdditionalCharge) (any, error) {
	if len(charges) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(charges)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}
