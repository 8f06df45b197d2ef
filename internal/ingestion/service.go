package ingestion

import (
	"crypto/sha256"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/freightlens/auditor/internal/repository"
)

// IngestResult is returned from a successful rate card ingestion.
type IngestResult struct {
	UploadID          string `json:"upload_id"`
	LinesIngested     int    `json:"lines_ingested"`
	DuplicatesSkipped int    `json:"duplicates_skipped"`
}

// Service handles rate card uploads for suppliers.
type Service struct {
	supplierRepo *repository.SupplierRepo
}

func NewService(supplierRepo *repository.SupplierRepo) *Service {
	return &Service{supplierRepo: supplierRepo}
}

// IngestRateCard parses a CSV rate card and appends its lines to the
// supplier's card. Re-uploading the same file is a no-op, keyed by a
// sha256 hash of the raw bytes.
func (s *Service) IngestRateCard(data []byte, supplierID string) (*IngestResult, error) {
	supplier, err := s.supplierRepo.GetByID(supplierID)
	if err != nil {
		return nil, fmt.Errorf("lookup supplier %s: %w", supplierID, err)
	}

	hash := fmt.Sprintf("%x", sha256.Sum256(data))
	exists, err := s.supplierRepo.UploadExistsByHash(hash)
	if err != nil {
		return nil, fmt.Errorf("check hash: %w", err)
	}
	if exists {
		return &IngestResult{UploadID: "already-ingested"}, nil
	}

	lines, err := ParseRateCardCSV(data, supplier.ContractID)
	if err != nil {
		return nil, fmt.Errorf("parse rate card: %w", err)
	}

	inserted, err := s.supplierRepo.InsertRateLines(supplierID, lines)
	if err != nil {
		return nil, fmt.Errorf("insert rate lines: %w", err)
	}

	uploadID := uuid.NewString()
	if err := s.supplierRepo.InsertUpload(uploadID, supplierID, hash, inserted); err != nil {
		return nil, fmt.Errorf("record upload: %w", err)
	}

	log.Printf("[ingestion] Rate card upload %s for supplier %s: %d lines (%d new)",
		uploadID, supplierID, len(lines), inserted)

	return &IngestResult{
		UploadID:          uploadID,
		LinesIngested:     inserted,
		DuplicatesSkipped: len(lines) - inserted,
	}, nil
}
