package ingestion

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/freightlens/auditor/internal/domain"
)

// ParseRateCardCSV parses a supplier rate card upload.
//
// Expected header:
//
//	origin,destination,mode,base_rate,unit,weight_slab,fuel_surcharge_percent,gst_percent,valid_from,valid_to,status
func ParseRateCardCSV(data []byte, contractID string) ([]domain.RateLine, error) {
	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) < 11 {
		return nil, fmt.Errorf("expected 11 columns, got %d", len(header))
	}

	var lines []domain.RateLine
	lineNum := 1

	for {
		lineNum++
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		if len(row) < 11 {
			continue
		}

		baseRate, err := strconv.ParseFloat(strings.TrimSpace(row[3]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d base_rate: %w", lineNum, err)
		}
		fuelPct, err := strconv.ParseFloat(strings.TrimSpace(row[6]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d fuel_surcharge_percent: %w", lineNum, err)
		}
		gstPct, err := strconv.ParseFloat(strings.TrimSpace(row[7]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d gst_percent: %w", lineNum, err)
		}

		status := domain.RateStatus(strings.ToLower(strings.TrimSpace(row[10])))
		if status == "" {
			status = domain.RateActive
		}

		rl := domain.RateLine{
			ID:                   uuid.NewString(),
			ContractID:           contractID,
			Origin:               strings.TrimSpace(row[0]),
			Destination:          strings.TrimSpace(row[1]),
			Mode:                 strings.TrimSpace(row[2]),
			BaseRate:             baseRate,
			Unit:                 domain.Unit(strings.ToLower(strings.TrimSpace(row[4]))),
			WeightSlab:           strings.TrimSpace(row[5]),
			FuelSurchargePercent: fuelPct,
			GSTPercent:           gstPct,
			ValidFrom:            strings.TrimSpace(row[8]),
			ValidTo:              strings.TrimSpace(row[9]),
			Status:               status,
		}
		lines = append(lines, rl)
	}

	return lines, nil
}
