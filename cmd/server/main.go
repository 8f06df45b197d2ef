package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/freightlens/auditor/internal/api"
	"github.com/freightlens/auditor/internal/audit"
	"github.com/freightlens/auditor/internal/contract"
	"github.com/freightlens/auditor/internal/domain"
	"github.com/freightlens/auditor/internal/ingestion"
	"github.com/freightlens/auditor/internal/repository"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "freightaudit.db"
	}

	policy := audit.DefaultPolicy()
	if policyPath := os.Getenv("POLICY_PATH"); policyPath != "" {
		var err error
		policy, err = audit.LoadPolicy(policyPath)
		if err != nil {
			log.Fatalf("Failed to load audit policy: %v", err)
		}
		log.Printf("Loaded audit policy from %s (fuel=%.0f%% gst=%.0f%%)",
			policyPath, policy.FuelSurchargePercent, policy.GSTPercent)
	}

	log.Printf("Initializing database at %s", dbPath)
	db, err := repository.InitDB(dbPath)
	if err != nil {
		log.Fatalf("Failed to init DB: %v", err)
	}
	defer db.Close()

	// Create repositories.
	supplierRepo := repository.NewSupplierRepo(db)
	invoiceRepo := repository.NewInvoiceRepo(db)
	auditRepo := repository.NewAuditRepo(db)

	// Create services.
	validator := contract.NewValidator(supplierRepo)
	ingestionSvc := ingestion.NewService(supplierRepo)

	// Seed suppliers if DB is empty.
	count, err := supplierRepo.Count()
	if err != nil {
		log.Fatalf("Failed to count suppliers: %v", err)
	}
	if count == 0 {
		log.Println("Database is empty, seeding suppliers from testdata...")
		if err := seedSuppliers(supplierRepo); err != nil {
			log.Printf("WARNING: Failed to seed suppliers: %v", err)
		}
	} else {
		log.Printf("Database already has %d suppliers, skipping seed", count)
	}

	// Create router.
	router := api.NewRouter(supplierRepo, invoiceRepo, auditRepo, validator, ingestionSvc, policy)

	log.Printf("Freightlens Invoice Audit Service")
	log.Printf("Listening on http://localhost:%s", port)
	log.Printf("API base: http://localhost:%s/api/v1", port)
	log.Printf("")
	log.Printf("Endpoints:")
	log.Printf("  POST   /api/v1/ratecards/ingest")
	log.Printf("  GET    /api/v1/suppliers")
	log.Printf("  GET    /api/v1/suppliers/{id}/ratecard")
	log.Printf("  POST   /api/v1/invoices")
	log.Printf("  GET    /api/v1/invoices")
	log.Printf("  GET    /api/v1/invoices/{id}")
	log.Printf("  POST   /api/v1/invoices/{id}/audit")
	log.Printf("  GET    /api/v1/invoices/{id}/report")
	log.Printf("  POST   /api/v1/invoices/{id}/status")
	log.Printf("  POST   /api/v1/audit/preview")
	log.Printf("  POST   /api/v1/estimate")
	log.Printf("  GET    /api/v1/contracts/{id}/validate-dates")
	log.Printf("  GET    /api/v1/contracts/{id}/validity")
	log.Printf("  GET    /api/v1/dashboard")

	if err := http.ListenAndServe(":"+port, router); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func seedSuppliers(repo *repository.SupplierRepo) error {
	// Try multiple possible locations for testdata.
	candidates := []string{
		"testdata/suppliers.json",
		filepath.Join(".", "testdata", "suppliers.json"),
	}

	// Also try to find relative to the executable.
	if exe, err := os.Executable(); err == nil {
		dir := filepath.Dir(exe)
		candidates = append(candidates,
			filepath.Join(dir, "testdata", "suppliers.json"),
			filepath.Join(dir, "..", "..", "testdata", "suppliers.json"),
		)
	}

	var data []byte
	var loadErr error
	for _, path := range candidates {
		data, loadErr = os.ReadFile(path)
		if loadErr == nil {
			log.Printf("Loaded suppliers from %s", path)
			break
		}
	}
	if loadErr != nil {
		return fmt.Errorf("could not find suppliers.json in any candidate path: %w", loadErr)
	}

	var suppliers []domain.Supplier
	if err := json.Unmarshal(data, &suppliers); err != nil {
		return fmt.Errorf("unmarshal suppliers: %w", err)
	}

	for i := range suppliers {
		if err := repo.Insert(&suppliers[i]); err != nil {
			return fmt.Errorf("insert supplier %s: %w", suppliers[i].ID, err)
		}
	}

	log.Printf("Seeded %d suppliers", len(suppliers))
	return nil
}
