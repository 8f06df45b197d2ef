// Command generate emits deterministic sample suppliers, rate cards and
// invoices into the testdata directory for local development.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/freightlens/auditor/internal/domain"
	"github.com/freightlens/auditor/internal/money"
)

var routes = []struct {
	origin, dest string
	ratePerKg    float64
}{
	{"Mumbai", "Delhi", 18},
	{"Mumbai", "Bengaluru", 16},
	{"Delhi", "Kolkata", 20},
	{"Chennai", "Hyderabad", 14},
	{"Pune", "Ahmedabad", 15},
}

func main() {
	rng := rand.New(rand.NewSource(42))
	baseDir := findTestdataDir()

	suppliers := make([]domain.Supplier, 0, 4)
	for i := 0; i < 4; i++ {
		supplierID := fmt.Sprintf("SUP-%03d", i+1)
		contractID := fmt.Sprintf("CTR-2024-%03d", i+1)

		var card []domain.RateLine
		for j, route := range routes {
			// Two slabs plus an unconstrained fallback per route.
			slabs := []string{"0-100 kg", "101-500 kg", ""}
			for k, slab := range slabs {
				rate := route.ratePerKg * (1 + float64(i)*0.05)
				if k == 1 {
					rate *= 0.9 // volume discount on the heavier slab
				}
				card = append(card, domain.RateLine{
					ID:                   fmt.Sprintf("RL-%s-%d-%d", supplierID, j, k),
					ContractID:           contractID,
					Origin:               route.origin,
					Destination:          route.dest,
					Mode:                 "road",
					BaseRate:             money.RoundINR(rate),
					Unit:                 domain.UnitKg,
					WeightSlab:           slab,
					FuelSurchargePercent: 15,
					GSTPercent:           18,
					ValidFrom:            "2024-01-01",
					ValidTo:              "2024-12-31",
					Status:               domain.RateActive,
				})
			}
		}

		suppliers = append(suppliers, domain.Supplier{
			ID:         supplierID,
			Name:       fmt.Sprintf("Sample Freight Co %d", i+1),
			ContractID: contractID,
			City:       routes[i%len(routes)].origin,
			RateCard:   card,
			CreatedAt:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		})
	}

	writeJSON(filepath.Join(baseDir, "suppliers.json"), suppliers)

	invoices := make([]domain.SupplierInvoice, 0, 10)
	for i := 0; i < 10; i++ {
		sup := suppliers[i%len(suppliers)]
		route := routes[rng.Intn(len(routes))]
		weight := float64(50 + rng.Intn(400))
		rate := route.ratePerKg * (1 + float64(i%len(suppliers))*0.05)
		if weight > 100 {
			rate *= 0.9
		}

		// One in three invoices is overbilled by 10%.
		billedRate := money.RoundINR(rate)
		if i%3 == 0 {
			billedRate = money.RoundINR(rate * 1.1)
		}

		subtotal := money.RoundINR(weight * billedRate)
		fuel := money.RoundINR(subtotal * 0.15)
		gst := money.RoundINR((subtotal + fuel) * 0.18)

		day := 10 + rng.Intn(10)
		invoices = append(invoices, domain.SupplierInvoice{
			InvoiceNumber: fmt.Sprintf("INV-2024-%04d", i+1),
			SupplierID:    sup.ID,
			ContractID:    sup.ContractID,
			InvoiceDate:   fmt.Sprintf("2024-03-%02d", day+2),
			DocketDate:    fmt.Sprintf("2024-03-%02d", day),
			LineItems: []domain.InvoiceLineItem{{
				Description: fmt.Sprintf("%s to %s FTL", route.origin, route.dest),
				Origin:      route.origin,
				Destination: route.dest,
				Weight:      weight,
				Unit:        domain.UnitKg,
				Rate:        billedRate,
				Amount:      subtotal,
			}},
			Subtotal:             subtotal,
			FuelSurcharge:        fuel,
			FuelSurchargePercent: 15,
			GST:                  gst,
			GSTPercent:           18,
			TotalAmount:          money.RoundINR(subtotal + fuel + gst),
			PODStatus:            domain.PODUploaded,
			Status:               domain.InvoiceSubmitted,
		})
	}

	writeJSON(filepath.Join(baseDir, "invoices.json"), invoices)

	log.Printf("Wrote %d suppliers and %d sample invoices to %s",
		len(suppliers), len(invoices), baseDir)
}

func writeJSON(path string, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("marshal %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Fatalf("write %s: %v", path, err)
	}
}

func findTestdataDir() string {
	for _, dir := range []string{"testdata", filepath.Join("..", "..", "testdata"), "."} {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}
	return "."
}
