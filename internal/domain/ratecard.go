package domain

import "time"

type Unit string

const (
	UnitKg   Unit = "kg"
	UnitTon  Unit = "ton"
	UnitTrip Unit = "trip"
)

type RateStatus string

const (
	RateActive  RateStatus = "active"
	RateExpired RateStatus = "expired"
)

// AdditionalCharge is a named flat charge attached to a rate line
// (loading, detention, toll and the like).
type AdditionalCharge struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// RateLine is one contracted price point on a supplier's rate card.
// Reference data: the audit engine never mutates it.
type RateLine struct {
	ID                   string             `json:"id"`
	ContractID           string             `json:"contract_id"`
	Origin               string             `json:"origin"`
	Destination          string             `json:"destination"`
	Mode                 string             `json:"mode"`
	BaseRate             float64            `json:"base_rate"`
	Unit                 Unit               `json:"unit"`
	WeightSlab           string             `json:"weight_slab,omitempty"`
	FuelSurchargePercent float64            `json:"fuel_surcharge_percent"`
	GSTPercent           float64            `json:"gst_percent"`
	AdditionalCharges    []AdditionalCharge `json:"additional_charges,omitempty"`
	ValidFrom            string             `json:"valid_from"`
	ValidTo              string             `json:"valid_to"`
	Status               RateStatus         `json:"status"`
}

// Supplier owns a contract and its rate card.
type Supplier struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	ContractID string     `json:"contract_id"`
	City       string     `json:"city,omitempty"`
	RateCard   []RateLine `json:"rate_card,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}
