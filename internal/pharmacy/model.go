package pharmacy

import (
	"time"

	"github.com/google/uuid"
)

// Medicine is a catalog row. Stock is mutated only by the Committer.
type Medicine struct {
	ID                   int     `json:"id" db:"id"`
	Name                 string  `json:"name" db:"name"`
	Price                float64 `json:"price" db:"price"`
	PackageSize          string  `json:"package_size" db:"package_size"`
	Description          string  `json:"description" db:"description"`
	Stock                int     `json:"stock" db:"stock"`
	PrescriptionRequired bool    `json:"prescription_required" db:"prescription_required"`
}

// Order is immutable after creation.
type Order struct {
	ID              uuid.UUID `json:"id" db:"id"`
	PatientID       string    `json:"patient_id" db:"patient_id"`
	ProductName     string    `json:"product_name" db:"product_name"`
	Quantity        int       `json:"quantity" db:"quantity"`
	DosageFrequency float64   `json:"dosage_frequency" db:"dosage_frequency"`
	PurchaseDate    time.Time `json:"purchase_date" db:"purchase_date"`
}

// PendingOrder marks that a user owes a quantity answer before the order
// can proceed. At most one row per patient.
type PendingOrder struct {
	PatientID    string `json:"patient_id" db:"patient_id"`
	MedicineName string `json:"medicine_name" db:"medicine_name"`
}

// RefillAlert is derived from order history by the refill scan.
type RefillAlert struct {
	PatientID      string    `json:"patient_id" db:"patient_id"`
	MedicineName   string    `json:"medicine_name" db:"medicine_name"`
	ExpectedRunOut time.Time `json:"expected_run_out" db:"expected_run_out"`
}

// StockStatus is the outcome of an inventory check.
type StockStatus string

const (
	StockAvailable    StockStatus = "available"
	StockInsufficient StockStatus = "insufficient_stock"
	StockNotFound     StockStatus = "not_found"
)

// StockCheck reports availability for a requested quantity. Available is
// only meaningful for StockInsufficient; MatchedProduct for StockAvailable.
type StockCheck struct {
	Status         StockStatus `json:"status"`
	Available      int         `json:"available,omitempty"`
	MatchedProduct string      `json:"matched_product,omitempty"`
}

// SafetyStatus is the outcome of a policy check.
type SafetyStatus string

const (
	SafetyOK      SafetyStatus = "ok"
	SafetyBlocked SafetyStatus = "blocked"
)

// SafetyCheck carries the policy decision and, when blocked, a
// user-facing explanation.
type SafetyCheck struct {
	Status  SafetyStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// OrderReceipt is the committer's success payload.
type OrderReceipt struct {
	Status  string `json:"status"`
	Product string `json:"product"`
}

// Recommendation is one scored catalog match for a reported symptom.
type Recommendation struct {
	ID     int     `json:"id"`
	Name   string  `json:"name"`
	Price  float64 `json:"price"`
	Stock  int     `json:"stock"`
	Reason string  `json:"reason"`
}
