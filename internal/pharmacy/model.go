package pharmacy

import "time"

// Medication is a catalogue row with branch-local stock.
type Medication struct {
	ID         int64     `json:"id"`
	BranchID   int64     `json:"branch_id"`
	SKU        string    `json:"sku"`
	Name       string    `json:"name"`
	Unit       string    `json:"unit"`
	PriceCents int64     `json:"price_cents"`
	Stock      int       `json:"stock"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Sale is a point-of-sale bill.
type Sale struct {
	ID         int64      `json:"id"`
	BranchID   int64      `json:"branch_id"`
	CashierID  int64      `json:"cashier_id"`
	PatientID  *int64     `json:"patient_id,omitempty"`
	TotalCents int64      `json:"total_cents"`
	Total      string     `json:"total"`
	Items      []SaleItem `json:"items"`
	CreatedAt  time.Time  `json:"created_at"`
}

// SaleItem is one line on a bill. Unit price is captured at sale time so
// later catalogue edits never rewrite history.
type SaleItem struct {
	ID           int64  `json:"id"`
	SaleID       int64  `json:"sale_id"`
	MedicationID int64  `json:"medication_id"`
	Name         string `json:"name"`
	Quantity     int    `json:"quantity"`
	UnitCents    int64  `json:"unit_cents"`
	LineCents    int64  `json:"line_cents"`
}
