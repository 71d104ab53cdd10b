package pharmacy

// MedicationForm creates or updates a catalogue entry.
type MedicationForm struct {
	SKU        string `json:"sku" validate:"required,min=2"`
	Name       string `json:"name" validate:"required,min=2"`
	Unit       string `json:"unit" validate:"required"`
	PriceCents int64  `json:"price_cents" validate:"required,gt=0"`
	Stock      int    `json:"stock" validate:"gte=0"`
}

// SaleForm is the point-of-sale payload.
type SaleForm struct {
	PatientID *int64         `json:"patient_id" validate:"omitempty,gt=0"`
	Items     []SaleItemForm `json:"items" validate:"required,min=1,dive"`
}

// SaleItemForm is one requested line.
type SaleItemForm struct {
	MedicationID int64 `json:"medication_id" validate:"required,gt=0"`
	Quantity     int   `json:"quantity" validate:"required,gt=0"`
}

// ListFilters narrows the catalogue listing.
type ListFilters struct {
	Page   int
	Limit  int
	Search string
}
