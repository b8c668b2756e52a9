package model

// Patient is the identity slice of the patient service's representation.
type Patient struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// FullName returns the display name snapshotted onto orders.
func (p Patient) FullName() string {
	return p.FirstName + " " + p.LastName
}

// LabTest is the catalog service's representation of a lab test, carrying
// the authoritative price and the denormalized lab attributes copied onto
// cart items.
type LabTest struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	LabID      int64   `json:"lab_id"`
	LabName    string  `json:"lab_name"`
	LabAddress string  `json:"lab_address"`
	Category   string  `json:"category"`
}
