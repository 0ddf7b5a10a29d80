package domain

// InventoryDiscrepancy is reported when a product's available counter does not
// match its total minus the quantity held by outstanding rentals.
type InventoryDiscrepancy struct {
	ProductID         string `json:"product_id"`
	ProductName       string `json:"product_name"`
	QuantityTotal     int    `json:"quantity_total"`
	QuantityAvailable int    `json:"quantity_available"`
	Outstanding       int    `json:"outstanding"`
	Expected          int    `json:"expected"`
}

// Drift is the signed difference between the recorded and expected counters.
func (d InventoryDiscrepancy) Drift() int {
	return d.QuantityAvailable - d.Expected
}

// InventoryReport summarizes one reconciliation pass.
type InventoryReport struct {
	ProductsChecked int                    `json:"products_checked"`
	Discrepancies   []InventoryDiscrepancy `json:"discrepancies"`
}
