package model

// Product is one row of the stock table. CurrentStock may go negative on
// oversells; the register records the sale as-is and the shortfall shows up
// on the inventory screen.
type Product struct {
	ID           uint64
	Name         string
	SalePrice    float64
	CurrentStock int
	InitialStock int
	ImageURL     *string
}
