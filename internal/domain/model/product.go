package model

// Product describes a configurable print product. Departments holds the
// configured production sequence; it is the source of truth for which
// production stages an order passes through.
type Product struct {
	ID          int64
	Name        string
	Departments []string
	UnitPrice   float64
}
