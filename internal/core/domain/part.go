package domain

// Part is a persisted inventory row. Quantity is never negative.
type Part struct {
	ID           int64  `json:"id"`
	Manufacturer string `json:"manufacturer"`
	Part         string `json:"part"`
	Model        string `json:"model"`
	Quantity     int    `json:"quantity"`
}

// PartKey is the natural key used for lookups.
type PartKey struct {
	Manufacturer string
	Part         string
	Model        string
}

func (p Part) Key() PartKey {
	return PartKey{Manufacturer: p.Manufacturer, Part: p.Part, Model: p.Model}
}
