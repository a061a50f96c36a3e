package receipt

// Receipt is a validated receipt record. Records are immutable once stored;
// correcting one means deleting it and adding a new one.
type Receipt struct {
	ID       string  `json:"id"`
	Vendor   string  `json:"vendor"`
	Amount   float64 `json:"amount"`
	Tax      float64 `json:"tax"`
	Currency string  `json:"currency"`
	Category string  `json:"category"`
	Date     string  `json:"date"` // YYYY-MM-DD, kept as an opaque string
	ImageURL string  `json:"imageUrl,omitempty"`
}
