package entity

// Listing one apartment returned by the external search API. Only the
// fields rendered in chat cards are modeled; the rest of the upstream
// payload is ignored.
type Listing struct {
	ID        int      `json:"id"`
	Title     string   `json:"title"`
	Price     int      `json:"price"`
	Address   string   `json:"address"`
	AreaTotal float64  `json:"area_total"`
	Rooms     int      `json:"rooms"`
	URL       string   `json:"url"`
	Photos    []string `json:"photos"`
}
