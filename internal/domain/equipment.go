package domain

// Equipment is a rentable item as listed by the backend.
type Equipment struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	PricePerDay float64  `json:"pricePerDay"`
	Available   bool     `json:"available"`
	OperatorID  int64    `json:"operatorId"`
	Location    Location `json:"location"`
}

type Location struct {
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
}
