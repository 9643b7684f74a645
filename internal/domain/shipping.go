package domain

import "time"

type ShippingQuote struct {
	DestinationCode   string    `json:"destination_code"`
	Charge            int64     `json:"charge"`
	DeliveryDays      int       `json:"delivery_days"`
	EstimatedDelivery time.Time `json:"estimated_delivery"`
}

type Address struct {
	FullName   string `json:"full_name"`
	Phone      string `json:"phone"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
}

// MissingFields lists the mandatory address fields that are blank.
func (a Address) MissingFields() []string {
	var missing []string
	required := []struct {
		name  string
		value string
	}{
		{"full_name", a.FullName},
		{"phone", a.Phone},
		{"line1", a.Line1},
		{"city", a.City},
		{"state", a.State},
		{"postal_code", a.PostalCode},
	}
	for _, f := range required {
		if isBlank(f.value) {
			missing = append(missing, f.name)
		}
	}
	return missing
}
