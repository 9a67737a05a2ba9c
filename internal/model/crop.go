package model

import "time"

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Crop struct {
	ID             string    `json:"id"`
	FarmerID       string    `json:"farmer_id"`
	Name           string    `json:"name"`
	Type           string    `json:"type"`
	Price          float64   `json:"price"`
	Unit           string    `json:"quantity"` // unit label, e.g. "1 kg"
	Availability   string    `json:"availability"`
	RegionPincodes []string  `json:"region_pincodes"`
	Image          string    `json:"image"`
	Location       Location  `json:"location"`
	CreatedAt      time.Time `json:"created_at"`
}

// DeliversTo reports whether the crop can be delivered to pincode.
// A crop without regions delivers everywhere.
func (c Crop) DeliversTo(pincode string) bool {
	if len(c.RegionPincodes) == 0 {
		return true
	}
	for _, p := range c.RegionPincodes {
		if p == pincode {
			return true
		}
	}
	return false
}
