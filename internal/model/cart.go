package model

type CartItem struct {
	CropID   string  `json:"crop_id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Unit     string  `json:"unit"`
	Quantity int     `json:"quantity"`
}
