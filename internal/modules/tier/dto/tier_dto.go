package dto

import "time"

type TierResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Order     int    `json:"order"`
	ColorCode string `json:"color_code,omitempty"`
	ColorName string `json:"color_name,omitempty"`
}

type ConstantResponse struct {
	Kind        string    `json:"kind"`
	Type        string    `json:"type"` // X (translation) or Y (writing)
	Value       float64   `json:"value"`
	Description string    `json:"description"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ConstantsResponse struct {
	Constants     []ConstantResponse `json:"constants"`
	MajorTiers    []TierResponse     `json:"major_tiers"`
	SubMajorTiers []TierResponse     `json:"sub_major_tiers"`
	MinorTiers    []TierResponse     `json:"minor_tiers"`
}

type UpdateConstantRequest struct {
	Value       float64 `json:"value" validate:"gt=0"`
	Description string  `json:"description" validate:"max=500"`
}
