package types

import "time"

// Contract is an electricity contract offered to consumers.
type Contract struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Company         string           `json:"company"`
	PricingModel    PricingModel     `json:"pricingModel"`
	Metering        string           `json:"metering"`
	PriceComponents []PriceComponent `json:"priceComponents"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// Meta returns the contract metadata consumed by the pricing engine.
func (c Contract) Meta() ContractMeta {
	return ContractMeta{
		PricingModel: c.PricingModel,
		Metering:     c.Metering,
	}
}
