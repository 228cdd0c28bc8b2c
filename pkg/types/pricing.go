package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// ComponentType identifies what a priced line item of a tariff charges for.
type ComponentType string

const (
	ComponentTypeMonthly           ComponentType = "Monthly"
	ComponentTypeGeneral           ComponentType = "General"
	ComponentTypeDayTime           ComponentType = "DayTime"
	ComponentTypeNightTime         ComponentType = "NightTime"
	ComponentTypeSeasonalWinterDay ComponentType = "SeasonalWinterDay"
	ComponentTypeSeasonalOther     ComponentType = "SeasonalOther"
)

// ComponentTypes lists the recognised component types in canonical order.
var ComponentTypes = []ComponentType{
	ComponentTypeMonthly,
	ComponentTypeGeneral,
	ComponentTypeDayTime,
	ComponentTypeNightTime,
	ComponentTypeSeasonalWinterDay,
	ComponentTypeSeasonalOther,
}

// Known returns true if the component type is one of the recognised types.
func (c ComponentType) Known() bool {
	for _, t := range ComponentTypes {
		if t == c {
			return true
		}
	}
	return false
}

// PriceComponent is a single priced line item of a tariff.
type PriceComponent struct {
	ComponentType ComponentType `json:"componentType"`
	// Price is in cents per kWh for energy types and in euros per month for
	// ComponentTypeMonthly.
	Price decimal.Decimal `json:"price"`
	// PricedAt is when this price became effective. Only used when picking the
	// latest row per type, zero if unknown.
	PricedAt time.Time `json:"pricedAt,omitzero"`
}

// MeteringType describes how a tariff prices energy across time.
type MeteringType string

const (
	MeteringTypeGeneral MeteringType = "General"
	MeteringTypeTime    MeteringType = "Time"
	MeteringTypeSeason  MeteringType = "Season"
)

// PricingModel is the commercial model of a contract, e.g. fixed or spot.
type PricingModel string

const (
	PricingModelSpot  PricingModel = "Spot"
	PricingModelFixed PricingModel = "FixedPrice"
)

// ContractMeta is informational metadata about a contract. Metering is not
// trusted by the pricing engine, it is derived from the non-zero rates.
type ContractMeta struct {
	PricingModel PricingModel `json:"pricingModel"`
	Metering     string       `json:"metering"`
}

// UsageCategory is one of the named parts of a household's annual usage.
type UsageCategory string

const (
	UsageCategoryBasicLiving               UsageCategory = "basicLiving"
	UsageCategoryBathroomUnderfloorHeating UsageCategory = "bathroomUnderfloorHeating"
	UsageCategoryWater                     UsageCategory = "water"
	UsageCategorySauna                     UsageCategory = "sauna"
	UsageCategoryElectricityVehicle        UsageCategory = "electricityVehicle"
	UsageCategoryCooling                   UsageCategory = "cooling"
	UsageCategoryRoomHeating               UsageCategory = "roomHeating"
)

// EnergyUsage is a household's annual electricity use in kWh broken into
// categories.
type EnergyUsage struct {
	Total                     float64 `json:"total"`
	BasicLiving               float64 `json:"basicLiving"`
	BathroomUnderfloorHeating float64 `json:"bathroomUnderfloorHeating"`
	Water                     float64 `json:"water"`
	Sauna                     float64 `json:"sauna"`
	ElectricityVehicle        float64 `json:"electricityVehicle"`
	Cooling                   float64 `json:"cooling"`
	RoomHeating               float64 `json:"roomHeating"`

	// HeatingElectricityUseByMonth overrides the even monthly split of
	// RoomHeating. When set it must contain exactly 12 values, January first.
	HeatingElectricityUseByMonth []float64 `json:"heatingElectricityUseByMonth,omitempty"`
}

// Category returns the annual kWh of the given category.
func (u EnergyUsage) Category(c UsageCategory) float64 {
	switch c {
	case UsageCategoryBasicLiving:
		return u.BasicLiving
	case UsageCategoryBathroomUnderfloorHeating:
		return u.BathroomUnderfloorHeating
	case UsageCategoryWater:
		return u.Water
	case UsageCategorySauna:
		return u.Sauna
	case UsageCategoryElectricityVehicle:
		return u.ElectricityVehicle
	case UsageCategoryCooling:
		return u.Cooling
	case UsageCategoryRoomHeating:
		return u.RoomHeating
	default:
		return 0
	}
}

// CategoryTotal sums all the categories, ignoring Total.
func (u EnergyUsage) CategoryTotal() float64 {
	return u.BasicLiving +
		u.BathroomUnderfloorHeating +
		u.Water +
		u.Sauna +
		u.ElectricityVehicle +
		u.Cooling +
		u.RoomHeating
}

// ContractPricingResult is the annual and monthly cost of a contract for a
// given usage. Optional fields are only set when the matching rate was used.
type ContractPricingResult struct {
	TotalCost       float64      `json:"totalCost"`
	AvgMonthlyCost  float64      `json:"avgMonthlyCost"`
	MonthlyCosts    [12]float64  `json:"monthlyCosts"`
	MonthlyFixedFee float64      `json:"monthlyFixedFee"`
	MeteringType    MeteringType `json:"meteringType,omitempty"`

	SpotPriceMargin           *float64 `json:"spotPriceMargin,omitempty"`
	GeneralKwhPrice           *float64 `json:"generalKwhPrice,omitempty"`
	SeasonalWinterDayKwhPrice *float64 `json:"seasonalWinterDayKwhPrice,omitempty"`
	SeasonalOtherKwhPrice     *float64 `json:"seasonalOtherKwhPrice,omitempty"`
	DaytimeKwhPrice           *float64 `json:"daytimeKwhPrice,omitempty"`
	NighttimeKwhPrice         *float64 `json:"nighttimeKwhPrice,omitempty"`
	SpotPriceDayAvg           *float64 `json:"spotPriceDayAvg,omitempty"`
	SpotPriceNightAvg         *float64 `json:"spotPriceNightAvg,omitempty"`

	IsSpotContract bool `json:"isSpotContract"`
}
