// Package usage has built-in household consumption presets used when a caller
// does not know its own usage breakdown.
package usage

import (
	"errors"
	"fmt"
	"sort"

	"github.com/sahkovertailu/sahkovertailu/pkg/types"
)

// ErrUnknownProfile is returned by Profile for a name that has no preset.
var ErrUnknownProfile = errors.New("unknown usage profile")

const (
	ProfileApartment              = "apartment"
	ProfileApartmentSauna         = "apartment_sauna"
	ProfileRowHouse               = "rowhouse"
	ProfileHouseDistrictHeating   = "house_district_heating"
	ProfileHouseElectricHeating   = "house_electric_heating"
	ProfileHouseElectricHeatingEV = "house_electric_heating_ev"
)

// Preset is a named household with its annual usage.
type Preset struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Usage       types.EnergyUsage `json:"usage"`
}

var presets = map[string]Preset{
	ProfileApartment: {
		Name:        ProfileApartment,
		Description: "Apartment of two people, no sauna",
		Usage: types.EnergyUsage{
			BasicLiving: 1800,
		},
	},
	ProfileApartmentSauna: {
		Name:        ProfileApartmentSauna,
		Description: "Apartment of two people with an electric sauna",
		Usage: types.EnergyUsage{
			BasicLiving: 1800,
			Sauna:       600,
		},
	},
	ProfileRowHouse: {
		Name:        ProfileRowHouse,
		Description: "Row house of three people with sauna and bathroom floor heating",
		Usage: types.EnergyUsage{
			BasicLiving:               2500,
			BathroomUnderfloorHeating: 800,
			Sauna:                     900,
		},
	},
	ProfileHouseDistrictHeating: {
		Name:        ProfileHouseDistrictHeating,
		Description: "Detached house of four people with district heating",
		Usage: types.EnergyUsage{
			BasicLiving:               3500,
			BathroomUnderfloorHeating: 1000,
			Sauna:                     1200,
			Cooling:                   300,
		},
	},
	ProfileHouseElectricHeating: {
		Name:        ProfileHouseElectricHeating,
		Description: "Detached house of four people with direct electric heating",
		Usage: types.EnergyUsage{
			BasicLiving:               3500,
			BathroomUnderfloorHeating: 1000,
			Water:                     3000,
			Sauna:                     1200,
			RoomHeating:               12000,
		},
	},
	ProfileHouseElectricHeatingEV: {
		Name:        ProfileHouseElectricHeatingEV,
		Description: "Detached house of four people with direct electric heating and an electric car",
		Usage: types.EnergyUsage{
			BasicLiving:               3500,
			BathroomUnderfloorHeating: 1000,
			Water:                     3000,
			Sauna:                     1200,
			ElectricityVehicle:        2500,
			RoomHeating:               12000,
		},
	},
}

// Profile returns the preset with the given name. Presets with room heating
// also get a monthly heating profile so the winter peak is priced correctly.
func Profile(name string) (Preset, error) {
	p, ok := presets[name]
	if !ok {
		return Preset{}, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}
	return p.withDerived(), nil
}

// Profiles returns every preset sorted by total usage.
func Profiles() []Preset {
	out := make([]Preset, 0, len(presets))
	for _, p := range presets {
		out = append(out, p.withDerived())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Usage.Total != out[j].Usage.Total {
			return out[i].Usage.Total < out[j].Usage.Total
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func (p Preset) withDerived() Preset {
	p.Usage.Total = p.Usage.CategoryTotal()
	if p.Usage.RoomHeating > 0 {
		p.Usage.HeatingElectricityUseByMonth = HeatingByMonth(p.Usage.RoomHeating)
	}
	return p
}
