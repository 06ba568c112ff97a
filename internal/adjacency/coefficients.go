package adjacency

import "citytycoon-backend/internal/model"

// BuildingPair keys a synergy/antagonism coefficient between two building
// types. Lookup is symmetric: Coefficients.pairDelta checks both orderings.
type BuildingPair struct {
	A model.BuildingTypeID
	B model.BuildingTypeID
}

// Coefficients is the full configuration table the adjacency engine reads.
// Per spec.md §9 ("Exact numeric coefficients ... are data, not design"),
// this struct is supplied by the caller — sourced from a configuration
// table in production, and from fixed literals in tests — and is never
// hard-coded inside Compute.
type Coefficients struct {
	Pairs                     map[BuildingPair]float64
	SpecialBonus              map[model.SpecialBuilding]float64
	RoadAccessBonus           float64
	DirtTrackAccessBonus      float64
	WaterAmenityBonus         float64
	TreesAmenityBonus         float64
	SameTypeSaturationPenalty float64
}

func (c Coefficients) pairDelta(a, b model.BuildingTypeID) (float64, bool) {
	if d, ok := c.Pairs[BuildingPair{A: a, B: b}]; ok {
		return d, true
	}
	if d, ok := c.Pairs[BuildingPair{A: b, B: a}]; ok {
		return d, true
	}
	return 0, false
}

// DefaultProfitCoefficients is the seed profit-adjacency table.
func DefaultProfitCoefficients() Coefficients {
	return Coefficients{
		Pairs: map[BuildingPair]float64{
			// hospitality near entertainment is synergistic
			{A: model.BuildingMotel, B: model.BuildingRestaurant}:  40,
			{A: model.BuildingMotel, B: model.BuildingCasino}:      90,
			{A: model.BuildingMotel, B: model.BuildingCampsite}:    15,
			{A: model.BuildingRestaurant, B: model.BuildingCasino}: 60,
			{A: model.BuildingShop, B: model.BuildingHighStreet}:   25,
			// industrial-feeling stalls near manors are antagonistic
			{A: model.BuildingManor, B: model.BuildingMarketStall}: -50,
			{A: model.BuildingManor, B: model.BuildingHotDogStand}: -30,
		},
		SpecialBonus: map[model.SpecialBuilding]float64{
			model.SpecialTemple:        50,
			model.SpecialBank:          35,
			model.SpecialPoliceStation: 20,
			model.SpecialCasino:        70,
		},
		RoadAccessBonus:           25,
		DirtTrackAccessBonus:      10,
		WaterAmenityBonus:         15,
		TreesAmenityBonus:         10,
		SameTypeSaturationPenalty: -20,
	}
}

// DefaultValueCoefficients is the seed valuation-adjacency table — the
// "different coefficients" spec.md §4.1 step 4 calls for, scaled up since
// valuation responds more to neighborhood desirability than raw profit.
func DefaultValueCoefficients() Coefficients {
	return Coefficients{
		Pairs: map[BuildingPair]float64{
			{A: model.BuildingMotel, B: model.BuildingRestaurant}:  80,
			{A: model.BuildingMotel, B: model.BuildingCasino}:      180,
			{A: model.BuildingMotel, B: model.BuildingCampsite}:    30,
			{A: model.BuildingRestaurant, B: model.BuildingCasino}: 120,
			{A: model.BuildingShop, B: model.BuildingHighStreet}:   50,
			{A: model.BuildingManor, B: model.BuildingMarketStall}: -100,
			{A: model.BuildingManor, B: model.BuildingHotDogStand}: -60,
		},
		SpecialBonus: map[model.SpecialBuilding]float64{
			model.SpecialTemple:        150,
			model.SpecialBank:          200,
			model.SpecialPoliceStation: 60,
			model.SpecialCasino:        250,
		},
		RoadAccessBonus:           80,
		DirtTrackAccessBonus:      30,
		WaterAmenityBonus:         100,
		TreesAmenityBonus:         40,
		SameTypeSaturationPenalty: -40,
	}
}
