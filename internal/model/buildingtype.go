package model

// BuildingTypeID names a catalog entry.
type BuildingTypeID string

const (
	BuildingMarketStall    BuildingTypeID = "market_stall"
	BuildingHotDogStand    BuildingTypeID = "hot_dog_stand"
	BuildingCampsite       BuildingTypeID = "campsite"
	BuildingShop           BuildingTypeID = "shop"
	BuildingBurgerBar      BuildingTypeID = "burger_bar"
	BuildingMotel          BuildingTypeID = "motel"
	BuildingHighStreet     BuildingTypeID = "high_street_store"
	BuildingRestaurant     BuildingTypeID = "restaurant"
	BuildingManor          BuildingTypeID = "manor"
	BuildingCasino         BuildingTypeID = "casino"
	BuildingTemple         BuildingTypeID = "temple"
	BuildingBank           BuildingTypeID = "bank"
	BuildingPoliceStation  BuildingTypeID = "police_station"

	// Visual-only: never constructible, never priced.
	BuildingDemolished BuildingTypeID = "demolished"
	BuildingClaimStake BuildingTypeID = "claim_stake"
)

// VisualClass sizes a building type's sprite on the frontend dashboard; the
// engine never interprets it.
type VisualClass string

const (
	VisualSmall  VisualClass = "small"
	VisualMedium VisualClass = "medium"
	VisualLarge  VisualClass = "large"
)

// BuildingType is a static catalog entry (spec.md §3). The catalog itself
// (coefficients, costs) is sourced from configuration per the Open
// Question in spec.md §9 — DefaultCatalog below is the fallback table used
// when no override is supplied, analogous to a seeded configuration row.
type BuildingType struct {
	ID              BuildingTypeID
	BaseCost        Cents
	BaseProfit      Cents
	LevelRequired   int
	Variants        []string // empty if the type has no variants
	MaxPerMap       int      // 0 means unlicensed (no cap)
	VisualClass     VisualClass
	VisualOnly      bool
}

// Licensed reports whether construction of this type is capped per map.
func (b BuildingType) Licensed() bool { return b.MaxPerMap > 0 }

// HasVariant reports whether name is one of the type's declared variants.
func (b BuildingType) HasVariant(name string) bool {
	for _, v := range b.Variants {
		if v == name {
			return true
		}
	}
	return false
}

// Catalog is a lookup of building types by ID, the shape callers pass
// around instead of a global map (spec.md §9: "no ambient state").
type Catalog map[BuildingTypeID]BuildingType

// DefaultCatalog returns the seed catalog used by tests and by a fresh
// deployment before the product owner supplies overrides.
func DefaultCatalog() Catalog {
	entries := []BuildingType{
		{ID: BuildingMarketStall, BaseCost: 1_000_00, BaseProfit: 100, LevelRequired: 1, VisualClass: VisualSmall},
		{ID: BuildingHotDogStand, BaseCost: 5_000_00, BaseProfit: 300, LevelRequired: 1, VisualClass: VisualSmall},
		{ID: BuildingCampsite, BaseCost: 8_000_00, BaseProfit: 400, LevelRequired: 2, VisualClass: VisualSmall},
		{ID: BuildingShop, BaseCost: 15_000_00, BaseProfit: 700, LevelRequired: 2, VisualClass: VisualMedium},
		{ID: BuildingBurgerBar, BaseCost: 25_000_00, BaseProfit: 1_100, LevelRequired: 3, VisualClass: VisualMedium},
		{ID: BuildingMotel, BaseCost: 60_000_00, BaseProfit: 2_200, LevelRequired: 4, VisualClass: VisualMedium},
		{ID: BuildingHighStreet, BaseCost: 120_000_00, BaseProfit: 4_000, LevelRequired: 5, VisualClass: VisualLarge},
		{ID: BuildingRestaurant, BaseCost: 200_000_00, BaseProfit: 6_500, LevelRequired: 6,
			Variants: []string{"italian", "steakhouse", "seafood"}, VisualClass: VisualLarge},
		{ID: BuildingManor, BaseCost: 500_000_00, BaseProfit: 12_000, LevelRequired: 8, VisualClass: VisualLarge},
		{ID: BuildingCasino, BaseCost: 1_000_000_00, BaseProfit: 25_000, LevelRequired: 10, MaxPerMap: 1, VisualClass: VisualLarge},
		{ID: BuildingTemple, VisualOnly: true, VisualClass: VisualMedium, MaxPerMap: 1},
		{ID: BuildingBank, VisualOnly: true, VisualClass: VisualMedium, MaxPerMap: 1},
		{ID: BuildingPoliceStation, VisualOnly: true, VisualClass: VisualMedium, MaxPerMap: 1},
		{ID: BuildingDemolished, VisualOnly: true, VisualClass: VisualSmall},
		{ID: BuildingClaimStake, VisualOnly: true, VisualClass: VisualSmall},
	}
	c := make(Catalog, len(entries))
	for _, e := range entries {
		c[e.ID] = e
	}
	return c
}
