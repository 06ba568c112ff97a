package action

import "citytycoon-backend/internal/model"

// landTerrainFactor scales the base per-tier land cost by the tile's
// terrain, reflecting how much clearing/access work it needs before it can
// be built on (spec.md §4.3 Buy Land: "a terrain factor").
func landTerrainFactor(t model.Terrain) float64 {
	switch t {
	case model.TerrainFreeLand:
		return 1.0
	case model.TerrainDirtTrack:
		return 0.85 // already has access
	case model.TerrainTrees:
		return 1.15 // needs clearing
	default:
		return 1.0
	}
}

// baseLandCost is the per-tier starting price before the terrain factor and
// streak discount are applied.
func baseLandCost(tier model.Tier) model.Cents {
	switch tier {
	case model.TierTown:
		return 2_000_00
	case model.TierCity:
		return 20_000_00
	case model.TierCapital:
		return 80_000_00
	default:
		return 2_000_00
	}
}

// maxStreakDiscountPercent and streakDiscountStep implement the "small
// streak discount as land-ownership streak rises" rule: 1% off per
// consecutive successful buy, capped at 20%.
const (
	streakDiscountStep       = 1.0
	maxStreakDiscountPercent = 20.0
)

// LandCost computes the Buy Land price for a tile of terrain t on a map of
// tier, given the buyer's current land-ownership streak.
func LandCost(tier model.Tier, terrain model.Terrain, streak int) model.Cents {
	discount := float64(streak) * streakDiscountStep
	if discount > maxStreakDiscountPercent {
		discount = maxStreakDiscountPercent
	}
	base := float64(baseLandCost(tier)) * landTerrainFactor(terrain)
	return model.Cents(base * (1.0 - discount/100.0))
}

// StatePriceFraction is the fixed fraction of current value a Sell-to-State
// liquidation pays out (spec.md §4.3: "a fixed fraction of current value").
const StatePriceFraction = 0.6

// StateSalePrice is the payout for liquidating a building or bare tile to
// the state.
func StateSalePrice(currentValue model.Cents) model.Cents {
	return model.Cents(float64(currentValue) * StatePriceFraction)
}

// TakeoverCost is the formula-driven price for seizing an inactive or
// heavily-damaged building (spec.md §4.3 Takeover). TakeoverCooldownTicks
// is the takeover cooldown length; Takeover does not read it, so no
// cooldown between takeovers is enforced.
const TakeoverCooldownTicks = 144 // ~1 day at a 10-minute tick cadence

func TakeoverCost(currentValue model.Cents) model.Cents {
	return model.Cents(float64(currentValue) * 0.5)
}

// DamageTakeoverThreshold is the damage percent above which a building
// becomes takeover-eligible regardless of owner activity.
const DamageTakeoverThreshold = 70.0
