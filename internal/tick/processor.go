// Package tick implements the Tick Processor (spec.md §4.5): the scheduled
// per-map pass that recalculates profit, applies earnings, decays damage,
// collapses ruined buildings, tracks inactivity, and snapshots statistics.
package tick

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"citytycoon-backend/internal/adjacency"
	gameerrors "citytycoon-backend/internal/errors"
	"citytycoon-backend/internal/hero"
	"citytycoon-backend/internal/logger"
	"citytycoon-backend/internal/model"
	"citytycoon-backend/internal/repository"
)

// decayPerTickFraction and burningDecayPerTickFraction implement spec.md
// §4.5 pass 3: "a small per-tick damage increase proportional to current
// damage" for damaged buildings, and "a higher decay until extinguished"
// for burning ones.
const (
	decayPerTickFraction        = 0.04
	burningDecayPerTickFraction = 0.12
	minDamageIncrement          = 1.0
)

// Processor runs one tick across every active map.
type Processor struct {
	maps      repository.MapRepository
	buildings repository.BuildingRepository
	companies repository.GameCompanyRepository
	security  repository.SecurityRepository
	stats     repository.StatisticsRepository
	ticks     repository.TickRepository
	hero      *hero.Service

	catalog  model.Catalog
	profit   adjacency.Coefficients
	value    adjacency.Coefficients
	interval time.Duration
}

func NewProcessor(
	maps repository.MapRepository,
	buildings repository.BuildingRepository,
	companies repository.GameCompanyRepository,
	security repository.SecurityRepository,
	stats repository.StatisticsRepository,
	ticks repository.TickRepository,
	heroSvc *hero.Service,
	catalog model.Catalog,
	interval time.Duration,
) *Processor {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &Processor{
		maps: maps, buildings: buildings, companies: companies, security: security,
		stats: stats, ticks: ticks, hero: heroSvc, catalog: catalog, interval: interval,
		profit: adjacency.DefaultProfitCoefficients(), value: adjacency.DefaultValueCoefficients(),
	}
}

// tickBoundary derives the tick instant from wall-clock time divided by the
// configured cadence, rather than a bare auto-increment, so invoking Run
// twice within the same cadence window names the same tick instant (spec.md
// §4.6: "a re-run for the same tick instant is a no-op").
func (p *Processor) tickBoundary(now time.Time) int64 {
	return now.UTC().Unix() / int64(p.interval.Seconds())
}

// Run executes one full tick invocation: advances the global tick counter
// to the current tick boundary, then processes every active map in turn
// (spec.md §5: "across maps the work may proceed in parallel" — processed
// sequentially here for simplicity; parallelizing per-map is safe since
// each map takes its own advisory lock and shares no other mutable state).
func (p *Processor) Run() error {
	ctx := context.Background()
	target := p.tickBoundary(time.Now())
	newTick, err := p.ticks.AdvanceTick(ctx, target)
	if err != nil {
		return gameerrors.Internal(err)
	}

	maps, err := p.maps.ListActive(ctx)
	if err != nil {
		return gameerrors.Internal(err)
	}

	for _, m := range maps {
		if err := p.processMap(ctx, m, newTick); err != nil {
			logger.Error("tick processing failed for map", zap.String("map_id", m.ID), zap.Error(err))
			continue // cancellation is between maps only (spec.md §5)
		}
	}
	return nil
}

func (p *Processor) processMap(ctx context.Context, m model.Map, newTick int64) error {
	unlock, err := p.ticks.LockMap(ctx, m.ID)
	if err != nil {
		return err
	}
	defer unlock()

	if err := p.recalculationPass(ctx, m); err != nil {
		return err
	}
	if err := p.earningsPass(ctx, m, newTick); err != nil {
		return err
	}
	if err := p.decayAndCollapsePass(ctx, m, newTick); err != nil {
		return err
	}
	if err := p.inactivityPass(ctx, m); err != nil {
		return err
	}
	// Hero eligibility (pass 6) is computed on demand by hero.Service and
	// unlocks only the player-initiated hero-out action; nothing to persist.
	return p.statisticsPass(ctx, m, newTick)
}

// recalculationPass is spec.md §4.5 pass 1.
func (p *Processor) recalculationPass(ctx context.Context, m model.Map) error {
	dirty, err := p.buildings.ListDirty(ctx, m.ID)
	if err != nil {
		return err
	}
	if len(dirty) == 0 {
		return nil
	}

	tiles, err := p.maps.ListTiles(ctx, m.ID)
	if err != nil {
		return err
	}
	allBuildings, err := p.buildings.ListByMap(ctx, m.ID)
	if err != nil {
		return err
	}

	tileByCoord := make(map[model.Coordinate]model.Tile, len(tiles))
	for _, t := range tiles {
		tileByCoord[t.Coordinate] = t
	}

	for i := range dirty {
		b := dirty[i]
		tile, ok := tileByCoord[b.Coordinate]
		if !ok {
			continue
		}
		result := adjacency.Compute(adjacency.Input{
			Tile: tile, BuildingType: b.TypeID, Variant: b.Variant,
			AllTiles: tiles, AllBuildings: allBuildings, Map: m, Catalog: p.catalog,
			Profit: p.profit, Value: p.value,
			ResaleFloor: b.CalculatedValue, // resale floor: never appraise below current value
		})
		b.CalculatedProfit = result.FinalProfit
		b.CalculatedValue = result.FinalValue
		b.ProfitBreakdown = result.ProfitBreakdown
		b.ValueBreakdown = result.ValueBreakdown
		b.NeedsProfitRecalc = false
		if err := p.buildings.Update(ctx, &b); err != nil {
			return err
		}
	}
	return nil
}

// earningsPass is spec.md §4.5 pass 2. It only reads LastTickApplied to
// decide whether this tick instant already paid out for a building; the
// marker itself is written once, by decayAndCollapsePass, after both passes
// have run for that building — writing it here too would make the decay
// pass's own guard see an already-advanced marker on the very same
// invocation and skip unconditionally.
func (p *Processor) earningsPass(ctx context.Context, m model.Map, newTick int64) error {
	buildings, err := p.buildings.ListByMap(ctx, m.ID)
	if err != nil {
		return err
	}
	taxRate := m.Tier.TaxRate()

	ownerCash := map[string]model.Cents{}
	for i := range buildings {
		b := buildings[i]
		if b.Collapsed || b.LastTickApplied >= newTick {
			continue
		}

		upkeep := model.Cents(0)
		if sec, err := p.security.Get(ctx, b.ID); err == nil && sec != nil {
			upkeep = sec.UpkeepPerTick
		}
		gross := model.Cents(float64(b.CalculatedProfit) * b.EffectiveIncomeFactor())
		net := gross - upkeep
		if net > 0 {
			net -= net.Floor(taxRate)
		}
		ownerCash[b.OwnerCompanyID] += net
	}

	companies, err := p.companies.ListByMap(ctx, m.ID)
	if err != nil {
		return err
	}
	for i := range companies {
		c := companies[i]
		delta, ok := ownerCash[c.ID]
		if !ok {
			continue
		}
		c.Cash += delta
		if err := p.companies.Update(ctx, &c); err != nil {
			return err
		}
	}
	return nil
}

// decayAndCollapsePass implements spec.md §4.5 passes 3 and 4 together: the
// decay pass's damage increase and the collapse pass's 100%-damage
// transition happen on the same row in one write. It gates on
// LastTickApplied exactly like earningsPass, and is the pass that actually
// advances the marker once both have run for this tick instant — calling
// Run again for the same tick instant finds the marker already current and
// skips both passes, satisfying spec.md §4.6's idempotence requirement.
func (p *Processor) decayAndCollapsePass(ctx context.Context, m model.Map, newTick int64) error {
	buildings, err := p.buildings.ListByMap(ctx, m.ID)
	if err != nil {
		return err
	}
	for i := range buildings {
		b := buildings[i]
		if b.Collapsed || b.LastTickApplied >= newTick {
			continue
		}

		if b.DamagePercent > 0 || b.Burning {
			fraction := decayPerTickFraction
			if b.Burning {
				fraction = burningDecayPerTickFraction
			}
			increment := math.Max(b.DamagePercent*fraction, minDamageIncrement)
			b.DamagePercent = math.Min(100, b.DamagePercent+increment)
			if b.DamagePercent >= 100 {
				b.Collapsed = true
			}
		}

		b.LastTickApplied = newTick
		if err := p.buildings.Update(ctx, &b); err != nil {
			return err
		}
	}
	return nil
}

// inactivityPass is spec.md §4.5 pass 5.
func (p *Processor) inactivityPass(ctx context.Context, m model.Map) error {
	companies, err := p.companies.ListByMap(ctx, m.ID)
	if err != nil {
		return err
	}
	for i := range companies {
		c := companies[i]
		c.TicksSinceAction++
		if err := p.companies.Update(ctx, &c); err != nil {
			return err
		}
	}
	return nil
}

// statisticsPass is spec.md §4.5 pass 7.
func (p *Processor) statisticsPass(ctx context.Context, m model.Map, newTick int64) error {
	companies, err := p.companies.ListByMap(ctx, m.ID)
	if err != nil {
		return err
	}
	tiles, err := p.maps.ListTiles(ctx, m.ID)
	if err != nil {
		return err
	}
	buildings, err := p.buildings.ListByMap(ctx, m.ID)
	if err != nil {
		return err
	}

	builtByOwner := map[string]int{}
	ownedByOwner := map[string]int{}
	for _, t := range tiles {
		if t.OwnerID != nil {
			ownedByOwner[*t.OwnerID]++
		}
	}
	for _, b := range buildings {
		if b.Live() {
			builtByOwner[b.OwnerCompanyID]++
		}
	}

	for i := range companies {
		c := companies[i]
		netWorth, err := p.hero.NetWorth(ctx, c.ID, m.ID)
		if err != nil {
			return err
		}
		if err := p.stats.Upsert(ctx, repository.CompanyStatistics{
			CompanyID: c.ID, MapID: m.ID, TickNumber: newTick,
			Cash: c.Cash, NetWorth: netWorth,
			TilesOwned: ownedByOwner[c.ID], BuildingsOwned: builtByOwner[c.ID],
		}); err != nil {
			return err
		}
	}
	return nil
}
