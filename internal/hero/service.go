// Package hero implements the Hero & Progression subsystem (spec.md §4.7):
// the post-action level-up check, the hero-out ceremony that unlocks a
// map's next tier, and joining/leaving a map location.
package hero

import (
	"context"
	"time"

	"github.com/google/uuid"

	gameerrors "citytycoon-backend/internal/errors"
	"citytycoon-backend/internal/model"
	"citytycoon-backend/internal/moderation"
	"citytycoon-backend/internal/repository"
)

// levelThresholds is the fixed total-actions threshold table: level N is
// reached once TotalActions ≥ levelThresholds[N-2] (level 1 needs no
// actions). Chosen as a smoothly increasing curve; see DESIGN.md for the
// Open-Question resolution.
var levelThresholds = []int{10, 25, 50, 90, 150, 230, 330, 460, 620}

func levelForActions(totalActions int) int {
	level := 1
	for _, threshold := range levelThresholds {
		if totalActions >= threshold {
			level++
		}
	}
	return level
}

// Service implements level-up checks and the hero-out/join/leave actions.
type Service struct {
	companies repository.GameCompanyRepository
	maps      repository.MapRepository
	buildings repository.BuildingRepository
	stats     repository.StatisticsRepository
	txns      repository.TransactionRepository
	gate      moderation.Gate
}

func NewService(
	companies repository.GameCompanyRepository,
	maps repository.MapRepository,
	buildings repository.BuildingRepository,
	stats repository.StatisticsRepository,
	txns repository.TransactionRepository,
	gate moderation.Gate,
) *Service {
	return &Service{companies: companies, maps: maps, buildings: buildings, stats: stats, txns: txns, gate: gate}
}

// CreateGameCompany provisions a new player-owned GameCompany (spec.md §3:
// "a user owns at most three game companies"; "name and boss name pass
// moderation and are immutable except by a master-admin override"). Name
// fields block on a definitive moderation verdict — they never enter
// pending (spec.md §4.11).
func (s *Service) CreateGameCompany(ctx context.Context, ownerUserID, displayName, bossName string) (*model.GameCompany, error) {
	existing, err := s.companies.ListByOwner(ctx, ownerUserID)
	if err != nil {
		return nil, gameerrors.Internal(err)
	}
	if len(existing) >= model.MaxGameCompaniesPerUser {
		return nil, gameerrors.Precondition("user already owns %d game companies", model.MaxGameCompaniesPerUser)
	}

	if _, err := moderation.Check(ctx, s.gate, moderation.CategoryCompanyName, displayName); err != nil {
		return nil, err
	}
	if _, err := moderation.Check(ctx, s.gate, moderation.CategoryBossName, bossName); err != nil {
		return nil, err
	}

	company := &model.GameCompany{
		ID: uuid.NewString(), OwnerUserID: ownerUserID, DisplayName: displayName, BossName: bossName,
		Level: 1, CreatedAt: time.Now().UTC(),
	}
	if err := s.companies.Create(ctx, company); err != nil {
		return nil, gameerrors.Internal(err)
	}
	return company, nil
}

// CheckLevelUp implements action.LevelChecker: compare total actions
// against the threshold table and persist any level increase.
func (s *Service) CheckLevelUp(ctx context.Context, companyID string) error {
	company, err := s.companies.Get(ctx, companyID)
	if err != nil {
		return gameerrors.NotFound("game_company", companyID)
	}
	newLevel := levelForActions(company.TotalActions)
	if newLevel <= company.Level {
		return nil
	}
	company.Level = newLevel
	return s.companies.Update(ctx, company)
}

// NetWorth sums liquid cash, offshore savings, and the valuation of every
// live building the company owns on mapID.
func (s *Service) NetWorth(ctx context.Context, companyID, mapID string) (model.Cents, error) {
	company, err := s.companies.Get(ctx, companyID)
	if err != nil {
		return 0, gameerrors.NotFound("game_company", companyID)
	}
	buildings, err := s.buildings.ListByOwner(ctx, companyID)
	if err != nil {
		return 0, gameerrors.Internal(err)
	}
	total := company.Cash + company.OffshoreSavings
	for _, b := range buildings {
		if b.Live() && b.MapID == mapID {
			total += b.CalculatedValue
		}
	}
	return total, nil
}

// LandPercent is the fraction of a map's tiles owned by the company.
func (s *Service) LandPercent(ctx context.Context, companyID, mapID string) (float64, error) {
	m, err := s.maps.Get(ctx, mapID)
	if err != nil {
		return 0, gameerrors.NotFound("map", mapID)
	}
	tiles, err := s.maps.ListTiles(ctx, mapID)
	if err != nil {
		return 0, gameerrors.Internal(err)
	}
	owned := 0
	for _, t := range tiles {
		if t.OwnerID != nil && *t.OwnerID == companyID {
			owned++
		}
	}
	total := m.TileCount()
	if total == 0 {
		return 0, nil
	}
	return float64(owned) / float64(total) * 100, nil
}

// HeroOutEligible reports whether company clears all three thresholds of
// spec.md §4.5 pass 6 on mapID.
func (s *Service) HeroOutEligible(ctx context.Context, companyID, mapID string) (bool, error) {
	company, err := s.companies.Get(ctx, companyID)
	if err != nil {
		return false, gameerrors.NotFound("game_company", companyID)
	}
	if company.Imprisoned || company.Inactive() {
		return false, nil
	}
	m, err := s.maps.Get(ctx, mapID)
	if err != nil {
		return false, gameerrors.NotFound("map", mapID)
	}
	netWorth, err := s.NetWorth(ctx, companyID, mapID)
	if err != nil {
		return false, err
	}
	if netWorth < m.HeroThresholds.NetWorth || company.Cash < m.HeroThresholds.Cash {
		return false, nil
	}
	landPct, err := s.LandPercent(ctx, companyID, mapID)
	if err != nil {
		return false, err
	}
	return landPct >= m.HeroThresholds.LandPercent, nil
}

// HeroOut implements spec.md §4.7's hero-out action: on success the company
// unlocks the map tier's successor, recorded both on the company
// (UnlockedTiers) and as a transaction detail.
func (s *Service) HeroOut(ctx context.Context, companyID string) error {
	company, err := s.companies.Get(ctx, companyID)
	if err != nil {
		return gameerrors.NotFound("game_company", companyID)
	}
	if company.MapID == nil {
		return gameerrors.Precondition("company is not on a map")
	}
	if company.Imprisoned {
		return gameerrors.Precondition("company is imprisoned")
	}
	m, err := s.maps.Get(ctx, *company.MapID)
	if err != nil {
		return gameerrors.NotFound("map", *company.MapID)
	}
	nextTier, hasNext := m.Tier.Next()
	if !hasNext {
		return gameerrors.Precondition("map tier %s has no successor to hero out into", m.Tier)
	}
	if company.UnlockedTiers.Has(nextTier) {
		return gameerrors.Precondition("company has already heroed out of %s", m.Tier)
	}
	eligible, err := s.HeroOutEligible(ctx, companyID, *company.MapID)
	if err != nil {
		return err
	}
	if !eligible {
		return gameerrors.Precondition("company does not yet meet all hero-out thresholds")
	}

	company.UnlockedTiers = company.UnlockedTiers.With(nextTier)
	if err := s.companies.Update(ctx, company); err != nil {
		return gameerrors.Internal(err)
	}
	return s.txns.Append(ctx, &model.TransactionRecord{
		ID: uuid.NewString(), Type: model.TxnHeroOut, CompanyID: companyID, MapID: *company.MapID,
		Details: map[string]interface{}{"unlocked_tier": string(nextTier)}, CreatedAt: time.Now().UTC(),
	})
}

// JoinLocation places a company on mapID. The town tier is always joinable;
// city/capital require the corresponding UnlockedTiers bit from a prior
// hero-out (spec.md §4.7: "joining a tier the player has not unlocked
// fails").
func (s *Service) JoinLocation(ctx context.Context, companyID, mapID string) error {
	company, err := s.companies.Get(ctx, companyID)
	if err != nil {
		return gameerrors.NotFound("game_company", companyID)
	}
	if company.MapID != nil {
		return gameerrors.Precondition("company is already on a map, leave it first")
	}
	m, err := s.maps.Get(ctx, mapID)
	if err != nil {
		return gameerrors.NotFound("map", mapID)
	}
	if !m.Active {
		return gameerrors.Precondition("map is not active")
	}
	if m.Tier != model.TierTown && !company.UnlockedTiers.Has(m.Tier) {
		return gameerrors.Precondition("company has not unlocked tier %s", m.Tier)
	}

	company.MapID = &mapID
	company.Cash = m.Tier.StartingCash()
	company.TierJoined = m.Tier
	company.TicksSinceAction = 0
	if err := s.companies.Update(ctx, company); err != nil {
		return gameerrors.Internal(err)
	}
	if err := s.stats.Upsert(ctx, repository.CompanyStatistics{
		CompanyID: companyID, MapID: mapID, Cash: company.Cash, NetWorth: company.Cash,
	}); err != nil {
		return gameerrors.Internal(err)
	}
	return s.txns.Append(ctx, &model.TransactionRecord{
		ID: uuid.NewString(), Type: model.TxnJoinLocation, CompanyID: companyID, MapID: mapID,
		Amount: company.Cash, CreatedAt: time.Now().UTC(),
	})
}

// LeaveLocation forfeits all cash and buildings on the company's current
// map; tile ownership is released and BuildingInstances are deleted
// (spec.md §4.7).
func (s *Service) LeaveLocation(ctx context.Context, companyID string) error {
	company, err := s.companies.Get(ctx, companyID)
	if err != nil {
		return gameerrors.NotFound("game_company", companyID)
	}
	if company.MapID == nil {
		return gameerrors.Precondition("company is not on a map")
	}
	mapID := *company.MapID

	buildings, err := s.buildings.ListByOwner(ctx, companyID)
	if err != nil {
		return gameerrors.Internal(err)
	}
	for _, b := range buildings {
		if b.MapID == mapID {
			if err := s.buildings.Delete(ctx, b.ID); err != nil {
				return gameerrors.Internal(err)
			}
		}
	}

	tiles, err := s.maps.ListTiles(ctx, mapID)
	if err != nil {
		return gameerrors.Internal(err)
	}
	for i := range tiles {
		t := tiles[i]
		if t.OwnerID != nil && *t.OwnerID == companyID {
			t.OwnerID = nil
			if err := s.maps.UpdateTile(ctx, &t); err != nil {
				return gameerrors.Internal(err)
			}
		}
	}

	company.MapID = nil
	company.Cash = 0
	if err := s.companies.Update(ctx, company); err != nil {
		return gameerrors.Internal(err)
	}
	return s.txns.Append(ctx, &model.TransactionRecord{
		ID: uuid.NewString(), Type: model.TxnLeaveLocation, CompanyID: companyID, MapID: mapID,
		CreatedAt: time.Now().UTC(),
	})
}
