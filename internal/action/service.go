// Package action implements the Action Layer (spec.md §4.3): every
// player-initiated economic operation, each executed as load → validate →
// mutate → append transaction record, with a dirty-mark where tile
// occupancy changed. Buy land, build, sell to state, buy property, takeover
// and purchase security mutate through the atomic-operation framework in
// internal/transaction; list for sale, cancel listing, demolish and remove
// security write through the repositories directly. The post-action level
// check runs after buy land, build, sell to state, buy property and
// takeover; the listing, demolish and security operations do not run it.
package action

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"citytycoon-backend/internal/dirty"
	gameerrors "citytycoon-backend/internal/errors"
	"citytycoon-backend/internal/model"
	"citytycoon-backend/internal/repository"
	"citytycoon-backend/internal/transaction"
)

// LevelChecker is the post-action hook of spec.md §4.3(f) / §4.7,
// implemented by internal/hero. Declared here (not imported from hero) so
// hero can depend on this package's types without an import cycle.
type LevelChecker interface {
	CheckLevelUp(ctx context.Context, companyID string) error
}

// Service implements every Action-Layer operation.
type Service struct {
	companies repository.GameCompanyRepository
	maps      repository.MapRepository
	buildings repository.BuildingRepository
	security  repository.SecurityRepository
	market    repository.MarketRepository
	txns      repository.TransactionRepository

	tracker *dirty.Tracker
	levels  LevelChecker
	manager *transaction.Manager

	catalog         model.Catalog
	securityCatalog model.SecurityCatalog
}

func NewService(
	companies repository.GameCompanyRepository,
	maps repository.MapRepository,
	buildings repository.BuildingRepository,
	security repository.SecurityRepository,
	market repository.MarketRepository,
	txns repository.TransactionRepository,
	tracker *dirty.Tracker,
	levels LevelChecker,
	catalog model.Catalog,
	securityCatalog model.SecurityCatalog,
) *Service {
	return &Service{
		companies: companies, maps: maps, buildings: buildings, security: security,
		market: market, txns: txns, tracker: tracker, levels: levels,
		manager: transaction.NewManager(), catalog: catalog, securityCatalog: securityCatalog,
	}
}

func (s *Service) recordTransaction(ctx context.Context, typ model.TransactionType, companyID, mapID string, tileCoord *model.Coordinate, buildingID *string, amount model.Cents, details map[string]interface{}) error {
	var tileID *string
	if tileCoord != nil {
		id := fmt.Sprintf("%d,%d", tileCoord.X, tileCoord.Y)
		tileID = &id
	}
	return s.txns.Append(ctx, &model.TransactionRecord{
		ID: uuid.NewString(), Type: typ, CompanyID: companyID, MapID: mapID,
		TargetTileID: tileID, TargetBuildingID: buildingID, Amount: amount,
		Details: details, CreatedAt: time.Now().UTC(),
	})
}

func (s *Service) afterAction(ctx context.Context, companyID string) {
	if err := s.levels.CheckLevelUp(ctx, companyID); err != nil {
		// Level-up is best-effort follow-up, not a precondition of the
		// action that triggered it; the action has already committed.
		_ = err
	}
}

// BuyLand implements spec.md §4.3 Buy Land.
func (s *Service) BuyLand(ctx context.Context, companyID string, coord model.Coordinate) (*model.Tile, error) {
	company, err := s.companies.Get(ctx, companyID)
	if err != nil {
		return nil, gameerrors.NotFound("game_company", companyID)
	}
	if company.Imprisoned {
		return nil, gameerrors.Precondition("company is imprisoned")
	}
	if company.MapID == nil {
		return nil, gameerrors.Precondition("company is not on a map")
	}
	m, err := s.maps.Get(ctx, *company.MapID)
	if err != nil {
		return nil, gameerrors.NotFound("map", *company.MapID)
	}
	tile, err := s.maps.GetTile(ctx, m.ID, coord)
	if err != nil {
		return nil, gameerrors.NotFound("tile", "")
	}
	if tile.OwnerID != nil {
		return nil, gameerrors.Precondition("tile is already owned")
	}
	if !tile.Terrain.Buyable() {
		return nil, gameerrors.Precondition("terrain %s is not buyable", tile.Terrain)
	}
	if tile.Special != nil {
		return nil, gameerrors.Precondition("tile carries a special building")
	}

	unbuilt, err := s.countUnbuiltTiles(ctx, m.ID, companyID)
	if err != nil {
		return nil, gameerrors.Internal(err)
	}
	if unbuilt >= model.MaxUnbuiltTilesPerMap {
		return nil, gameerrors.Precondition("company already owns %d unbuilt tiles", model.MaxUnbuiltTilesPerMap)
	}

	cost := LandCost(m.Tier, tile.Terrain, company.LandOwnershipStreak)
	if company.Cash < cost {
		return nil, gameerrors.Precondition("insufficient cash: need %d, have %d", cost, company.Cash)
	}

	err = s.manager.ExecuteAtomic(ctx, func(tx *transaction.Transaction) error {
		tx.AddOperation(&step{
			name: "debit_cash_and_own_tile",
			execute: func(ctx context.Context) error {
				company.Cash -= cost
				company.TotalActions++
				company.TicksSinceAction = 0
				company.LandOwnershipStreak++
				if err := s.companies.Update(ctx, company); err != nil {
					return err
				}
				owner := companyID
				tile.OwnerID = &owner
				return s.maps.UpdateTile(ctx, tile)
			},
			rollback: func(ctx context.Context) error {
				company.Cash += cost
				tile.OwnerID = nil
				_ = s.maps.UpdateTile(ctx, tile)
				return nil
			},
		})
		return nil
	})
	if err != nil {
		return nil, gameerrors.Internal(err)
	}

	if err := s.recordTransaction(ctx, model.TxnBuyLand, companyID, m.ID, &coord, nil, -cost, nil); err != nil {
		return nil, gameerrors.Internal(err)
	}
	s.afterAction(ctx, companyID)
	return tile, nil
}

func (s *Service) countUnbuiltTiles(ctx context.Context, mapID, companyID string) (int, error) {
	tiles, err := s.maps.ListTiles(ctx, mapID)
	if err != nil {
		return 0, err
	}
	buildings, err := s.buildings.ListByOwner(ctx, companyID)
	if err != nil {
		return 0, err
	}
	built := map[model.Coordinate]bool{}
	for _, b := range buildings {
		if b.Live() {
			built[b.Coordinate] = true
		}
	}
	count := 0
	for _, t := range tiles {
		if t.OwnerID != nil && *t.OwnerID == companyID && !built[t.Coordinate] {
			count++
		}
	}
	return count, nil
}

// Build implements spec.md §4.3 Build.
func (s *Service) Build(ctx context.Context, companyID string, coord model.Coordinate, typeID model.BuildingTypeID, variant *string) (*model.BuildingInstance, error) {
	company, err := s.companies.Get(ctx, companyID)
	if err != nil {
		return nil, gameerrors.NotFound("game_company", companyID)
	}
	if company.Imprisoned {
		return nil, gameerrors.Precondition("company is imprisoned")
	}
	if company.MapID == nil {
		return nil, gameerrors.Precondition("company is not on a map")
	}
	m, err := s.maps.Get(ctx, *company.MapID)
	if err != nil {
		return nil, gameerrors.NotFound("map", *company.MapID)
	}
	tile, err := s.maps.GetTile(ctx, m.ID, coord)
	if err != nil {
		return nil, gameerrors.NotFound("tile", "")
	}
	if tile.OwnerID == nil || *tile.OwnerID != companyID {
		return nil, gameerrors.Precondition("company does not own this tile")
	}
	if existing, err := s.buildings.GetByTile(ctx, m.ID, coord); err == nil && existing != nil && existing.Live() {
		return nil, gameerrors.Precondition("tile already has a live building")
	}

	bt, ok := s.catalog[typeID]
	if !ok {
		return nil, gameerrors.Precondition("unknown building type %s", typeID)
	}
	if bt.VisualOnly {
		return nil, gameerrors.Precondition("building type %s is not constructible", typeID)
	}
	if company.Level < bt.LevelRequired {
		return nil, gameerrors.Precondition("level %d required, company is level %d", bt.LevelRequired, company.Level)
	}
	if bt.Licensed() {
		count, err := s.buildings.CountByType(ctx, m.ID, typeID)
		if err != nil {
			return nil, gameerrors.Internal(err)
		}
		if count >= bt.MaxPerMap {
			return nil, gameerrors.Precondition("building type %s has reached its per-map cap", typeID)
		}
	}
	if len(bt.Variants) > 0 {
		if variant == nil || !bt.HasVariant(*variant) {
			return nil, gameerrors.Precondition("a valid variant is required for %s", typeID)
		}
	}
	if company.Cash < bt.BaseCost {
		return nil, gameerrors.Precondition("insufficient cash: need %d, have %d", bt.BaseCost, company.Cash)
	}

	snapshot, err := s.snapshotMap(ctx, m.ID)
	if err != nil {
		return nil, gameerrors.Internal(err)
	}
	result := computeAdjacency(tile, typeID, variant, snapshot, s.catalog)

	building := &model.BuildingInstance{
		ID: uuid.NewString(), MapID: m.ID, Coordinate: coord, TypeID: typeID,
		OwnerCompanyID: companyID, Variant: variant,
		CalculatedProfit: result.profit, CalculatedValue: result.value,
		ProfitBreakdown: result.profitBreakdown, ValueBreakdown: result.valueBreakdown,
		CreatedAt: time.Now().UTC(),
	}

	err = s.manager.ExecuteAtomic(ctx, func(tx *transaction.Transaction) error {
		tx.AddOperation(&step{
			name: "debit_cash_and_construct",
			execute: func(ctx context.Context) error {
				company.Cash -= bt.BaseCost
				company.TotalActions++
				company.TicksSinceAction = 0
				if err := s.companies.Update(ctx, company); err != nil {
					return err
				}
				return s.buildings.Create(ctx, building)
			},
			rollback: func(ctx context.Context) error {
				company.Cash += bt.BaseCost
				_ = s.buildings.Delete(ctx, building.ID)
				return nil
			},
		})
		return nil
	})
	if err != nil {
		return nil, gameerrors.Internal(err)
	}

	if err := s.recordTransaction(ctx, model.TxnBuild, companyID, m.ID, &coord, &building.ID, -bt.BaseCost, nil); err != nil {
		return nil, gameerrors.Internal(err)
	}
	if err := s.tracker.MarkNeighborhood(ctx, m.ID, coord); err != nil {
		return nil, gameerrors.Internal(err)
	}
	s.afterAction(ctx, companyID)
	return building, nil
}

type adjacencyResult struct {
	profit, value                   model.Cents
	profitBreakdown, valueBreakdown model.ProfitBreakdown
}

// SellToState implements spec.md §4.3 Sell to state / sell land to state.
func (s *Service) SellToState(ctx context.Context, companyID string, coord model.Coordinate) (model.Cents, error) {
	company, err := s.companies.Get(ctx, companyID)
	if err != nil {
		return 0, gameerrors.NotFound("game_company", companyID)
	}
	if company.Imprisoned {
		return 0, gameerrors.Precondition("company is imprisoned")
	}
	if company.MapID == nil {
		return 0, gameerrors.Precondition("company is not on a map")
	}
	if listing, err := s.market.GetActiveForSubject(ctx, *company.MapID, coord); err == nil && listing != nil {
		return 0, gameerrors.Precondition("tile is listed on the market")
	}

	building, _ := s.buildings.GetByTile(ctx, *company.MapID, coord)
	tile, err := s.maps.GetTile(ctx, *company.MapID, coord)
	if err != nil {
		return 0, gameerrors.NotFound("tile", "")
	}
	if tile.OwnerID == nil || *tile.OwnerID != companyID {
		return 0, gameerrors.Precondition("company does not own this tile")
	}

	var currentValue model.Cents
	var buildingID *string
	if building != nil && building.Live() {
		currentValue = building.CalculatedValue
		buildingID = &building.ID
	}
	payout := StateSalePrice(currentValue)

	err = s.manager.ExecuteAtomic(ctx, func(tx *transaction.Transaction) error {
		tx.AddOperation(&step{
			name: "liquidate_to_state",
			execute: func(ctx context.Context) error {
				company.Cash += payout
				if err := s.companies.Update(ctx, company); err != nil {
					return err
				}
				if building != nil && building.Live() {
					building.Collapsed = true
					building.TypeID = model.BuildingDemolished
					if err := s.buildings.Update(ctx, building); err != nil {
						return err
					}
				}
				tile.OwnerID = nil
				return s.maps.UpdateTile(ctx, tile)
			},
			rollback: noRollback,
		})
		return nil
	})
	if err != nil {
		return 0, gameerrors.Internal(err)
	}

	if err := s.recordTransaction(ctx, model.TxnSellToState, companyID, *company.MapID, &coord, buildingID, payout, nil); err != nil {
		return 0, gameerrors.Internal(err)
	}
	if err := s.tracker.MarkNeighborhood(ctx, *company.MapID, coord); err != nil {
		return 0, gameerrors.Internal(err)
	}
	s.afterAction(ctx, companyID)
	return payout, nil
}

// ListForSale implements spec.md §4.3 List for sale.
func (s *Service) ListForSale(ctx context.Context, companyID string, coord model.Coordinate, price model.Cents) (*model.MarketListing, error) {
	company, err := s.companies.Get(ctx, companyID)
	if err != nil {
		return nil, gameerrors.NotFound("game_company", companyID)
	}
	if company.Imprisoned {
		return nil, gameerrors.Precondition("company is imprisoned")
	}
	if company.MapID == nil {
		return nil, gameerrors.Precondition("company is not on a map")
	}
	tile, err := s.maps.GetTile(ctx, *company.MapID, coord)
	if err != nil {
		return nil, gameerrors.NotFound("tile", "")
	}
	if tile.OwnerID == nil || *tile.OwnerID != companyID {
		return nil, gameerrors.Precondition("company does not own this tile")
	}
	if existing, err := s.market.GetActiveForSubject(ctx, *company.MapID, coord); err == nil && existing != nil {
		return nil, gameerrors.Precondition("tile is already listed")
	}
	if price <= 0 {
		return nil, gameerrors.New(gameerrors.KindInvalidRequest, "price must be positive")
	}

	subject := model.SubjectTile
	if b, err := s.buildings.GetByTile(ctx, *company.MapID, coord); err == nil && b != nil && b.Live() {
		subject = model.SubjectBuilding
	}

	listing := &model.MarketListing{
		ID: uuid.NewString(), MapID: *company.MapID, Coordinate: coord, Subject: subject,
		SellerID: companyID, AskingPrice: price, Status: model.ListingActive, CreatedAt: time.Now().UTC(),
	}
	if err := s.market.Create(ctx, listing); err != nil {
		return nil, gameerrors.Internal(err)
	}
	if err := s.recordTransaction(ctx, model.TxnListForSale, companyID, *company.MapID, &coord, nil, price, nil); err != nil {
		return nil, gameerrors.Internal(err)
	}
	return listing, nil
}

// CancelListing implements spec.md §4.3 Cancel listing.
func (s *Service) CancelListing(ctx context.Context, companyID, listingID string) error {
	company, err := s.companies.Get(ctx, companyID)
	if err != nil {
		return gameerrors.NotFound("game_company", companyID)
	}
	if company.Imprisoned {
		return gameerrors.Precondition("company is imprisoned")
	}
	listing, err := s.market.Get(ctx, listingID)
	if err != nil {
		return gameerrors.NotFound("market_listing", listingID)
	}
	if listing.SellerID != companyID {
		return gameerrors.New(gameerrors.KindForbidden, "only the seller may cancel this listing")
	}
	if listing.Status != model.ListingActive {
		return gameerrors.Precondition("listing is not active")
	}
	listing.Status = model.ListingCancelled
	if err := s.market.Update(ctx, listing); err != nil {
		return gameerrors.Internal(err)
	}
	return s.recordTransaction(ctx, model.TxnCancelListing, companyID, listing.MapID, &listing.Coordinate, nil, 0, nil)
}

// BuyProperty implements spec.md §4.3 Buy property / Buy land from owner:
// the buyer-side half of a two-step peer transfer via a published
// MarketListing. The asking price must match exactly.
func (s *Service) BuyProperty(ctx context.Context, buyerCompanyID, listingID string, offeredPrice model.Cents) error {
	listing, err := s.market.Get(ctx, listingID)
	if err != nil {
		return gameerrors.NotFound("market_listing", listingID)
	}
	if listing.Status != model.ListingActive {
		return gameerrors.Precondition("listing is not active")
	}
	if offeredPrice != listing.AskingPrice {
		return gameerrors.Precondition("offered price does not match asking price")
	}
	if listing.SellerID == buyerCompanyID {
		return gameerrors.Precondition("cannot buy your own listing")
	}

	buyer, err := s.companies.Get(ctx, buyerCompanyID)
	if err != nil {
		return gameerrors.NotFound("game_company", buyerCompanyID)
	}
	if buyer.Imprisoned {
		return gameerrors.Precondition("company is imprisoned")
	}
	seller, err := s.companies.Get(ctx, listing.SellerID)
	if err != nil {
		return gameerrors.NotFound("game_company", listing.SellerID)
	}
	if buyer.Cash < listing.AskingPrice {
		return gameerrors.Precondition("insufficient cash")
	}
	tile, err := s.maps.GetTile(ctx, listing.MapID, listing.Coordinate)
	if err != nil {
		return gameerrors.NotFound("tile", "")
	}

	err = s.manager.ExecuteAtomic(ctx, func(tx *transaction.Transaction) error {
		tx.AddOperation(&step{
			name: "transfer_cash_and_ownership",
			execute: func(ctx context.Context) error {
				buyer.Cash -= listing.AskingPrice
				seller.Cash += listing.AskingPrice
				if err := s.companies.Update(ctx, buyer); err != nil {
					return err
				}
				if err := s.companies.Update(ctx, seller); err != nil {
					return err
				}
				owner := buyerCompanyID
				tile.OwnerID = &owner
				if err := s.maps.UpdateTile(ctx, tile); err != nil {
					return err
				}
				if b, err := s.buildings.GetByTile(ctx, listing.MapID, listing.Coordinate); err == nil && b != nil && b.Live() {
					b.OwnerCompanyID = buyerCompanyID
					if err := s.buildings.Update(ctx, b); err != nil {
						return err
					}
				}
				listing.Status = model.ListingSold
				return s.market.Update(ctx, listing)
			},
			rollback: noRollback,
		})
		return nil
	})
	if err != nil {
		return gameerrors.Internal(err)
	}

	if err := s.recordTransaction(ctx, model.TxnBuyProperty, buyerCompanyID, listing.MapID, &listing.Coordinate, nil, -listing.AskingPrice, nil); err != nil {
		return gameerrors.Internal(err)
	}
	s.afterAction(ctx, buyerCompanyID)
	return nil
}

// Demolish implements spec.md §4.3 Demolish.
func (s *Service) Demolish(ctx context.Context, companyID string, coord model.Coordinate) error {
	company, err := s.companies.Get(ctx, companyID)
	if err != nil {
		return gameerrors.NotFound("game_company", companyID)
	}
	if company.Imprisoned {
		return gameerrors.Precondition("company is imprisoned")
	}
	if company.MapID == nil {
		return gameerrors.Precondition("company is not on a map")
	}
	building, err := s.buildings.GetByTile(ctx, *company.MapID, coord)
	if err != nil || building == nil || !building.Live() {
		return gameerrors.Precondition("no live building on this tile")
	}
	if building.OwnerCompanyID != companyID {
		return gameerrors.New(gameerrors.KindForbidden, "only the owner may demolish this building")
	}

	building.TypeID = model.BuildingDemolished
	building.Collapsed = true
	if err := s.buildings.Update(ctx, building); err != nil {
		return gameerrors.Internal(err)
	}
	if err := s.recordTransaction(ctx, model.TxnDemolish, companyID, *company.MapID, &coord, &building.ID, 0, nil); err != nil {
		return gameerrors.Internal(err)
	}
	return s.tracker.MarkNeighborhood(ctx, *company.MapID, coord)
}

// Takeover implements spec.md §4.3 Takeover: seizing a building whose owner
// is inactive beyond the threshold, or whose damage exceeds the takeover
// threshold.
func (s *Service) Takeover(ctx context.Context, takerCompanyID string, coord model.Coordinate) error {
	taker, err := s.companies.Get(ctx, takerCompanyID)
	if err != nil {
		return gameerrors.NotFound("game_company", takerCompanyID)
	}
	if taker.Imprisoned {
		return gameerrors.Precondition("company is imprisoned")
	}
	if taker.MapID == nil {
		return gameerrors.Precondition("company is not on a map")
	}
	building, err := s.buildings.GetByTile(ctx, *taker.MapID, coord)
	if err != nil || building == nil || !building.Live() {
		return gameerrors.Precondition("no live building on this tile")
	}
	owner, err := s.companies.Get(ctx, building.OwnerCompanyID)
	if err != nil {
		return gameerrors.NotFound("game_company", building.OwnerCompanyID)
	}
	if !owner.Inactive() && building.DamagePercent < DamageTakeoverThreshold {
		return gameerrors.Precondition("target is neither inactive nor sufficiently damaged")
	}
	cost := TakeoverCost(building.CalculatedValue)
	if taker.Cash < cost {
		return gameerrors.Precondition("insufficient cash: need %d, have %d", cost, taker.Cash)
	}

	err = s.manager.ExecuteAtomic(ctx, func(tx *transaction.Transaction) error {
		tx.AddOperation(&step{
			name: "seize_building",
			execute: func(ctx context.Context) error {
				taker.Cash -= cost
				owner.Cash += cost
				if err := s.companies.Update(ctx, taker); err != nil {
					return err
				}
				if err := s.companies.Update(ctx, owner); err != nil {
					return err
				}
				building.OwnerCompanyID = takerCompanyID
				if err := s.buildings.Update(ctx, building); err != nil {
					return err
				}
				tile, err := s.maps.GetTile(ctx, *taker.MapID, coord)
				if err != nil {
					return err
				}
				newOwner := takerCompanyID
				tile.OwnerID = &newOwner
				return s.maps.UpdateTile(ctx, tile)
			},
			rollback: noRollback,
		})
		return nil
	})
	if err != nil {
		return gameerrors.Internal(err)
	}

	if err := s.recordTransaction(ctx, model.TxnTakeover, takerCompanyID, *taker.MapID, &coord, &building.ID, -cost, nil); err != nil {
		return gameerrors.Internal(err)
	}
	s.afterAction(ctx, takerCompanyID)
	return nil
}

// PurchaseSecurity implements spec.md §4.3 Purchase security.
func (s *Service) PurchaseSecurity(ctx context.Context, companyID string, buildingID string, level int) (*model.BuildingSecurity, error) {
	building, err := s.buildings.Get(ctx, buildingID)
	if err != nil {
		return nil, gameerrors.NotFound("building", buildingID)
	}
	if building.OwnerCompanyID != companyID {
		return nil, gameerrors.New(gameerrors.KindForbidden, "only the owner may purchase security")
	}
	tier, ok := s.securityCatalog[level]
	if !ok {
		return nil, gameerrors.Precondition("unknown security level %d", level)
	}
	company, err := s.companies.Get(ctx, companyID)
	if err != nil {
		return nil, gameerrors.NotFound("game_company", companyID)
	}
	if company.Imprisoned {
		return nil, gameerrors.Precondition("company is imprisoned")
	}
	cost := s.securityCatalog.InstallCost(level)
	if company.Cash < cost {
		return nil, gameerrors.Precondition("insufficient cash: need %d, have %d", cost, company.Cash)
	}

	sec := &model.BuildingSecurity{
		BuildingID: buildingID, Level: tier.Level,
		UpkeepPerTick: tier.UpkeepPerTick, DamageResistance: tier.DamageResistance,
	}

	err = s.manager.ExecuteAtomic(ctx, func(tx *transaction.Transaction) error {
		tx.AddOperation(&step{
			name: "install_security",
			execute: func(ctx context.Context) error {
				company.Cash -= cost
				if err := s.companies.Update(ctx, company); err != nil {
					return err
				}
				return s.security.Upsert(ctx, sec)
			},
			rollback: func(ctx context.Context) error {
				company.Cash += cost
				return nil
			},
		})
		return nil
	})
	if err != nil {
		return nil, gameerrors.Internal(err)
	}

	if err := s.recordTransaction(ctx, model.TxnPurchaseSecurity, companyID, building.MapID, &building.Coordinate, &buildingID, -cost, nil); err != nil {
		return nil, gameerrors.Internal(err)
	}
	return sec, nil
}

// RemoveSecurity implements spec.md §4.3 Remove security.
func (s *Service) RemoveSecurity(ctx context.Context, companyID, buildingID string) error {
	company, err := s.companies.Get(ctx, companyID)
	if err != nil {
		return gameerrors.NotFound("game_company", companyID)
	}
	if company.Imprisoned {
		return gameerrors.Precondition("company is imprisoned")
	}
	building, err := s.buildings.Get(ctx, buildingID)
	if err != nil {
		return gameerrors.NotFound("building", buildingID)
	}
	if building.OwnerCompanyID != companyID {
		return gameerrors.New(gameerrors.KindForbidden, "only the owner may remove security")
	}
	if err := s.security.Delete(ctx, buildingID); err != nil {
		return gameerrors.Internal(err)
	}
	return s.recordTransaction(ctx, model.TxnRemoveSecurity, companyID, building.MapID, &building.Coordinate, &buildingID, 0, nil)
}
