// Package attack implements the Attack / Security Engine (spec.md §4.4):
// applying tricks against rival buildings, rolling detection, security
// resistance, collapse, and the cleanup operations that reverse trick
// effects.
package attack

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"citytycoon-backend/internal/dirty"
	gameerrors "citytycoon-backend/internal/errors"
	"citytycoon-backend/internal/model"
	"citytycoon-backend/internal/moderation"
	"citytycoon-backend/internal/repository"
	"citytycoon-backend/internal/transaction"
)

// Service implements trick application and its cleanup operations.
type Service struct {
	companies repository.GameCompanyRepository
	buildings repository.BuildingRepository
	security  repository.SecurityRepository
	attacks   repository.AttackRepository
	txns      repository.TransactionRepository
	tracker   *dirty.Tracker
	gate      moderation.Gate
	catalog   model.TrickCatalog
	manager   *transaction.Manager
}

func NewService(
	companies repository.GameCompanyRepository,
	buildings repository.BuildingRepository,
	security repository.SecurityRepository,
	attacks repository.AttackRepository,
	txns repository.TransactionRepository,
	tracker *dirty.Tracker,
	gate moderation.Gate,
	catalog model.TrickCatalog,
) *Service {
	return &Service{
		companies: companies, buildings: buildings, security: security, attacks: attacks,
		txns: txns, tracker: tracker, gate: gate, catalog: catalog, manager: transaction.NewManager(),
	}
}

// ApplyTrickResult reports the detection/fine outcome of an attack so the
// caller can surface it without a second read.
type ApplyTrickResult struct {
	Attack    *model.Attack
	Detected  bool
	Collapsed bool
}

// ApplyTrick implements the 8-step flow of spec.md §4.4.
func (s *Service) ApplyTrick(ctx context.Context, attackerCompanyID, targetBuildingID string, trick model.TrickType, message string) (*ApplyTrickResult, error) {
	def, ok := s.catalog[trick]
	if !ok {
		return nil, gameerrors.Precondition("unknown trick type %s", trick)
	}

	attacker, err := s.companies.Get(ctx, attackerCompanyID)
	if err != nil {
		return nil, gameerrors.NotFound("game_company", attackerCompanyID)
	}
	if attacker.Imprisoned {
		return nil, gameerrors.Precondition("attacker is imprisoned and must pay their fine first")
	}
	target, err := s.buildings.Get(ctx, targetBuildingID)
	if err != nil || !target.Live() {
		return nil, gameerrors.Precondition("target building is not live")
	}
	if target.OwnerCompanyID == attackerCompanyID {
		return nil, gameerrors.Precondition("cannot attack your own building")
	}
	owner, err := s.companies.Get(ctx, target.OwnerCompanyID)
	if err != nil {
		return nil, gameerrors.NotFound("game_company", target.OwnerCompanyID)
	}
	if attacker.MapID == nil || owner.MapID == nil || *attacker.MapID != *owner.MapID {
		return nil, gameerrors.Precondition("attacker and target must be on the same map")
	}
	if last, err := s.attacks.LastAgainstTarget(ctx, attackerCompanyID, targetBuildingID); err == nil && last != nil {
		if time.Since(last.CreatedAt) < def.Cooldown {
			return nil, gameerrors.Precondition("trick is on cooldown against this target")
		}
	}
	if attacker.Cash < def.Cost {
		return nil, gameerrors.Precondition("insufficient cash: need %d, have %d", def.Cost, attacker.Cash)
	}

	modResult, err := moderation.Check(ctx, s.gate, moderation.CategoryAttackMessage, message)
	if err != nil {
		return nil, err
	}

	resistance := 1.0
	if sec, err := s.security.Get(ctx, targetBuildingID); err == nil && sec != nil {
		resistance = sec.DamageResistance
	}
	damage := def.BaseDamagePercent * resistance
	detected := rand.Float64() < def.DetectionProbability

	attackerCashBefore := attacker.Cash
	attackerImprisonedBefore := attacker.Imprisoned
	attackerFineBefore := attacker.Fine
	targetDamageBefore := target.DamagePercent
	targetBurningBefore := target.Burning
	targetCollapsedBefore := target.Collapsed

	fine := model.Cents(0)
	collapsed := false

	err = s.manager.ExecuteAtomic(ctx, func(tx *transaction.Transaction) error {
		tx.AddOperation(&step{
			name: "debit_imprison_and_damage",
			execute: func(ctx context.Context) error {
				attacker.Cash -= def.Cost
				if detected {
					fine = model.Cents(float64(def.Cost) * 2)
					attacker.Imprisoned = true
					attacker.Fine += fine
				}
				if err := s.companies.Update(ctx, attacker); err != nil {
					return err
				}

				target.DamagePercent = math.Min(100, target.DamagePercent+damage)
				if def.SetsBurning {
					target.Burning = true
				}
				if target.DamagePercent >= 100 {
					target.Collapsed = true
					collapsed = true
				}
				if err := s.buildings.Update(ctx, target); err != nil {
					attacker.Cash = attackerCashBefore
					attacker.Imprisoned = attackerImprisonedBefore
					attacker.Fine = attackerFineBefore
					_ = s.companies.Update(ctx, attacker)
					return err
				}
				return nil
			},
			rollback: func(ctx context.Context) error {
				attacker.Cash = attackerCashBefore
				attacker.Imprisoned = attackerImprisonedBefore
				attacker.Fine = attackerFineBefore
				fine = model.Cents(0)
				_ = s.companies.Update(ctx, attacker)

				target.DamagePercent = targetDamageBefore
				target.Burning = targetBurningBefore
				target.Collapsed = targetCollapsedBefore
				collapsed = false
				_ = s.buildings.Update(ctx, target)
				return nil
			},
		})
		return nil
	})
	if err != nil {
		return nil, gameerrors.Internal(err)
	}

	status := model.ModerationApproved
	if modResult.Verdict == moderation.VerdictPending {
		status = model.ModerationPending
	}

	attack := &model.Attack{
		ID: uuid.NewString(), AttackerCompanyID: attackerCompanyID, TargetBuildingID: targetBuildingID,
		Trick: trick, Message: message, ModerationStatus: status, Detected: detected,
		FineApplied: fine, CreatedAt: time.Now().UTC(),
	}
	if err := s.attacks.Create(ctx, attack); err != nil {
		return nil, gameerrors.Internal(err)
	}

	if err := s.txns.Append(ctx, &model.TransactionRecord{
		ID: uuid.NewString(), Type: model.TxnAttack, CompanyID: attackerCompanyID, MapID: *attacker.MapID,
		TargetBuildingID: &targetBuildingID, Amount: -def.Cost, CreatedAt: time.Now().UTC(),
		Details: map[string]interface{}{"trick": string(trick), "detected": detected},
	}); err != nil {
		return nil, gameerrors.Internal(err)
	}

	if collapsed {
		if err := s.tracker.MarkNeighborhood(ctx, target.MapID, target.Coordinate); err != nil {
			return nil, gameerrors.Internal(err)
		}
	}

	return &ApplyTrickResult{Attack: attack, Detected: detected, Collapsed: collapsed}, nil
}

// cleanupCostFraction is the cash charged per damage-percent point by the
// cleanup operations (spec.md §4.4: "cost the owner cash in proportion to
// severity").
const cleanupCostFraction = 50_00 // cents per damage-percent point

// ExtinguishFire clears a building's burning flag.
func (s *Service) ExtinguishFire(ctx context.Context, companyID, buildingID string) error {
	b, err := s.requireOwnedLiveBuilding(ctx, companyID, buildingID)
	if err != nil {
		return err
	}
	if !b.Burning {
		return gameerrors.Precondition("building is not burning")
	}
	cost := model.Cents(b.DamagePercent * cleanupCostFraction / 2)
	return s.payAndClear(ctx, companyID, b, cost, func() { b.Burning = false })
}

// CleanupTrick clears a visible trick overlay (rubble/vermin), represented
// here as a partial damage reduction since the model persists only the
// burning flag and damage percent as visible trick residue.
func (s *Service) CleanupTrick(ctx context.Context, companyID, buildingID string) error {
	b, err := s.requireOwnedLiveBuilding(ctx, companyID, buildingID)
	if err != nil {
		return err
	}
	if b.DamagePercent <= 0 {
		return gameerrors.Precondition("building has no damage to clean up")
	}
	reduction := math.Min(b.DamagePercent, 20)
	cost := model.Cents(reduction * cleanupCostFraction)
	return s.payAndClear(ctx, companyID, b, cost, func() {
		b.DamagePercent = math.Max(0, b.DamagePercent-reduction)
	})
}

// RepairBuilding fully repairs a damaged (non-collapsed) building.
func (s *Service) RepairBuilding(ctx context.Context, companyID, buildingID string) error {
	b, err := s.requireOwnedLiveBuilding(ctx, companyID, buildingID)
	if err != nil {
		return err
	}
	if b.DamagePercent <= 0 && !b.Burning {
		return gameerrors.Precondition("building does not need repair")
	}
	cost := model.Cents(b.DamagePercent * cleanupCostFraction)
	return s.payAndClear(ctx, companyID, b, cost, func() {
		b.DamagePercent = 0
		b.Burning = false
	})
}

func (s *Service) requireOwnedLiveBuilding(ctx context.Context, companyID, buildingID string) (*model.BuildingInstance, error) {
	b, err := s.buildings.Get(ctx, buildingID)
	if err != nil {
		return nil, gameerrors.NotFound("building", buildingID)
	}
	if b.Collapsed {
		return nil, gameerrors.Precondition("collapsed buildings must be repaired via demolish and rebuild")
	}
	if b.OwnerCompanyID != companyID {
		return nil, gameerrors.New(gameerrors.KindForbidden, "only the owner may perform this cleanup")
	}
	return b, nil
}

func (s *Service) payAndClear(ctx context.Context, companyID string, b *model.BuildingInstance, cost model.Cents, clear func()) error {
	company, err := s.companies.Get(ctx, companyID)
	if err != nil {
		return gameerrors.NotFound("game_company", companyID)
	}
	if company.Cash < cost {
		return gameerrors.Precondition("insufficient cash: need %d, have %d", cost, company.Cash)
	}
	company.Cash -= cost
	clear()
	if err := s.companies.Update(ctx, company); err != nil {
		return gameerrors.Internal(err)
	}
	return s.buildings.Update(ctx, b)
}

// PayFine clears an imprisoned company's outstanding fine, restoring its
// action rights (spec.md §4.4: "Fines are paid via payFine, which restores
// action rights").
func (s *Service) PayFine(ctx context.Context, companyID string) error {
	company, err := s.companies.Get(ctx, companyID)
	if err != nil {
		return gameerrors.NotFound("game_company", companyID)
	}
	if !company.Imprisoned {
		return gameerrors.Precondition("company is not imprisoned")
	}
	if company.Cash < company.Fine {
		return gameerrors.Precondition("insufficient cash to pay fine: need %d, have %d", company.Fine, company.Cash)
	}
	company.Cash -= company.Fine
	paid := company.Fine
	company.Fine = 0
	company.Imprisoned = false
	if err := s.companies.Update(ctx, company); err != nil {
		return gameerrors.Internal(err)
	}
	return s.txns.Append(ctx, &model.TransactionRecord{
		ID: uuid.NewString(), Type: model.TxnPayFine, CompanyID: companyID,
		MapID: derefOr(company.MapID, ""), Amount: -paid, CreatedAt: time.Now().UTC(),
	})
}

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
