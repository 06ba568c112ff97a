// Package social implements the Social Sublayer (spec.md §4.12): map-scoped
// chat, hero messages, temple donations with a global leaderboard, and
// casino games, plus the websocket hub that delivers chat and hero
// messages to connected clients.
package social

import (
	"context"
	"time"

	"github.com/google/uuid"

	gameerrors "citytycoon-backend/internal/errors"
	"citytycoon-backend/internal/model"
	"citytycoon-backend/internal/repository"
)

// TempleService implements temple donations and the global leaderboard.
type TempleService struct {
	companies repository.GameCompanyRepository
	donations repository.DonationRepository
	txns      repository.TransactionRepository
	hub       *Hub
}

func NewTempleService(
	companies repository.GameCompanyRepository,
	donations repository.DonationRepository,
	txns repository.TransactionRepository,
	hub *Hub,
) *TempleService {
	return &TempleService{companies: companies, donations: donations, txns: txns, hub: hub}
}

// Donate debits companyID's cash and records a temple donation toward the
// global leaderboard (spec.md §4.12).
func (s *TempleService) Donate(ctx context.Context, companyID string, amount model.Cents) (*model.Donation, error) {
	if amount <= 0 {
		return nil, gameerrors.New(gameerrors.KindInvalidRequest, "donation amount must be positive")
	}
	company, err := s.companies.Get(ctx, companyID)
	if err != nil {
		return nil, gameerrors.NotFound("game_company", companyID)
	}
	if company.MapID == nil {
		return nil, gameerrors.Precondition("company is not on a map")
	}
	if company.Cash < amount {
		return nil, gameerrors.Precondition("insufficient cash: need %d, have %d", amount, company.Cash)
	}

	company.Cash -= amount
	if err := s.companies.Update(ctx, company); err != nil {
		return nil, gameerrors.Internal(err)
	}

	donation := &model.Donation{ID: uuid.NewString(), CompanyID: companyID, MapID: *company.MapID, Amount: amount, CreatedAt: time.Now().UTC()}
	if err := s.donations.Create(ctx, donation); err != nil {
		return nil, gameerrors.Internal(err)
	}
	if err := s.txns.Append(ctx, &model.TransactionRecord{
		ID: uuid.NewString(), Type: model.TxnDonation, CompanyID: companyID, MapID: *company.MapID,
		Amount: -amount, CreatedAt: time.Now().UTC(),
	}); err != nil {
		return nil, gameerrors.Internal(err)
	}

	if s.hub != nil {
		s.hub.BroadcastGlobal(OutboundMessage{
			Type: MessageDonation, MapID: *company.MapID, CompanyID: companyID, CreatedAt: donation.CreatedAt,
		})
	}
	return donation, nil
}

// Leaderboard returns the top donors by cumulative donation amount.
func (s *TempleService) Leaderboard(ctx context.Context, limit int) ([]model.DonationLeaderboardEntry, error) {
	return s.donations.Leaderboard(ctx, limit)
}
