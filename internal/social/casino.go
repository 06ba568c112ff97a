package social

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"

	gameerrors "citytycoon-backend/internal/errors"
	"citytycoon-backend/internal/model"
	"citytycoon-backend/internal/repository"
)

// CasinoService implements roulette and blackjack (spec.md §4.12): both
// debit/credit company cash deterministically per a documented payout
// table. Blackjack's hand payout is even money (2x stake) on a win, a push
// returns the stake, and a loss or bust forfeits it — an Open-Question
// resolution logged in DESIGN.md alongside the roulette payout table.
type CasinoService struct {
	companies repository.GameCompanyRepository
	casino    repository.CasinoRepository
	txns      repository.TransactionRepository
}

func NewCasinoService(companies repository.GameCompanyRepository, casino repository.CasinoRepository, txns repository.TransactionRepository) *CasinoService {
	return &CasinoService{companies: companies, casino: casino, txns: txns}
}

func (s *CasinoService) debit(ctx context.Context, companyID string, amount model.Cents) (*model.GameCompany, error) {
	company, err := s.companies.Get(ctx, companyID)
	if err != nil {
		return nil, gameerrors.NotFound("game_company", companyID)
	}
	if company.Cash < amount {
		return nil, gameerrors.Precondition("insufficient cash: need %d, have %d", amount, company.Cash)
	}
	company.Cash -= amount
	if err := s.companies.Update(ctx, company); err != nil {
		return nil, gameerrors.Internal(err)
	}
	return company, nil
}

func (s *CasinoService) credit(ctx context.Context, company *model.GameCompany, amount model.Cents) error {
	if amount <= 0 {
		return nil
	}
	company.Cash += amount
	return s.companies.Update(ctx, company)
}

func (s *CasinoService) recordBet(ctx context.Context, companyID, mapID string, net model.Cents, details map[string]interface{}) error {
	return s.txns.Append(ctx, &model.TransactionRecord{
		ID: uuid.NewString(), Type: model.TxnCasinoBet, CompanyID: companyID, MapID: mapID,
		Amount: net, Details: details, CreatedAt: time.Now().UTC(),
	})
}

// PlayRoulette places one bet, spins, and settles immediately: a color bet
// pays RoulettePayoutColor times stake, a number bet pays
// RoulettePayoutNumber times stake, any other outcome forfeits the stake.
func (s *CasinoService) PlayRoulette(ctx context.Context, companyID, mapID string, kind model.RouletteBetKind, colorSelection model.RouletteColor, numberSelection int, stake model.Cents) (model.RouletteOutcome, model.Cents, error) {
	if stake <= 0 {
		return model.RouletteOutcome{}, 0, gameerrors.New(gameerrors.KindInvalidRequest, "stake must be positive")
	}
	company, err := s.debit(ctx, companyID, stake)
	if err != nil {
		return model.RouletteOutcome{}, 0, err
	}

	outcome := model.RouletteSpin(rand.Intn(37))
	payout := model.Cents(0)
	switch kind {
	case model.RouletteBetColor:
		if outcome.Color == colorSelection && outcome.Color != model.RouletteGreen {
			payout = stake * model.RoulettePayoutColor
		}
	case model.RouletteBetNumber:
		if outcome.Number == numberSelection {
			payout = stake * model.RoulettePayoutNumber
		}
	default:
		return model.RouletteOutcome{}, 0, gameerrors.Precondition("unknown roulette bet kind %s", kind)
	}

	if err := s.credit(ctx, company, payout); err != nil {
		return model.RouletteOutcome{}, 0, err
	}

	hand := &model.CasinoHand{
		ID: uuid.NewString(), CompanyID: companyID, Game: model.CasinoRoulette, State: "settled", Stake: stake,
		Payload: map[string]interface{}{"number": outcome.Number, "color": string(outcome.Color), "payout": int64(payout)},
	}
	if err := s.casino.Create(ctx, hand); err != nil {
		return model.RouletteOutcome{}, 0, gameerrors.Internal(err)
	}
	if err := s.recordBet(ctx, companyID, mapID, payout-stake, map[string]interface{}{"game": "roulette", "outcome": outcome.Number}); err != nil {
		return model.RouletteOutcome{}, 0, err
	}
	return outcome, payout, nil
}

func drawCard() int { return rand.Intn(13) + 1 }

// DealBlackjack opens a new hand: debits stake, deals two cards each to
// player and dealer, and persists the hand in the "dealt" state.
func (s *CasinoService) DealBlackjack(ctx context.Context, companyID string, stake model.Cents) (*model.BlackjackHand, error) {
	if stake <= 0 {
		return nil, gameerrors.New(gameerrors.KindInvalidRequest, "stake must be positive")
	}
	if _, err := s.debit(ctx, companyID, stake); err != nil {
		return nil, err
	}

	hand := &model.BlackjackHand{
		GameID: uuid.NewString(), CompanyID: companyID, Bet: stake,
		PlayerCards: []int{drawCard(), drawCard()}, DealerCards: []int{drawCard(), drawCard()},
		State: model.BlackjackDealt, CreatedAt: time.Now().UTC(),
	}
	if err := s.casino.Create(ctx, handRow(hand)); err != nil {
		return nil, gameerrors.Internal(err)
	}
	return hand, nil
}

// HitBlackjack draws one card for the player, busting the hand if it puts
// them over 21.
func (s *CasinoService) HitBlackjack(ctx context.Context, gameID string) (*model.BlackjackHand, error) {
	hand, row, err := s.loadHand(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if hand.State != model.BlackjackDealt && hand.State != model.BlackjackActive {
		return nil, gameerrors.Precondition("hand is not open for hits")
	}
	hand.PlayerCards = append(hand.PlayerCards, drawCard())
	if hand.PlayerScore() > 21 {
		hand.State = model.BlackjackBusted
		return hand, s.settleBlackjack(ctx, hand, row)
	}
	hand.State = model.BlackjackActive
	return hand, s.saveHand(ctx, hand, row)
}

// StandBlackjack plays out the dealer's hand (drawing to 17) and settles
// the payout.
func (s *CasinoService) StandBlackjack(ctx context.Context, gameID string) (*model.BlackjackHand, error) {
	hand, row, err := s.loadHand(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if hand.State != model.BlackjackDealt && hand.State != model.BlackjackActive {
		return nil, gameerrors.Precondition("hand is not open to stand")
	}
	for hand.DealerScore() < 17 {
		hand.DealerCards = append(hand.DealerCards, drawCard())
	}
	hand.State = model.BlackjackStood
	return hand, s.settleBlackjack(ctx, hand, row)
}

// DoubleBlackjack doubles the stake, draws exactly one more card, and
// auto-stands.
func (s *CasinoService) DoubleBlackjack(ctx context.Context, gameID string) (*model.BlackjackHand, error) {
	hand, row, err := s.loadHand(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if hand.State != model.BlackjackDealt {
		return nil, gameerrors.Precondition("double is only available immediately after the deal")
	}
	if _, err := s.debit(ctx, hand.CompanyID, hand.Bet); err != nil {
		return nil, err
	}
	hand.Bet *= 2
	hand.PlayerCards = append(hand.PlayerCards, drawCard())
	if hand.PlayerScore() > 21 {
		hand.State = model.BlackjackBusted
		return hand, s.settleBlackjack(ctx, hand, row)
	}
	for hand.DealerScore() < 17 {
		hand.DealerCards = append(hand.DealerCards, drawCard())
	}
	hand.State = model.BlackjackDoubled
	return hand, s.settleBlackjack(ctx, hand, row)
}

func (s *CasinoService) loadHand(ctx context.Context, gameID string) (*model.BlackjackHand, *model.CasinoHand, error) {
	row, err := s.casino.Get(ctx, gameID)
	if err != nil {
		return nil, nil, gameerrors.NotFound("casino_hand", gameID)
	}
	if row.Game != model.CasinoBlackjack {
		return nil, nil, gameerrors.Precondition("hand %s is not a blackjack hand", gameID)
	}
	return blackjackFromRow(row), row, nil
}

func (s *CasinoService) saveHand(ctx context.Context, hand *model.BlackjackHand, row *model.CasinoHand) error {
	row.State = string(hand.State)
	row.Payload = blackjackPayload(hand)
	return s.casino.Update(ctx, row)
}

// settleBlackjack pays out a finished hand: a dealer bust or a higher player
// score than the dealer's wins even money, a tie pushes the stake back,
// anything else forfeits it.
func (s *CasinoService) settleBlackjack(ctx context.Context, hand *model.BlackjackHand, row *model.CasinoHand) error {
	company, err := s.companies.Get(ctx, hand.CompanyID)
	if err != nil {
		return gameerrors.NotFound("game_company", hand.CompanyID)
	}

	payout := model.Cents(0)
	switch {
	case hand.State == model.BlackjackBusted:
		payout = 0
	case hand.DealerScore() > 21 || hand.PlayerScore() > hand.DealerScore():
		payout = hand.Bet * 2
	case hand.PlayerScore() == hand.DealerScore():
		payout = hand.Bet
	default:
		payout = 0
	}

	if err := s.credit(ctx, company, payout); err != nil {
		return err
	}
	if err := s.saveHand(ctx, hand, row); err != nil {
		return err
	}
	return s.recordBet(ctx, hand.CompanyID, "", payout-hand.Bet, map[string]interface{}{"game": "blackjack", "game_id": hand.GameID})
}

func handRow(hand *model.BlackjackHand) *model.CasinoHand {
	return &model.CasinoHand{
		ID: hand.GameID, CompanyID: hand.CompanyID, Game: model.CasinoBlackjack,
		State: string(hand.State), Stake: hand.Bet, Payload: blackjackPayload(hand), CreatedAt: hand.CreatedAt,
	}
}

func blackjackPayload(hand *model.BlackjackHand) map[string]interface{} {
	return map[string]interface{}{
		"player_cards": hand.PlayerCards,
		"dealer_cards": hand.DealerCards,
		"bet":          int64(hand.Bet),
	}
}

func blackjackFromRow(row *model.CasinoHand) *model.BlackjackHand {
	hand := &model.BlackjackHand{
		GameID: row.ID, CompanyID: row.CompanyID, Bet: row.Stake,
		State: model.BlackjackState(row.State), CreatedAt: row.CreatedAt,
	}
	if cards, ok := row.Payload["player_cards"].([]interface{}); ok {
		hand.PlayerCards = toIntSlice(cards)
	}
	if cards, ok := row.Payload["dealer_cards"].([]interface{}); ok {
		hand.DealerCards = toIntSlice(cards)
	}
	return hand
}

// toIntSlice converts a JSON-decoded []interface{} of float64s (the shape
// encoding/json produces for a numeric array) back to []int.
func toIntSlice(raw []interface{}) []int {
	out := make([]int, 0, len(raw))
	for _, v := range raw {
		if f, ok := v.(float64); ok {
			out = append(out, int(f))
		}
	}
	return out
}
