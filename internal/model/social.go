package model

import "time"

// Donation is one temple-donation record, used to compute the global
// donation leaderboard (spec.md §4.12).
type Donation struct {
	ID        string
	CompanyID string
	MapID     string
	Amount    Cents
	CreatedAt time.Time
}

// ModerationState is the lifecycle state a moderated social message carries
// (spec.md §4.11: attacker/chat messages are approved or left pending,
// never silently failed-open).
type ModerationState string

const (
	SocialPending  ModerationState = "pending"
	SocialApproved ModerationState = "approved"
)

// ChatMessage is one map-scoped chat line (spec.md §4.12).
type ChatMessage struct {
	ID               string
	MapID            string
	CompanyID        string
	Body             string
	ModerationStatus ModerationState
	CreatedAt        time.Time
}

// HeroMessage is a message attached to a company's hero-out celebration
// (spec.md §4.12).
type HeroMessage struct {
	ID               string
	CompanyID        string
	Body             string
	ModerationStatus ModerationState
	CreatedAt        time.Time
}

// CasinoGame names which game a CasinoHand row belongs to.
type CasinoGame string

const (
	CasinoRoulette  CasinoGame = "roulette"
	CasinoBlackjack CasinoGame = "blackjack"
)

// CasinoHand is the persisted row behind one casino round, covering both
// the single-shot roulette spin and the multi-step blackjack hand (spec.md
// §4.12). Payload carries the game-specific detail (roulette outcome, or
// blackjack card arrays) as a JSON-friendly map.
type CasinoHand struct {
	ID        string
	CompanyID string
	Game      CasinoGame
	State     string
	Stake     Cents
	Payload   map[string]interface{}
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DonationLeaderboardEntry is one ranked row of the global donation
// leaderboard.
type DonationLeaderboardEntry struct {
	CompanyID string
	Total     Cents
}

// RouletteColor is the color a roulette pocket pays out on.
type RouletteColor string

const (
	RouletteRed   RouletteColor = "red"
	RouletteBlack RouletteColor = "black"
	RouletteGreen RouletteColor = "green" // pocket 0, the house's edge
)

// RouletteBetKind names the kind of roulette wager placed.
type RouletteBetKind string

const (
	RouletteBetColor  RouletteBetKind = "color"  // pays RoulettePayoutColor
	RouletteBetNumber RouletteBetKind = "number" // pays RoulettePayoutNumber
)

// RoulettePayoutColor and RoulettePayoutNumber are the deterministic payout
// multipliers applied to a winning bet's stake (spec.md §4.12: "debit/
// credit company cash deterministically per a documented payout table").
const (
	RoulettePayoutColor  = 2
	RoulettePayoutNumber = 35
)

// RouletteOutcome is the result of one spin.
type RouletteOutcome struct {
	Number int
	Color  RouletteColor
}

// RouletteSpin resolves the deterministic color for a pocket number
// (European single-zero wheel: 0 is green, the remaining 36 numbers
// alternate red/black per the standard wheel layout).
func RouletteSpin(number int) RouletteOutcome {
	if number == 0 {
		return RouletteOutcome{Number: 0, Color: RouletteGreen}
	}
	if rouletteRedNumbers[number] {
		return RouletteOutcome{Number: number, Color: RouletteRed}
	}
	return RouletteOutcome{Number: number, Color: RouletteBlack}
}

var rouletteRedNumbers = map[int]bool{
	1: true, 3: true, 5: true, 7: true, 9: true, 12: true, 14: true, 16: true,
	18: true, 19: true, 21: true, 23: true, 25: true, 27: true, 30: true,
	32: true, 34: true, 36: true,
}

// BlackjackAction is one move a player may make on their hand.
type BlackjackAction string

const (
	BlackjackHit     BlackjackAction = "hit"
	BlackjackStand   BlackjackAction = "stand"
	BlackjackDouble  BlackjackAction = "double"
)

// BlackjackState names the state-machine position of one hand (spec.md
// §4.12: "dealt → hit* → stand | double | bust").
type BlackjackState string

const (
	BlackjackDealt  BlackjackState = "dealt"
	BlackjackActive BlackjackState = "active"
	BlackjackStood  BlackjackState = "stood"
	BlackjackBusted BlackjackState = "busted"
	BlackjackDoubled BlackjackState = "doubled"
)

// BlackjackHand is one in-progress or settled hand, keyed by a game id
// (spec.md §4.12: "maintains a per-hand state machine... keyed on a game
// id").
type BlackjackHand struct {
	GameID        string
	CompanyID     string
	Bet           Cents
	PlayerCards   []int // card ranks, 1-13 (ace-king); suit is irrelevant to scoring
	DealerCards   []int
	State         BlackjackState
	CreatedAt     time.Time
}

// blackjackCardValue maps a rank (1=ace, 11/12/13=face) to its blackjack
// point value, treating aces as 11 by default; blackjackScore reduces them to 1 as
// needed to avoid busting.
func blackjackCardValue(rank int) int {
	switch {
	case rank == 1:
		return 11
	case rank >= 11:
		return 10
	default:
		return rank
	}
}

// blackjackScore computes a hand's best blackjack total, counting aces as 11 unless
// that would bust, in which case they count as 1 one at a time.
func blackjackScore(cards []int) int {
	total := 0
	aces := 0
	for _, c := range cards {
		total += blackjackCardValue(c)
		if c == 1 {
			aces++
		}
	}
	for total > 21 && aces > 0 {
		total -= 10
		aces--
	}
	return total
}

// PlayerScore and DealerScore report each side's current total.
func (h *BlackjackHand) PlayerScore() int { return blackjackScore(h.PlayerCards) }
func (h *BlackjackHand) DealerScore() int { return blackjackScore(h.DealerCards) }
