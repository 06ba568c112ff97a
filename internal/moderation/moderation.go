// Package moderation implements the Moderation Gate (spec.md §4.11): every
// user-supplied free-text field is submitted synchronously to an external
// moderation capability before commit. The capability itself is an
// out-of-scope collaborator (spec.md §6); this package owns the
// consolidated call site, timeout policy, and verdict taxonomy so no
// call site hand-rolls its own validation.
package moderation

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	gameerrors "citytycoon-backend/internal/errors"
	"citytycoon-backend/internal/logger"
)

// Category names the kind of text being checked, so the moderation backend
// can apply category-specific policy.
type Category string

const (
	CategoryCompanyName Category = "company_name"
	CategoryBossName    Category = "boss_name"
	CategoryChatMessage Category = "chat_message"
	CategoryAttackMessage Category = "attack_message"
	CategoryHeroMessage Category = "hero_message"
)

// Verdict is the outcome of a moderation check (spec.md §4.11).
type Verdict string

const (
	VerdictAllowed  Verdict = "allowed"
	VerdictRejected Verdict = "rejected"
	VerdictPending  Verdict = "pending"
)

// Result is the moderation capability's response.
type Result struct {
	Verdict Verdict
	Reason  string
}

// Gate is the capability interface spec.md §6 names:
// moderate(category, text) → {allowed, reason?, pending?}.
type Gate interface {
	Moderate(ctx context.Context, category Category, text string) (Result, error)
}

// NamesBlockOnDefiniteVerdict never returns VerdictPending for a name-field
// category, per spec.md §4.11: "Name fields never enter pending — names
// block on a definitive verdict."
func NamesBlockOnDefiniteVerdict(c Category) bool {
	return c == CategoryCompanyName || c == CategoryBossName
}

// HTTPGate calls an external moderation endpoint over HTTP/JSON. It is the
// default Gate implementation; tests and local development substitute a
// fake Gate.
type HTTPGate struct {
	Endpoint string
	Client   *http.Client
	Timeout  time.Duration
}

// NewHTTPGate builds an HTTPGate calling endpoint with the given timeout.
func NewHTTPGate(endpoint string, timeout time.Duration) *HTTPGate {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &HTTPGate{Endpoint: endpoint, Client: &http.Client{Timeout: timeout}, Timeout: timeout}
}

type moderateRequest struct {
	Category string `json:"category"`
	Text     string `json:"text"`
}

type moderateResponse struct {
	Allowed bool   `json:"allowed"`
	Pending bool   `json:"pending"`
	Reason  string `json:"reason"`
}

// Moderate calls the external endpoint. On timeout it returns pending per
// spec.md §5: "on timeout, moderation defaults to pending (never allowed)."
func (g *HTTPGate) Moderate(ctx context.Context, category Category, text string) (Result, error) {
	if g.Endpoint == "" {
		// No moderation backend configured — fail safe to pending rather
		// than silently allowing unmoderated text through.
		return Result{Verdict: VerdictPending, Reason: "moderation endpoint not configured"}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, g.Timeout)
	defer cancel()

	body, err := json.Marshal(moderateRequest{Category: string(category), Text: text})
	if err != nil {
		return Result{}, gameerrors.Internal(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.Endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{}, gameerrors.Internal(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.Client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			logger.Warn("moderation call timed out, defaulting to pending")
			return Result{Verdict: VerdictPending, Reason: "moderation timeout"}, nil
		}
		return Result{}, gameerrors.Wrap(gameerrors.KindUpstreamUnavailable, "moderation unavailable", err)
	}
	defer resp.Body.Close()

	var out moderateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Result{}, gameerrors.Wrap(gameerrors.KindUpstreamUnavailable, "moderation response unreadable", err)
	}

	switch {
	case out.Pending:
		return Result{Verdict: VerdictPending, Reason: out.Reason}, nil
	case out.Allowed:
		return Result{Verdict: VerdictAllowed}, nil
	default:
		return Result{Verdict: VerdictRejected, Reason: out.Reason}, nil
	}
}

// Check runs text through the gate and returns a *GameError on rejection.
// For name categories, a pending verdict is also treated as a rejection
// since names must block on a definitive verdict.
func Check(ctx context.Context, g Gate, category Category, text string) (Result, error) {
	res, err := g.Moderate(ctx, category, text)
	if err != nil {
		return Result{}, err
	}
	if res.Verdict == VerdictRejected {
		return res, gameerrors.New(gameerrors.KindPreconditionFailed, "rejected by moderation: "+res.Reason)
	}
	if res.Verdict == VerdictPending && NamesBlockOnDefiniteVerdict(category) {
		return res, gameerrors.New(gameerrors.KindPreconditionFailed, "name could not be verified, try again shortly")
	}
	return res, nil
}
