// Package auth implements the Authentication Core (spec.md §4.8): login by
// password, magic link, or TOTP second factor; session issuance; TOTP
// enrollment; and invitation acceptance.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"

	gameerrors "citytycoon-backend/internal/errors"
	"citytycoon-backend/internal/email"
	"citytycoon-backend/internal/model"
	"citytycoon-backend/internal/ratelimit"
	"citytycoon-backend/internal/repository"
)

// Service implements the login/magic-link/TOTP/invitation flows.
type Service struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	tokens   *TokenIssuer
	mailer   email.Sender
	limiter  ratelimit.Limiter

	magicLinkTTL  time.Duration
	invitationTTL time.Duration
}

// NewService wires the Auth Core against its collaborators.
func NewService(users repository.UserRepository, sessions repository.SessionRepository, tokens *TokenIssuer,
	mailer email.Sender, limiter ratelimit.Limiter, magicLinkTTL, invitationTTL time.Duration) *Service {
	return &Service{
		users: users, sessions: sessions, tokens: tokens, mailer: mailer, limiter: limiter,
		magicLinkTTL: magicLinkTTL, invitationTTL: invitationTTL,
	}
}

// LoginResult is returned by PasswordLogin/CompleteTwoFactor/MagicLinkVerify.
type LoginResult struct {
	RequiresTwoFactor bool
	UserID            string
	Email             string
	SessionToken      string
	ExpiresAt         time.Time
}

func (s *Service) rateLimitKey(prefix, sourceIP string) string { return prefix + ":" + sourceIP }

func (s *Service) checkRateLimit(ctx context.Context, sourceIP string) error {
	ok, retryAfter := s.limiter.Allow(s.rateLimitKey("auth", sourceIP))
	if !ok {
		return gameerrors.RateLimited(int(retryAfter.Seconds()))
	}
	return nil
}

// PasswordLogin is the primary credential check (spec.md §4.8). If the
// user has TOTP enabled, it returns RequiresTwoFactor instead of a session.
func (s *Service) PasswordLogin(ctx context.Context, emailAddr, password, userAgent, sourceIP, deviceFingerprint string) (*LoginResult, error) {
	if err := s.checkRateLimit(ctx, sourceIP); err != nil {
		return nil, err
	}

	u, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		return nil, gameerrors.New(gameerrors.KindUnauthenticated, "invalid email or password")
	}
	if !u.IsActive() {
		return nil, gameerrors.New(gameerrors.KindUnauthenticated, "invalid email or password")
	}
	if !CheckPassword(u.HashedPassword, password) {
		return nil, gameerrors.New(gameerrors.KindUnauthenticated, "invalid email or password")
	}

	if u.RequiresTwoFactor() {
		return &LoginResult{RequiresTwoFactor: true, UserID: u.ID, Email: u.Email}, nil
	}

	return s.issueSession(ctx, u, userAgent, sourceIP, deviceFingerprint)
}

// CompleteTwoFactor finishes login after PasswordLogin returned
// RequiresTwoFactor, checking the 6-digit TOTP code.
func (s *Service) CompleteTwoFactor(ctx context.Context, userID, code, userAgent, sourceIP, deviceFingerprint string) (*LoginResult, error) {
	if err := s.checkRateLimit(ctx, sourceIP); err != nil {
		return nil, err
	}
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, gameerrors.New(gameerrors.KindUnauthenticated, "invalid session")
	}
	if !u.RequiresTwoFactor() {
		return nil, gameerrors.New(gameerrors.KindPreconditionFailed, "two-factor not enabled for this user")
	}
	if VerifyTOTPCode(*u.TOTPSecret, code) {
		return s.issueSession(ctx, u, userAgent, sourceIP, deviceFingerprint)
	}
	if remaining, ok := ConsumeRecoveryCode(u.TOTPRecoveryCodes, code); ok {
		u.TOTPRecoveryCodes = remaining
		if err := s.users.Update(ctx, u); err != nil {
			return nil, gameerrors.Internal(err)
		}
		return s.issueSession(ctx, u, userAgent, sourceIP, deviceFingerprint)
	}
	return nil, gameerrors.New(gameerrors.KindUnauthenticated, "invalid two-factor code")
}

// RequestMagicLink sends a one-time token (query-string variant) and a
// 6-digit code (manual-entry variant); either satisfies the challenge.
// Tokens expire in 15 minutes (configurable via magicLinkTTL).
func (s *Service) RequestMagicLink(ctx context.Context, emailAddr, sourceIP string) error {
	if err := s.checkRateLimit(ctx, sourceIP); err != nil {
		return err
	}
	u, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil || !u.IsActive() {
		// Do not reveal whether the email exists.
		return nil
	}

	token, err := randomToken()
	if err != nil {
		return gameerrors.Internal(err)
	}
	code, err := randomDigitCode()
	if err != nil {
		return gameerrors.Internal(err)
	}
	expiry := time.Now().UTC().Add(s.magicLinkTTL)
	u.MagicLinkToken, u.MagicLinkCode, u.MagicLinkExpiry = &token, &code, &expiry
	if err := s.users.Update(ctx, u); err != nil {
		return gameerrors.Internal(err)
	}

	email.SendBestEffort(ctx, s.mailer, email.TemplateMagicLink, u.Email, map[string]interface{}{
		"token": token, "code": code,
	})
	return nil
}

// VerifyMagicLinkToken completes login via the query-string token variant.
func (s *Service) VerifyMagicLinkToken(ctx context.Context, token, userAgent, sourceIP, deviceFingerprint string) (*LoginResult, error) {
	u, err := s.users.GetByMagicLinkToken(ctx, token)
	if err != nil {
		return nil, gameerrors.New(gameerrors.KindUnauthenticated, "invalid or expired link")
	}
	return s.completeMagicLink(ctx, u, userAgent, sourceIP, deviceFingerprint)
}

// VerifyMagicLinkCode completes login via the 6-digit manual-entry variant.
func (s *Service) VerifyMagicLinkCode(ctx context.Context, emailAddr, code, userAgent, sourceIP, deviceFingerprint string) (*LoginResult, error) {
	if err := s.checkRateLimit(ctx, sourceIP); err != nil {
		return nil, err
	}
	u, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil || u.MagicLinkCode == nil || *u.MagicLinkCode != code {
		return nil, gameerrors.New(gameerrors.KindUnauthenticated, "invalid or expired code")
	}
	return s.completeMagicLink(ctx, u, userAgent, sourceIP, deviceFingerprint)
}

func (s *Service) completeMagicLink(ctx context.Context, u *model.User, userAgent, sourceIP, deviceFingerprint string) (*LoginResult, error) {
	if u.MagicLinkExpiry == nil || time.Now().UTC().After(*u.MagicLinkExpiry) {
		return nil, gameerrors.New(gameerrors.KindUnauthenticated, "invalid or expired link")
	}
	// Consume the token: a second verify must fail (spec.md §8 round-trip law).
	u.MagicLinkToken, u.MagicLinkCode, u.MagicLinkExpiry = nil, nil, nil
	if err := s.users.Update(ctx, u); err != nil {
		return nil, gameerrors.Internal(err)
	}
	return s.issueSession(ctx, u, userAgent, sourceIP, deviceFingerprint)
}

func (s *Service) issueSession(ctx context.Context, u *model.User, userAgent, sourceIP, deviceFingerprint string) (*LoginResult, error) {
	isMobile := IsMobileUserAgent(userAgent)
	sessionID, err := randomToken()
	if err != nil {
		return nil, gameerrors.Internal(err)
	}
	signed, expiresAt, err := s.tokens.Issue(u, "", sessionID, isMobile)
	if err != nil {
		return nil, err
	}
	sess := &model.Session{
		ID: sessionID, UserID: u.ID, Token: signed, IsMobile: isMobile,
		ExpiresAt: expiresAt, DeviceFingerprint: deviceFingerprint, SourceIP: sourceIP,
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, gameerrors.Internal(err)
	}
	return &LoginResult{UserID: u.ID, Email: u.Email, SessionToken: signed, ExpiresAt: expiresAt}, nil
}

// AcceptInvitation activates a provisional user and issues a session
// passwordless, mirroring magic link (spec.md §4.8).
func (s *Service) AcceptInvitation(ctx context.Context, token, userAgent, sourceIP, deviceFingerprint string) (*LoginResult, error) {
	u, err := s.users.GetByInvitationToken(ctx, token)
	if err != nil {
		return nil, gameerrors.New(gameerrors.KindUnauthenticated, "invalid or expired invitation")
	}
	if u.InvitationExpiry == nil || time.Now().UTC().After(*u.InvitationExpiry) {
		return nil, gameerrors.New(gameerrors.KindUnauthenticated, "invalid or expired invitation")
	}
	u.InvitationToken, u.InvitationExpiry = nil, nil
	u.Verified = true
	if err := s.users.Update(ctx, u); err != nil {
		return nil, gameerrors.Internal(err)
	}
	return s.issueSession(ctx, u, userAgent, sourceIP, deviceFingerprint)
}

// CreateInvitation provisions a new User with a 72-hour invitation token
// (spec.md §4.8). The caller (an admin) supplies role/tenant.
func (s *Service) CreateInvitation(ctx context.Context, emailAddr, username string, role model.Role, tenantID string) (*model.User, error) {
	token, err := randomToken()
	if err != nil {
		return nil, gameerrors.Internal(err)
	}
	expiry := time.Now().UTC().Add(s.invitationTTL)
	u := &model.User{
		Email: emailAddr, Username: username, Role: role, TenantID: tenantID,
		InvitationToken: &token, InvitationExpiry: &expiry,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	email.SendBestEffort(ctx, s.mailer, email.TemplateInvitation, u.Email, map[string]interface{}{"token": token})
	return u, nil
}

// Logout revokes a single session.
func (s *Service) Logout(ctx context.Context, sessionToken string) error {
	return s.sessions.DeleteByToken(ctx, sessionToken)
}

// SwitchCompany re-issues the caller's session bound to a different
// GameCompany id, carried in the token's company_id claim (spec.md §6).
// The old session is revoked so only the freshly scoped token remains
// valid, mirroring the magic-link "second verify fails" consumption rule.
func (s *Service) SwitchCompany(ctx context.Context, sessionToken, companyID, userAgent, sourceIP, deviceFingerprint string) (*LoginResult, error) {
	claims, err := s.tokens.Verify(sessionToken)
	if err != nil {
		return nil, err
	}
	u, err := s.users.Get(ctx, claims.UserID)
	if err != nil {
		return nil, gameerrors.New(gameerrors.KindUnauthenticated, "invalid session")
	}
	if err := s.sessions.DeleteByToken(ctx, sessionToken); err != nil {
		return nil, gameerrors.Internal(err)
	}

	isMobile := IsMobileUserAgent(userAgent)
	sessionID, err := randomToken()
	if err != nil {
		return nil, gameerrors.Internal(err)
	}
	signed, expiresAt, err := s.tokens.Issue(u, companyID, sessionID, isMobile)
	if err != nil {
		return nil, err
	}
	sess := &model.Session{
		ID: sessionID, UserID: u.ID, Token: signed, IsMobile: isMobile,
		ExpiresAt: expiresAt, DeviceFingerprint: deviceFingerprint, SourceIP: sourceIP,
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, gameerrors.Internal(err)
	}
	return &LoginResult{UserID: u.ID, Email: u.Email, SessionToken: signed, ExpiresAt: expiresAt}, nil
}

// EnrollTOTP generates and persists a new TOTP secret + recovery codes for
// userID, pending confirmation via VerifyTOTPSetup (spec.md §4.8: "verify-
// setup confirms the user can generate a correct code before enabling").
func (s *Service) EnrollTOTP(ctx context.Context, userID string) (secret string, recoveryCodes []string, err error) {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return "", nil, gameerrors.NotFound("user", userID)
	}
	secret, recoveryCodes, err = EnrollTOTP(u.Email, "CityTycoon")
	if err != nil {
		return "", nil, gameerrors.Internal(err)
	}
	u.TOTPSecret, u.TOTPRecoveryCodes, u.TOTPEnabled = &secret, recoveryCodes, false
	if err := s.users.Update(ctx, u); err != nil {
		return "", nil, gameerrors.Internal(err)
	}
	return secret, recoveryCodes, nil
}

// VerifyTOTPSetup confirms the user can produce a correct code, enabling
// TOTP as their second factor.
func (s *Service) VerifyTOTPSetup(ctx context.Context, userID, code string) error {
	u, err := s.users.Get(ctx, userID)
	if err != nil || u.TOTPSecret == nil {
		return gameerrors.Precondition("no pending TOTP enrollment")
	}
	if !VerifyTOTPCode(*u.TOTPSecret, code) {
		return gameerrors.New(gameerrors.KindUnauthenticated, "invalid verification code")
	}
	u.TOTPEnabled = true
	if err := s.users.Update(ctx, u); err != nil {
		return gameerrors.Internal(err)
	}
	email.SendBestEffort(ctx, s.mailer, email.TemplateTOTPEnabled, u.Email, nil)
	return nil
}

// DisableTOTP clears the secret and recovery codes.
func (s *Service) DisableTOTP(ctx context.Context, userID string) error {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return gameerrors.NotFound("user", userID)
	}
	u.TOTPSecret, u.TOTPRecoveryCodes, u.TOTPEnabled = nil, nil, false
	if err := s.users.Update(ctx, u); err != nil {
		return gameerrors.Internal(err)
	}
	return nil
}

func randomToken() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func randomDigitCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
