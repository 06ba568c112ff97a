package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	gameerrors "citytycoon-backend/internal/errors"
	"citytycoon-backend/internal/model"
)

// Claims is the signed bearer token payload (spec.md §6): user_id,
// company_id, role, is_mobile, issued_at, expires_at, session_id.
type Claims struct {
	UserID    string `json:"user_id"`
	CompanyID string `json:"company_id,omitempty"`
	Role      string `json:"role"`
	IsMobile  bool   `json:"is_mobile"`
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies session bearer tokens with a shared
// secret. Key rotation (replacing Secret) invalidates all active sessions,
// per spec.md §6.
type TokenIssuer struct {
	Secret []byte
}

func NewTokenIssuer(secret string) *TokenIssuer {
	return &TokenIssuer{Secret: []byte(secret)}
}

// Issue signs a token for the given user/session, with a lifetime chosen
// by client type (spec.md §6: ~24h web, ~90d mobile).
func (t *TokenIssuer) Issue(u *model.User, companyID, sessionID string, isMobile bool) (string, time.Time, error) {
	ttl := model.WebSessionLifetime
	if isMobile {
		ttl = model.MobileSessionLifetime
	}
	now := time.Now().UTC()
	expiresAt := now.Add(ttl)

	claims := Claims{
		UserID: u.ID, CompanyID: companyID, Role: string(u.Role), IsMobile: isMobile, SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.Secret)
	if err != nil {
		return "", time.Time{}, gameerrors.Internal(err)
	}
	return signed, expiresAt, nil
}

// Verify parses and validates a signed token, returning its claims.
func (t *TokenIssuer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, gameerrors.New(gameerrors.KindUnauthenticated, "unexpected signing method")
		}
		return t.Secret, nil
	})
	if err != nil || !token.Valid {
		return nil, gameerrors.New(gameerrors.KindUnauthenticated, "invalid or expired session token")
	}
	return claims, nil
}

// IsMobileUserAgent detects a mobile client from the User-Agent header, the
// signal spec.md §6 uses to choose token lifetime.
func IsMobileUserAgent(ua string) bool {
	lower := strings.ToLower(ua)
	for _, marker := range []string{"mobile", "android", "iphone", "ipad"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
