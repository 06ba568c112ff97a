package router

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"citytycoon-backend/internal/auth"
	gameerrors "citytycoon-backend/internal/errors"
	"citytycoon-backend/internal/model"
	"citytycoon-backend/internal/ratelimit"
)

const (
	ctxClaimsKey = "auth_claims"
	ctxUserKey   = "auth_user"
)

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, prefix))
}

// AuthRequired verifies the bearer token, loads the owning User, and
// aborts with unauthenticated on any failure (spec.md §4.10 pipeline step
// 2). Public endpoints skip this middleware entirely rather than run it in
// an "optional" mode, so every authenticated handler can assume
// CurrentUser/CurrentClaims are populated.
func (d *Deps) AuthRequired(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		fail(c, gameerrors.New(gameerrors.KindUnauthenticated, "missing bearer token"))
		c.Abort()
		return
	}
	claims, err := d.Tokens.Verify(token)
	if err != nil {
		fail(c, err)
		c.Abort()
		return
	}
	user, err := d.Users.Get(c.Request.Context(), claims.UserID)
	if err != nil || user.DeletedAt != nil {
		fail(c, gameerrors.New(gameerrors.KindUnauthenticated, "session user no longer exists"))
		c.Abort()
		return
	}
	c.Set(ctxClaimsKey, claims)
	c.Set(ctxUserKey, user)
	c.Next()
}

// CurrentUser returns the authenticated user set by AuthRequired. Callers
// must only invoke this behind AuthRequired in the middleware chain.
func CurrentUser(c *gin.Context) *model.User {
	v, _ := c.Get(ctxUserKey)
	u, _ := v.(*model.User)
	return u
}

// CurrentCompanyID returns the active GameCompany id carried in the
// session token claims, or "" if the session isn't scoped to one.
func CurrentCompanyID(c *gin.Context) string {
	v, _ := c.Get(ctxClaimsKey)
	claims, _ := v.(*auth.Claims)
	if claims == nil {
		return ""
	}
	return claims.CompanyID
}

// RequirePage gates a route on the authenticated user's page-access
// resolution (spec.md §4.9), applied after AuthRequired in the chain
// (spec.md §4.10: "auth token extraction → authorization check").
func (d *Deps) RequirePage(page model.Page) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		allowed, err := d.Authz.CanAccess(c.Request.Context(), user, page)
		if err != nil {
			fail(c, err)
			c.Abort()
			return
		}
		if !allowed {
			fail(c, gameerrors.New(gameerrors.KindForbidden, "not authorized for this page"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireMasterAdmin gates an /admin/* route to the unrestricted role
// (spec.md §4.9: "master_admin: unrestricted across all tenants").
func RequireMasterAdmin(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil || user.Role != model.RoleMasterAdmin {
		fail(c, gameerrors.New(gameerrors.KindForbidden, "master admin only"))
		c.Abort()
		return
	}
	c.Next()
}

// RateLimit applies a per-key limiter keyed on sourceKey(c), failing the
// request with rate_limited + Retry-After on exhaustion (spec.md §4.10).
// The limiter itself is expected to fail open (internal/ratelimit.FailOpen)
// so a backing-store outage never locks users out.
func RateLimit(limiter ratelimit.Limiter, sourceKey func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := sourceKey(c)
		allowed, retryAfter := limiter.Allow(key)
		if !allowed {
			fail(c, gameerrors.RateLimited(int(retryAfter/time.Second)))
			c.Abort()
			return
		}
		c.Next()
	}
}

// byIP keys a rate limiter on the caller's source address.
func byIP(c *gin.Context) string { return c.ClientIP() }

// byUser keys a rate limiter on the authenticated user, falling back to IP
// for requests that somehow reach it unauthenticated.
func byUser(c *gin.Context) string {
	if u := CurrentUser(c); u != nil {
		return "user:" + u.ID
	}
	return "ip:" + c.ClientIP()
}
