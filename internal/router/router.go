// Package router implements the Request Router (spec.md §4.10 C10): the
// fixed pipeline every inbound request passes through — CORS preflight →
// auth token extraction → authorization check → per-route rate limit →
// handler — plus the response-envelope builder of spec.md §9 that
// replaces the teacher's repeated per-endpoint CORS/JSON construction.
package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"citytycoon-backend/internal/action"
	"citytycoon-backend/internal/attack"
	"citytycoon-backend/internal/auth"
	"citytycoon-backend/internal/authz"
	"citytycoon-backend/internal/config"
	"citytycoon-backend/internal/hero"
	"citytycoon-backend/internal/mapsvc"
	"citytycoon-backend/internal/middleware"
	"citytycoon-backend/internal/model"
	"citytycoon-backend/internal/ratelimit"
	"citytycoon-backend/internal/repository"
	"citytycoon-backend/internal/social"
)

// Deps bundles every collaborator a handler needs. Built once in cmd/server
// and passed to New — the explicit-dependency replacement for the
// teacher's global repository handle (spec.md §9 "Design Notes": "no
// ambient state").
type Deps struct {
	Config *config.Config

	Auth   *auth.Service
	Tokens *auth.TokenIssuer
	Authz  *authz.Service
	Action *action.Service
	Attack *attack.Service
	Hero   *hero.Service
	Maps   *mapsvc.Service

	Chat         *social.ChatService
	HeroMessages *social.HeroMessageService
	Temple       *social.TempleService
	Casino       *social.CasinoService
	SocialWS     *social.Handler

	Users      repository.UserRepository
	Tenants    repository.TenantRepository
	Companies  repository.GameCompanyRepository
	GameMaps   repository.MapRepository
	Buildings  repository.BuildingRepository
	Market     repository.MarketRepository
	Txns       repository.TransactionRepository
	AuditLog   repository.AuditLogRepository

	AuthLimiter          ratelimit.Limiter
	AuthenticatedLimiter ratelimit.Limiter
	AnonymousLimiter     ratelimit.Limiter
}

// New builds the fully wired gin engine. gin.Default()'s built-in
// logger/recovery are replaced by the teacher's zap-backed
// internal/middleware pair so every log line flows through the same
// structured logger as the rest of the server.
func New(d *Deps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.ZapRecovery())
	r.Use(middleware.ZapLogger())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = false
	corsCfg.AllowOrigins = []string{"http://localhost:3000"}
	corsCfg.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	corsCfg.MaxAge = 12 * time.Hour
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(c *gin.Context) { ok(c, gin.H{"status": "ok"}) })

	anon := RateLimit(d.AnonymousLimiter, byIP)
	authLimit := RateLimit(d.AuthLimiter, byIP)
	authed := RateLimit(d.AuthenticatedLimiter, byUser)

	v1 := r.Group("/api/v1")
	{
		registerAuthRoutes(v1, d, authLimit)

		public := v1.Group("/public")
		public.Use(anon)
		public.GET("/temple/leaderboard", d.handleTempleLeaderboard)
		public.GET("/hero-messages", d.handleRecentHeroMessages)

		users := v1.Group("/users")
		users.Use(d.AuthRequired, authed)
		registerUserRoutes(users, d)

		tenants := v1.Group("/tenants")
		tenants.Use(d.AuthRequired, authed)
		registerTenantRoutes(tenants, d)

		game := v1.Group("/game")
		game.Use(d.AuthRequired, d.RequirePage(model.Page("game")), authed)
		registerGameRoutes(game, d)

		admin := v1.Group("/admin")
		admin.Use(d.AuthRequired, RequireMasterAdmin, authed)
		registerAdminRoutes(admin, d)
	}

	r.GET("/ws/social/:mapID", d.AuthRequired, func(c *gin.Context) {
		d.SocialWS.ServeWS(c.Writer, c.Request, CurrentCompanyID(c), c.Param("mapID"))
	})

	return r
}
