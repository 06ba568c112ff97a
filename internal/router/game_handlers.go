package router

import (
	"github.com/gin-gonic/gin"

	"citytycoon-backend/internal/model"
)

func registerGameRoutes(g *gin.RouterGroup, d *Deps) {
	g.POST("/companies", d.handleCreateCompany)
	g.GET("/companies", d.handleListMyCompanies)
	g.GET("/companies/:companyID", d.handleGetCompany)

	g.GET("/maps/:mapID/tiles", d.handleListTiles)
	g.GET("/maps/:mapID/buildings", d.handleListBuildings)

	g.POST("/companies/:companyID/buy-land", d.handleBuyLand)
	g.POST("/companies/:companyID/build", d.handleBuild)
	g.POST("/companies/:companyID/sell-to-state", d.handleSellToState)
	g.POST("/companies/:companyID/listings", d.handleListForSale)
	g.DELETE("/companies/:companyID/listings/:listingID", d.handleCancelListing)
	g.POST("/companies/:companyID/listings/:listingID/buy", d.handleBuyProperty)
	g.POST("/companies/:companyID/demolish", d.handleDemolish)
	g.POST("/companies/:companyID/takeover", d.handleTakeover)
	g.POST("/companies/:companyID/security", d.handlePurchaseSecurity)
	g.DELETE("/companies/:companyID/buildings/:buildingID/security", d.handleRemoveSecurity)

	g.POST("/companies/:companyID/attacks", d.handleApplyTrick)
	g.POST("/companies/:companyID/buildings/:buildingID/extinguish", d.handleExtinguishFire)
	g.POST("/companies/:companyID/buildings/:buildingID/cleanup", d.handleCleanupTrick)
	g.POST("/companies/:companyID/buildings/:buildingID/repair", d.handleRepairBuilding)
	g.POST("/companies/:companyID/pay-fine", d.handlePayFine)

	g.POST("/companies/:companyID/hero-out", d.handleHeroOut)
	g.POST("/companies/:companyID/join/:mapID", d.handleJoinLocation)
	g.POST("/companies/:companyID/leave", d.handleLeaveLocation)

	g.POST("/companies/:companyID/chat", d.handlePostChat)
	g.GET("/maps/:mapID/chat", d.handleRecentChat)
	g.POST("/companies/:companyID/hero-message", d.handlePostHeroMessage)
	g.POST("/companies/:companyID/donate", d.handleDonate)
	g.POST("/companies/:companyID/casino/roulette", d.handlePlayRoulette)
	g.POST("/companies/:companyID/casino/blackjack", d.handleDealBlackjack)
	g.POST("/casino/blackjack/:gameID/hit", d.handleHitBlackjack)
	g.POST("/casino/blackjack/:gameID/stand", d.handleStandBlackjack)
	g.POST("/casino/blackjack/:gameID/double", d.handleDoubleBlackjack)
}

func (d *Deps) handleTempleLeaderboard(c *gin.Context) {
	entries, err := d.Temple.Leaderboard(c.Request.Context(), 25)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, entries)
}

func (d *Deps) handleRecentHeroMessages(c *gin.Context) {
	msgs, err := d.HeroMessages.Recent(c.Request.Context(), 50)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, msgs)
}

type createCompanyRequest struct {
	DisplayName string `json:"display_name" binding:"required"`
	BossName    string `json:"boss_name" binding:"required"`
}

func (d *Deps) handleCreateCompany(c *gin.Context) {
	var req createCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "display_name and boss_name are required")
		return
	}
	company, err := d.Hero.CreateGameCompany(c.Request.Context(), CurrentUser(c).ID, req.DisplayName, req.BossName)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, company)
}

func (d *Deps) handleListMyCompanies(c *gin.Context) {
	companies, err := d.Companies.ListByOwner(c.Request.Context(), CurrentUser(c).ID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, companies)
}

func (d *Deps) handleGetCompany(c *gin.Context) {
	company, err := d.Companies.Get(c.Request.Context(), c.Param("companyID"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, company)
}

func (d *Deps) handleListTiles(c *gin.Context) {
	tiles, err := d.GameMaps.ListTiles(c.Request.Context(), c.Param("mapID"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, tiles)
}

func (d *Deps) handleListBuildings(c *gin.Context) {
	buildings, err := d.Buildings.ListByMap(c.Request.Context(), c.Param("mapID"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, buildings)
}

func bindCoordinate(c *gin.Context) (model.Coordinate, bool) {
	var req struct {
		X int `json:"x"`
		Y int `json:"y"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "x and y coordinates are required")
		return model.Coordinate{}, false
	}
	return model.Coordinate{X: req.X, Y: req.Y}, true
}

func (d *Deps) handleBuyLand(c *gin.Context) {
	coord, ok2 := bindCoordinate(c)
	if !ok2 {
		return
	}
	tile, err := d.Action.BuyLand(c.Request.Context(), c.Param("companyID"), coord)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, tile)
}

type buildRequest struct {
	X       int     `json:"x"`
	Y       int     `json:"y"`
	Type    string  `json:"type" binding:"required"`
	Variant *string `json:"variant"`
}

func (d *Deps) handleBuild(c *gin.Context) {
	var req buildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "x, y, and type are required")
		return
	}
	building, err := d.Action.Build(c.Request.Context(), c.Param("companyID"),
		model.Coordinate{X: req.X, Y: req.Y}, model.BuildingTypeID(req.Type), req.Variant)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, building)
}

func (d *Deps) handleSellToState(c *gin.Context) {
	coord, ok2 := bindCoordinate(c)
	if !ok2 {
		return
	}
	amount, err := d.Action.SellToState(c.Request.Context(), c.Param("companyID"), coord)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"credited": amount})
}

type listForSaleRequest struct {
	X     int         `json:"x"`
	Y     int         `json:"y"`
	Price model.Cents `json:"price" binding:"required"`
}

func (d *Deps) handleListForSale(c *gin.Context) {
	var req listForSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "x, y, and price are required")
		return
	}
	listing, err := d.Action.ListForSale(c.Request.Context(), c.Param("companyID"),
		model.Coordinate{X: req.X, Y: req.Y}, req.Price)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, listing)
}

func (d *Deps) handleCancelListing(c *gin.Context) {
	if err := d.Action.CancelListing(c.Request.Context(), c.Param("companyID"), c.Param("listingID")); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"cancelled": true})
}

func (d *Deps) handleBuyProperty(c *gin.Context) {
	var req struct {
		OfferedPrice model.Cents `json:"offered_price" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "offered_price is required")
		return
	}
	if err := d.Action.BuyProperty(c.Request.Context(), c.Param("companyID"), c.Param("listingID"), req.OfferedPrice); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"purchased": true})
}

func (d *Deps) handleDemolish(c *gin.Context) {
	coord, ok2 := bindCoordinate(c)
	if !ok2 {
		return
	}
	if err := d.Action.Demolish(c.Request.Context(), c.Param("companyID"), coord); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"demolished": true})
}

func (d *Deps) handleTakeover(c *gin.Context) {
	coord, ok2 := bindCoordinate(c)
	if !ok2 {
		return
	}
	if err := d.Action.Takeover(c.Request.Context(), c.Param("companyID"), coord); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"taken_over": true})
}

func (d *Deps) handlePurchaseSecurity(c *gin.Context) {
	var req struct {
		BuildingID string `json:"building_id" binding:"required"`
		Level      int    `json:"level" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "building_id and level are required")
		return
	}
	security, err := d.Action.PurchaseSecurity(c.Request.Context(), c.Param("companyID"), req.BuildingID, req.Level)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, security)
}

func (d *Deps) handleRemoveSecurity(c *gin.Context) {
	if err := d.Action.RemoveSecurity(c.Request.Context(), c.Param("companyID"), c.Param("buildingID")); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"removed": true})
}

type applyTrickRequest struct {
	TargetBuildingID string `json:"target_building_id" binding:"required"`
	Trick            string `json:"trick" binding:"required"`
	Message          string `json:"message"`
}

func (d *Deps) handleApplyTrick(c *gin.Context) {
	var req applyTrickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "target_building_id and trick are required")
		return
	}
	result, err := d.Attack.ApplyTrick(c.Request.Context(), c.Param("companyID"), req.TargetBuildingID,
		model.TrickType(req.Trick), req.Message)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, result)
}

func (d *Deps) handleExtinguishFire(c *gin.Context) {
	if err := d.Attack.ExtinguishFire(c.Request.Context(), c.Param("companyID"), c.Param("buildingID")); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"extinguished": true})
}

func (d *Deps) handleCleanupTrick(c *gin.Context) {
	if err := d.Attack.CleanupTrick(c.Request.Context(), c.Param("companyID"), c.Param("buildingID")); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"cleaned_up": true})
}

func (d *Deps) handleRepairBuilding(c *gin.Context) {
	if err := d.Attack.RepairBuilding(c.Request.Context(), c.Param("companyID"), c.Param("buildingID")); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"repaired": true})
}

func (d *Deps) handlePayFine(c *gin.Context) {
	if err := d.Attack.PayFine(c.Request.Context(), c.Param("companyID")); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"fine_paid": true})
}

func (d *Deps) handleHeroOut(c *gin.Context) {
	if err := d.Hero.HeroOut(c.Request.Context(), c.Param("companyID")); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"heroed_out": true})
}

func (d *Deps) handleJoinLocation(c *gin.Context) {
	if err := d.Hero.JoinLocation(c.Request.Context(), c.Param("companyID"), c.Param("mapID")); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"joined": true})
}

func (d *Deps) handleLeaveLocation(c *gin.Context) {
	if err := d.Hero.LeaveLocation(c.Request.Context(), c.Param("companyID")); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"left": true})
}

type postBodyRequest struct {
	Body string `json:"body" binding:"required"`
}

func (d *Deps) handlePostChat(c *gin.Context) {
	var req struct {
		MapID string `json:"map_id" binding:"required"`
		Body  string `json:"body" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "map_id and body are required")
		return
	}
	msg, err := d.Chat.PostMessage(c.Request.Context(), c.Param("companyID"), req.MapID, req.Body)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, msg)
}

func (d *Deps) handleRecentChat(c *gin.Context) {
	msgs, err := d.Chat.Recent(c.Request.Context(), c.Param("mapID"), 50)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, msgs)
}

func (d *Deps) handlePostHeroMessage(c *gin.Context) {
	var req postBodyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "body is required")
		return
	}
	msg, err := d.HeroMessages.PostMessage(c.Request.Context(), c.Param("companyID"), req.Body)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, msg)
}

func (d *Deps) handleDonate(c *gin.Context) {
	var req struct {
		Amount model.Cents `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "amount is required")
		return
	}
	donation, err := d.Temple.Donate(c.Request.Context(), c.Param("companyID"), req.Amount)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, donation)
}

func (d *Deps) handlePlayRoulette(c *gin.Context) {
	var req struct {
		Kind   string      `json:"kind" binding:"required"`
		Color  string      `json:"color"`
		Number int         `json:"number"`
		Stake  model.Cents `json:"stake" binding:"required"`
		MapID  string      `json:"map_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "kind and stake are required")
		return
	}
	outcome, payout, err := d.Casino.PlayRoulette(c.Request.Context(), c.Param("companyID"), req.MapID,
		model.RouletteBetKind(req.Kind), model.RouletteColor(req.Color), req.Number, req.Stake)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"outcome": outcome, "payout": payout})
}

func (d *Deps) handleDealBlackjack(c *gin.Context) {
	var req struct {
		Stake model.Cents `json:"stake" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "stake is required")
		return
	}
	hand, err := d.Casino.DealBlackjack(c.Request.Context(), c.Param("companyID"), req.Stake)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, hand)
}

func (d *Deps) handleHitBlackjack(c *gin.Context) {
	hand, err := d.Casino.HitBlackjack(c.Request.Context(), c.Param("gameID"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, hand)
}

func (d *Deps) handleStandBlackjack(c *gin.Context) {
	hand, err := d.Casino.StandBlackjack(c.Request.Context(), c.Param("gameID"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, hand)
}

func (d *Deps) handleDoubleBlackjack(c *gin.Context) {
	hand, err := d.Casino.DoubleBlackjack(c.Request.Context(), c.Param("gameID"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, hand)
}
