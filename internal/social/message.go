package social

import "time"

// MessageType names the kind of event delivered over the websocket hub.
type MessageType string

const (
	MessageChat     MessageType = "chat"
	MessageHero     MessageType = "hero_message"
	MessageDonation MessageType = "donation"
)

// OutboundMessage is one event pushed to connected clients.
type OutboundMessage struct {
	Type      MessageType `json:"type"`
	MapID     string      `json:"map_id,omitempty"`
	CompanyID string      `json:"company_id,omitempty"`
	Body      string      `json:"body,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// InboundMessage is one client-submitted payload, read off the websocket
// and routed by the HTTP-layer handler into the appropriate service call
// (spec.md §4.12 leaves message routing as a thin relay over chat/hero
// posting, which already enforce moderation).
type InboundMessage struct {
	Type      MessageType `json:"type"`
	MapID     string      `json:"map_id,omitempty"`
	CompanyID string      `json:"company_id"`
	Body      string      `json:"body"`
}
