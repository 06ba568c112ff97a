package social

import (
	"context"
	"time"

	"github.com/google/uuid"

	gameerrors "citytycoon-backend/internal/errors"
	"citytycoon-backend/internal/model"
	"citytycoon-backend/internal/moderation"
	"citytycoon-backend/internal/repository"
)

// ChatService implements map-scoped chat posting (spec.md §4.12).
type ChatService struct {
	chat repository.ChatRepository
	gate moderation.Gate
	hub  *Hub
}

func NewChatService(chat repository.ChatRepository, gate moderation.Gate, hub *Hub) *ChatService {
	return &ChatService{chat: chat, gate: gate, hub: hub}
}

// PostMessage moderates and persists a chat line. An approved line is
// broadcast to every client subscribed to mapID; a line left pending is
// stored but not broadcast (spec.md §4.11's never-silently-allow policy).
func (s *ChatService) PostMessage(ctx context.Context, companyID, mapID, body string) (*model.ChatMessage, error) {
	if body == "" {
		return nil, gameerrors.New(gameerrors.KindInvalidRequest, "message body must not be empty")
	}
	result, err := moderation.Check(ctx, s.gate, moderation.CategoryChatMessage, body)
	if err != nil {
		return nil, err
	}
	status := model.SocialApproved
	if result.Verdict == moderation.VerdictPending {
		status = model.SocialPending
	}

	msg := &model.ChatMessage{ID: uuid.NewString(), MapID: mapID, CompanyID: companyID, Body: body, ModerationStatus: status, CreatedAt: time.Now().UTC()}
	if err := s.chat.Create(ctx, msg); err != nil {
		return nil, gameerrors.Internal(err)
	}

	if s.hub != nil && status == model.SocialApproved {
		s.hub.BroadcastToMap(mapID, OutboundMessage{Type: MessageChat, MapID: mapID, CompanyID: companyID, Body: body, CreatedAt: msg.CreatedAt})
	}
	return msg, nil
}

func (s *ChatService) Recent(ctx context.Context, mapID string, limit int) ([]model.ChatMessage, error) {
	return s.chat.ListRecent(ctx, mapID, limit)
}

// HeroMessageService implements messages attached to the hero-out
// celebration (spec.md §4.12).
type HeroMessageService struct {
	messages repository.HeroMessageRepository
	gate     moderation.Gate
	hub      *Hub
}

func NewHeroMessageService(messages repository.HeroMessageRepository, gate moderation.Gate, hub *Hub) *HeroMessageService {
	return &HeroMessageService{messages: messages, gate: gate, hub: hub}
}

func (s *HeroMessageService) PostMessage(ctx context.Context, companyID, body string) (*model.HeroMessage, error) {
	if body == "" {
		return nil, gameerrors.New(gameerrors.KindInvalidRequest, "message body must not be empty")
	}
	result, err := moderation.Check(ctx, s.gate, moderation.CategoryHeroMessage, body)
	if err != nil {
		return nil, err
	}
	status := model.SocialApproved
	if result.Verdict == moderation.VerdictPending {
		status = model.SocialPending
	}

	msg := &model.HeroMessage{ID: uuid.NewString(), CompanyID: companyID, Body: body, ModerationStatus: status, CreatedAt: time.Now().UTC()}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, gameerrors.Internal(err)
	}

	if s.hub != nil {
		s.hub.BroadcastGlobal(OutboundMessage{Type: MessageHero, CompanyID: companyID, Body: body, CreatedAt: msg.CreatedAt})
	}
	return msg, nil
}

func (s *HeroMessageService) Recent(ctx context.Context, limit int) ([]model.HeroMessage, error) {
	return s.messages.ListRecent(ctx, limit)
}
