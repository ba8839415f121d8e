package service

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/agencyos/agencyos/internal/apperr"
	"github.com/agencyos/agencyos/internal/domain"
	"github.com/agencyos/agencyos/internal/notify"
	"github.com/agencyos/agencyos/internal/rbac"
	"github.com/agencyos/agencyos/internal/repository"
)

// ChatService manages channels and messages. Channel visibility:
// GENERAL is open, DIRECT admits participants only, PROJECT inherits
// the project's access scope.
type ChatService struct {
	store    repository.Store
	rbac     *rbac.Table
	notifier *notify.Notifier
}

func NewChatService(store repository.Store, table *rbac.Table, notifier *notify.Notifier) *ChatService {
	return &ChatService{store: store, rbac: table, notifier: notifier}
}

type CreateChannelInput struct {
	Type           string   `json:"type" binding:"required"`
	Name           string   `json:"name" binding:"required"`
	ProjectID      *string  `json:"projectId"`
	ParticipantIDs []string `json:"participantIds"`
}

func (s *ChatService) CreateChannel(ctx context.Context, auth rbac.AuthContext, input CreateChannelInput) (*domain.Channel, error) {
	if err := s.rbac.AssertPermission(auth, rbac.PermChatWrite); err != nil {
		return nil, err
	}
	channelType, err := domain.ParseChannelType(input.Type)
	if err != nil {
		return nil, apperr.Validation(err.Error())
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperr.Validation("name is required")
	}

	participants := input.ParticipantIDs
	if participants == nil {
		participants = []string{}
	}
	switch channelType {
	case domain.ChannelTypeProject:
		if input.ProjectID == nil {
			return nil, apperr.Validation("project channels require projectId")
		}
		if _, err := s.store.Projects().GetByID(ctx, *input.ProjectID); err != nil {
			return nil, err
		}
	case domain.ChannelTypeDirect:
		if len(participants) < 2 {
			return nil, apperr.Validation("direct channels require at least two participants")
		}
		input.ProjectID = nil
	default:
		input.ProjectID = nil
	}

	channel := &domain.Channel{
		ID:             uuid.NewString(),
		Type:           channelType,
		Name:           name,
		ProjectID:      input.ProjectID,
		ParticipantIDs: participants,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.store.Channels().Create(ctx, channel); err != nil {
		return nil, apperr.Internal(err)
	}
	return channel, nil
}

func (s *ChatService) ListChannels(ctx context.Context, auth rbac.AuthContext) ([]domain.Channel, error) {
	if err := s.rbac.AssertPermission(auth, rbac.PermChatRead); err != nil {
		return nil, err
	}
	return s.store.Channels().ListVisible(ctx, auth.UserID, auth.Role)
}

// canUseChannel applies the visibility rule to one channel.
func (s *ChatService) canUseChannel(ctx context.Context, auth rbac.AuthContext, channel *domain.Channel) (bool, error) {
	if channel.Type == domain.ChannelTypeGeneral {
		return true, nil
	}
	for _, id := range channel.ParticipantIDs {
		if id == auth.UserID {
			return true, nil
		}
	}
	if channel.Type != domain.ChannelTypeProject || channel.ProjectID == nil {
		return false, nil
	}
	scope, err := s.store.Projects().AccessScope(ctx, *channel.ProjectID)
	if err != nil {
		return false, err
	}
	if auth.Role == domain.RoleClient {
		return contains(scope.ContactIDs, auth.UserID), nil
	}
	return contains(scope.MemberIDs, auth.UserID), nil
}

var mentionPattern = regexp.MustCompile(`@([0-9a-zA-Z-]+)`)

type PostMessageInput struct {
	Content string `json:"content" binding:"required"`
}

func (s *ChatService) PostMessage(ctx context.Context, auth rbac.AuthContext, channelID string, input PostMessageInput) (*domain.Message, error) {
	if err := s.rbac.AssertPermission(auth, rbac.PermChatWrite); err != nil {
		return nil, err
	}
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, apperr.Validation("content is required")
	}
	channel, err := s.store.Channels().GetByID(ctx, channelID)
	if err != nil {
		return nil, err
	}
	ok, err := s.canUseChannel(ctx, auth, channel)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, authzDenied()
	}

	message := &domain.Message{
		ID:        uuid.NewString(),
		ChannelID: channel.ID,
		AuthorID:  auth.UserID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.Channels().CreateMessage(ctx, message); err != nil {
		return nil, apperr.Internal(err)
	}

	if mentioned := s.mentionedUsers(ctx, content); len(mentioned) > 0 {
		s.notifier.ChatMention(ctx, withoutActor(mentioned, auth.UserID), channel, message)
	}
	return message, nil
}

// mentionedUsers resolves @<user-id> tokens to existing users.
func (s *ChatService) mentionedUsers(ctx context.Context, content string) []string {
	matches := mentionPattern.FindAllStringSubmatch(content, -1)
	ids := []string{}
	for _, match := range matches {
		if _, err := s.store.Users().GetByID(ctx, match[1]); err == nil {
			ids = append(ids, match[1])
		}
	}
	return ids
}

func (s *ChatService) ListMessages(ctx context.Context, auth rbac.AuthContext, channelID string) ([]domain.Message, error) {
	if err := s.rbac.AssertPermission(auth, rbac.PermChatRead); err != nil {
		return nil, err
	}
	channel, err := s.store.Channels().GetByID(ctx, channelID)
	if err != nil {
		return nil, err
	}
	ok, err := s.canUseChannel(ctx, auth, channel)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, authzDenied()
	}
	return s.store.Channels().ListMessages(ctx, channelID)
}

func contains(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
