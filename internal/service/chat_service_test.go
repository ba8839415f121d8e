package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agencyos/agencyos/internal/apperr"
	"github.com/agencyos/agencyos/internal/domain"
	"github.com/agencyos/agencyos/internal/rbac"
)

func TestGeneralChannelIsOpenToEveryone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	channel, err := f.services.Chat.CreateChannel(ctx, f.admin, CreateChannelInput{
		Type: "GENERAL", Name: "general",
	})
	require.NoError(t, err)

	for _, caller := range []struct {
		name string
		auth rbac.AuthContext
	}{{"dev", f.dev}, {"contact", f.contact}} {
		t.Run(caller.name, func(t *testing.T) {
			_, err := f.services.Chat.PostMessage(ctx, caller.auth, channel.ID, PostMessageInput{Content: "hello"})
			require.NoError(t, err)
		})
	}
}

func TestProjectChannelFollowsProjectScope(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	channel, err := f.services.Chat.CreateChannel(ctx, f.admin, CreateChannelInput{
		Type: "PROJECT", Name: "relaunch", ProjectID: &f.project.ID,
	})
	require.NoError(t, err)

	// Project member and client contact may post; an unrelated dev may not.
	_, err = f.services.Chat.PostMessage(ctx, f.dev, channel.ID, PostMessageInput{Content: "standup at 10"})
	require.NoError(t, err)
	_, err = f.services.Chat.PostMessage(ctx, f.contact, channel.ID, PostMessageInput{Content: "looks great"})
	require.NoError(t, err)

	_, err = f.services.Chat.PostMessage(ctx, f.dev2, channel.ID, PostMessageInput{Content: "hi"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(err))
}

func TestDirectChannelAdmitsParticipantsOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	channel, err := f.services.Chat.CreateChannel(ctx, f.admin, CreateChannelInput{
		Type: "DIRECT", Name: "dm",
		ParticipantIDs: []string{f.admin.UserID, f.dev.UserID},
	})
	require.NoError(t, err)

	_, err = f.services.Chat.ListMessages(ctx, f.dev, channel.ID)
	require.NoError(t, err)

	_, err = f.services.Chat.ListMessages(ctx, f.dev2, channel.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(err))
}

func TestDirectChannelNeedsTwoParticipants(t *testing.T) {
	f := newFixture(t)
	_, err := f.services.Chat.CreateChannel(context.Background(), f.admin, CreateChannelInput{
		Type: "DIRECT", Name: "solo", ParticipantIDs: []string{f.admin.UserID},
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestListChannelsFiltersByVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.services.Chat.CreateChannel(ctx, f.admin, CreateChannelInput{Type: "GENERAL", Name: "general"})
	require.NoError(t, err)
	_, err = f.services.Chat.CreateChannel(ctx, f.admin, CreateChannelInput{
		Type: "PROJECT", Name: "relaunch", ProjectID: &f.project.ID,
	})
	require.NoError(t, err)
	_, err = f.services.Chat.CreateChannel(ctx, f.admin, CreateChannelInput{
		Type: "DIRECT", Name: "dm", ParticipantIDs: []string{f.admin.UserID, f.dev.UserID},
	})
	require.NoError(t, err)

	channels, err := f.services.Chat.ListChannels(ctx, f.dev2)
	require.NoError(t, err)
	require.Len(t, channels, 1)
	assert.Equal(t, domain.ChannelTypeGeneral, channels[0].Type)

	channels, err = f.services.Chat.ListChannels(ctx, f.dev)
	require.NoError(t, err)
	assert.Len(t, channels, 3)

	channels, err = f.services.Chat.ListChannels(ctx, f.contact)
	require.NoError(t, err)
	assert.Len(t, channels, 2)
}

func TestMentionCreatesNotification(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	channel, err := f.services.Chat.CreateChannel(ctx, f.admin, CreateChannelInput{Type: "GENERAL", Name: "general"})
	require.NoError(t, err)

	content := fmt.Sprintf("ping @%s about the deploy", f.dev.UserID)
	_, err = f.services.Chat.PostMessage(ctx, f.admin, channel.ID, PostMessageInput{Content: content})
	require.NoError(t, err)

	notifications, err := f.store.Notifications().ListByUser(ctx, f.dev.UserID)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, domain.NotificationChatMention, notifications[0].Type)
}

func TestSelfMentionDoesNotNotify(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	channel, err := f.services.Chat.CreateChannel(ctx, f.admin, CreateChannelInput{Type: "GENERAL", Name: "general"})
	require.NoError(t, err)

	content := fmt.Sprintf("note to self @%s", f.admin.UserID)
	_, err = f.services.Chat.PostMessage(ctx, f.admin, channel.ID, PostMessageInput{Content: content})
	require.NoError(t, err)

	notifications, err := f.store.Notifications().ListByUser(ctx, f.admin.UserID)
	require.NoError(t, err)
	assert.Empty(t, notifications)
}
