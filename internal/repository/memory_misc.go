package repository

import (
	"context"
	"sort"
	"time"

	"github.com/agencyos/agencyos/internal/apperr"
	"github.com/agencyos/agencyos/internal/domain"
)

type memFeedback struct{ m *Memory }

func (r *memFeedback) Create(ctx context.Context, feedback *domain.Feedback) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.feedback[feedback.ID] = *feedback
	return nil
}

func (r *memFeedback) Search(ctx context.Context, filter FeedbackFilter) ([]domain.Feedback, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	items := []domain.Feedback{}
	for _, item := range r.m.feedback {
		if item.TargetType != filter.TargetType || item.TargetID != filter.TargetID {
			continue
		}
		if filter.VisibleOnly && !item.IsClientVisible {
			continue
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return items, nil
}

type memTimeLogs struct{ m *Memory }

func (r *memTimeLogs) Create(ctx context.Context, log *domain.TimeLog) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.timeLogs[log.ID] = *log
	return nil
}

func (r *memTimeLogs) List(ctx context.Context, filter TimeLogFilter) ([]domain.TimeLog, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	logs := []domain.TimeLog{}
	for _, log := range r.m.timeLogs {
		if filter.ProjectID != nil && log.ProjectID != *filter.ProjectID {
			continue
		}
		if filter.MemberID != nil && log.MemberID != *filter.MemberID {
			continue
		}
		if filter.Start != nil && log.Date.Before(*filter.Start) {
			continue
		}
		if filter.End != nil && log.Date.After(*filter.End) {
			continue
		}
		logs = append(logs, log)
	}
	sort.Slice(logs, func(i, j int) bool { return logs[i].Date.After(logs[j].Date) })
	return logs, nil
}

type memChannels struct{ m *Memory }

func (r *memChannels) Create(ctx context.Context, channel *domain.Channel) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	ch := *channel
	ch.ParticipantIDs = cloneIDs(channel.ParticipantIDs)
	r.m.channels[channel.ID] = ch
	return nil
}

func (r *memChannels) GetByID(ctx context.Context, id string) (*domain.Channel, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	channel, ok := r.m.channels[id]
	if !ok || channel.IsArchived {
		return nil, apperr.NotFound("channel")
	}
	return &channel, nil
}

func (r *memChannels) ListVisible(ctx context.Context, userID string, role domain.Role) ([]domain.Channel, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	channels := []domain.Channel{}
	for _, channel := range r.m.channels {
		if channel.IsArchived {
			continue
		}
		if r.visible(channel, userID, role) {
			channels = append(channels, channel)
		}
	}
	sort.Slice(channels, func(i, j int) bool { return channels[i].CreatedAt.Before(channels[j].CreatedAt) })
	return channels, nil
}

func (r *memChannels) visible(channel domain.Channel, userID string, role domain.Role) bool {
	if channel.Type == domain.ChannelTypeGeneral {
		return true
	}
	if containsID(channel.ParticipantIDs, userID) {
		return true
	}
	if channel.Type != domain.ChannelTypeProject || channel.ProjectID == nil {
		return false
	}
	project, ok := r.m.projects[*channel.ProjectID]
	if !ok || project.IsDeleted {
		return false
	}
	if role == domain.RoleClient {
		client, ok := r.m.clients[project.ClientID]
		return ok && !client.IsDeleted && containsID(client.ContactIDs, userID)
	}
	return containsID(project.MemberIDs, userID)
}

func (r *memChannels) CreateMessage(ctx context.Context, message *domain.Message) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.messages[message.ID] = *message
	return nil
}

func (r *memChannels) ListMessages(ctx context.Context, channelID string) ([]domain.Message, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	messages := []domain.Message{}
	for _, message := range r.m.messages {
		if message.ChannelID == channelID {
			messages = append(messages, message)
		}
	}
	sort.Slice(messages, func(i, j int) bool { return messages[i].CreatedAt.Before(messages[j].CreatedAt) })
	return messages, nil
}

type memFiles struct{ m *Memory }

func (r *memFiles) Create(ctx context.Context, file *domain.File) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.files[file.ID] = *file
	return nil
}

func (r *memFiles) List(ctx context.Context, filter FileFilter) ([]domain.File, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	files := []domain.File{}
	for _, file := range r.m.files {
		if file.IsDeleted {
			continue
		}
		if filter.ClientID != nil && (file.ClientID == nil || *file.ClientID != *filter.ClientID) {
			continue
		}
		if filter.ProjectID != nil && (file.ProjectID == nil || *file.ProjectID != *filter.ProjectID) {
			continue
		}
		files = append(files, file)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].CreatedAt.After(files[j].CreatedAt) })
	return files, nil
}

func (r *memFiles) NextVersion(ctx context.Context, name string, clientID, projectID *string) (int, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	max := 0
	for _, file := range r.m.files {
		if file.Name != name || !samePtr(file.ClientID, clientID) || !samePtr(file.ProjectID, projectID) {
			continue
		}
		if file.Version > max {
			max = file.Version
		}
	}
	return max + 1, nil
}

func samePtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (r *memFiles) SoftDelete(ctx context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	file, ok := r.m.files[id]
	if !ok || file.IsDeleted {
		return apperr.NotFound("file")
	}
	file.IsDeleted = true
	r.m.files[id] = file
	return nil
}

type memNotifications struct{ m *Memory }

func (r *memNotifications) Create(ctx context.Context, notification *domain.Notification) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.notifications[notification.ID] = *notification
	return nil
}

func (r *memNotifications) CreateBatch(ctx context.Context, notifications []domain.Notification) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, notification := range notifications {
		r.m.notifications[notification.ID] = notification
	}
	return nil
}

func (r *memNotifications) ListByUser(ctx context.Context, userID string) ([]domain.Notification, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	notifications := []domain.Notification{}
	for _, notification := range r.m.notifications {
		if notification.UserID == userID {
			notifications = append(notifications, notification)
		}
	}
	sort.Slice(notifications, func(i, j int) bool {
		return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
	})
	return notifications, nil
}

func (r *memNotifications) MarkRead(ctx context.Context, userID string, ids []string, at time.Time) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for id, notification := range r.m.notifications {
		if notification.UserID != userID || notification.ReadAt != nil {
			continue
		}
		if len(ids) > 0 && !containsID(ids, id) {
			continue
		}
		notification.ReadAt = &at
		r.m.notifications[id] = notification
	}
	return nil
}
