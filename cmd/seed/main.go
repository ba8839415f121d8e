// Command seed loads a demo dataset: an admin, a developer, a client
// contact, one client account with a project and a few tasks, and the
// default general chat channel.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/agencyos/agencyos/internal/config"
	"github.com/agencyos/agencyos/internal/database"
	"github.com/agencyos/agencyos/internal/domain"
	"github.com/agencyos/agencyos/internal/repository"
	"github.com/agencyos/agencyos/pkg/auth"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	db, err := database.Connect(database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		slog.Error("connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx := context.Background()
	if err := database.Migrate(ctx, db); err != nil {
		slog.Error("apply schema", "error", err)
		os.Exit(1)
	}

	if err := seed(ctx, repository.NewPostgres(db)); err != nil {
		slog.Error("seed", "error", err)
		os.Exit(1)
	}
	slog.Info("seed complete")
}

func seed(ctx context.Context, store repository.Store) error {
	passwords := auth.NewPasswordManager()
	hash, err := passwords.HashPassword("Password123!")
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	capacity := 40.0

	admin := &domain.User{
		ID: uuid.NewString(), Email: "admin@agencyos.dev", Name: "Ada Admin",
		Role: domain.RoleAdmin, PasswordHash: hash, CreatedAt: now, UpdatedAt: now,
	}
	dev := &domain.User{
		ID: uuid.NewString(), Email: "dev@agencyos.dev", Name: "Devon Developer",
		Role: domain.RoleDeveloper, PasswordHash: hash, CapacityHrsPerWeek: &capacity,
		CreatedAt: now, UpdatedAt: now,
	}
	contact := &domain.User{
		ID: uuid.NewString(), Email: "client@acme.test", Name: "Cleo Contact",
		Role: domain.RoleClient, PasswordHash: hash, CreatedAt: now, UpdatedAt: now,
	}
	for _, user := range []*domain.User{admin, dev, contact} {
		if err := store.Users().Create(ctx, user); err != nil {
			return err
		}
	}

	acmeDomain := "acme.test"
	client := &domain.Client{
		ID: uuid.NewString(), Name: "Acme Corp", NameNormalized: "acme corp",
		Domain: &acmeDomain, Stage: domain.ClientStageActive, Priority: domain.PriorityHigh,
		ContactIDs: []string{contact.ID}, CreatedAt: now, UpdatedAt: now,
	}
	if err := store.Clients().Create(ctx, client); err != nil {
		return err
	}

	due := now.AddDate(0, 1, 0)
	project := &domain.Project{
		ID: uuid.NewString(), ClientID: client.ID, Name: "Website Relaunch",
		Stage: domain.ProjectStageBuild, Priority: domain.PriorityHigh, DueDate: &due,
		MemberIDs: []string{dev.ID}, CreatedAt: now, UpdatedAt: now,
	}
	if err := store.Projects().Create(ctx, project); err != nil {
		return err
	}

	titles := []string{"Design homepage", "Implement CMS integration", "Set up CI pipeline"}
	for i, title := range titles {
		task := &domain.Task{
			ID: uuid.NewString(), ProjectID: project.ID, Title: title,
			Status: domain.TaskStatusTodo, Priority: domain.PriorityMedium,
			OrderIndex: i, AssigneeIDs: []string{dev.ID},
			CreatedAt: now, UpdatedAt: now,
		}
		if err := store.Tasks().Create(ctx, task); err != nil {
			return err
		}
	}

	general := &domain.Channel{
		ID: uuid.NewString(), Type: domain.ChannelTypeGeneral, Name: "general",
		ParticipantIDs: []string{}, CreatedAt: now,
	}
	return store.Channels().Create(ctx, general)
}
