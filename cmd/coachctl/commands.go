package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"alcyxob/coaching-api/internal/cache"
	"alcyxob/coaching-api/internal/config"
	"alcyxob/coaching-api/internal/domain"
	"alcyxob/coaching-api/internal/logging"
	"alcyxob/coaching-api/internal/repository"
	"alcyxob/coaching-api/internal/repository/mongo"
	"alcyxob/coaching-api/internal/service"

	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
	"golang.org/x/crypto/bcrypt"
)

const commandTimeout = 30 * time.Second

// Env is shared by every command. Repositories are opened on first use so
// commands that need no database never dial it.
type Env struct {
	ConfigDir string
	LogLevel  string
	Out       io.Writer

	users     repository.UserRepository
	plans     repository.TrainingPlanRepository
	templates repository.TemplateRepository
	closeDB   func() error
}

func (e *Env) open() error {
	if e.users != nil {
		return nil
	}
	logging.Setup(logging.LoggerSetupParams{LogToStdout: true, LogLevel: e.LogLevel})

	cfg, err := config.LoadConfig(e.ConfigDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	client, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		return fmt.Errorf("connect to mongo: %w", err)
	}
	db := client.Database(cfg.Database.Name)
	e.users = mongo.NewMongoUserRepository(db)
	e.plans = mongo.NewMongoTrainingPlanRepository(db)
	e.templates = mongo.NewMongoTemplateRepository(db)
	e.closeDB = func() error { return mongo.DisconnectDB(client) }
	return nil
}

func (e *Env) close(err error) error {
	if e.closeDB == nil {
		return err
	}
	return multierr.Append(err, e.closeDB())
}

type SeedTemplatesCmd struct {
	DryRun bool `help:"List the templates without writing them."`
}

func (c *SeedTemplatesCmd) Run(env *Env) (err error) {
	templates := PredefinedTemplates()
	if c.DryRun {
		for _, t := range templates {
			fmt.Fprintf(env.Out, "%-20s %-14s %d sessions\n", t.Name, t.PredefinedCategory, len(t.Sessions))
		}
		return nil
	}

	if err := env.open(); err != nil {
		return err
	}
	defer func() { err = env.close(err) }()

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	svc := service.NewTemplateService(env.templates, env.plans, cache.New(1, time.Minute))
	created, err := svc.SeedPredefined(ctx, templates)
	if err != nil {
		return err
	}
	fmt.Fprintf(env.Out, "seeded %d of %d predefined templates\n", created, len(templates))
	return nil
}

type CreateCoachCmd struct {
	Email    string `arg:"" help:"Login email."`
	FullName string `arg:"" help:"Display name."`
	Password string `help:"Initial password." env:"COACH_PASSWORD" required:""`
}

func (c *CreateCoachCmd) Run(env *Env) (err error) {
	user, err := newCoach(c.Email, c.FullName, c.Password, bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if err := env.open(); err != nil {
		return err
	}
	defer func() { err = env.close(err) }()

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	id, err := env.users.Create(ctx, user)
	if errors.Is(err, repository.ErrDuplicate) {
		return service.ErrUserAlreadyExists
	}
	if err != nil {
		return err
	}
	log.Infof("coach %s created", user.Email)
	fmt.Fprintln(env.Out, id.Hex())
	return nil
}

// newCoach builds an already activated coach account.
func newCoach(email, fullName, password string, cost int) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	fullName = strings.TrimSpace(fullName)
	if email == "" || fullName == "" {
		return nil, fmt.Errorf("%w: email and full name are required", service.ErrInvalidInput)
	}
	if err := service.ValidatePassword(password); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return nil, err
	}
	return &domain.User{
		FullName:     fullName,
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleCoach,
		IsActive:     true,
	}, nil
}

type HashPasswordCmd struct {
	Password string `arg:"" help:"Password to hash."`
	Cost     int    `help:"bcrypt cost." default:"10"`
}

func (c *HashPasswordCmd) Run(env *Env) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(c.Password), c.Cost)
	if err != nil {
		return err
	}
	fmt.Fprintln(env.Out, string(hash))
	return nil
}
