package app

import (
	"context"
	"errors"
	"time"

	"mockraft/internal/config"
	"mockraft/internal/database"
	dbpostgres "mockraft/internal/database/postgres"
	"mockraft/internal/infrastructure/ai"
	"mockraft/internal/infrastructure/cache"
	"mockraft/internal/infrastructure/jobposting"
	"mockraft/internal/infrastructure/notifier"
	paygw "mockraft/internal/infrastructure/payment"
	"mockraft/internal/infrastructure/persistence/postgres"
	"mockraft/internal/pkg/jwt"
	"mockraft/internal/repository"
	"mockraft/internal/usecase"
	"mockraft/internal/ws"

	"github.com/sirupsen/logrus"
)

// Container owns the long-lived dependencies of the server: connections,
// external clients and the usecases built on them.
type Container struct {
	Config config.Config
	Logger *logrus.Logger
	DB     database.DB
	Cache  *cache.Redis
	Hub    *ws.Hub
	JWT    jwt.Service

	Auth        *usecase.Auth
	Users       *usecase.User
	Interviews  *usecase.Interviews
	Sessions    *usecase.Sessions
	Aptitude    *usecase.Aptitude
	Payments    *usecase.Payments
	Leaderboard *usecase.Leaderboard
	Chat        *usecase.Chat
}

func NewContainer(cfg config.Config, logger *logrus.Logger) (*Container, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := dbpostgres.Connect(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	c := &Container{Config: cfg, Logger: logger, DB: db}

	c.Cache = cache.NewRedis(cfg.Redis, logger)
	if err := c.Cache.Ping(ctx); err != nil {
		logger.Warnf("[Container] Redis unreachable, cache and locks disabled: %v", err)
		_ = c.Cache.Close()
		c.Cache = cache.Disabled(logger)
	}

	plans, err := config.LoadPlans(cfg.PlansFile, cfg.Payment.Currency)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	c.Hub = ws.NewHub(logger)
	c.JWT = jwt.NewHMACService(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessExpiresIn,
		cfg.JWT.RefreshExpiresIn,
	)

	aiClient := ai.NewClient(cfg.AI, logger)
	if aiClient == nil {
		logger.Warn("[Container] AI_BASE_URL not set, interview generation and analysis disabled")
	}
	gateway := paygw.NewGateway(cfg.Payment, logger)
	if gateway == nil {
		logger.Warn("[Container] PAYMENT_BASE_URL not set, checkout disabled")
	}
	mailer := notifier.New(cfg.Email, cfg.App.AppName, logger)
	importer := jobposting.NewExtractor(cfg.JobPageHeadless, logger)

	userRepo := postgres.NewUserRepository(db)
	interviewRepo := repository.NewPostgresInterviewRepository(db)
	aptitudeRepo := repository.NewPostgresAptitudeRepository(db)
	paymentRepo := repository.NewPostgresPaymentRepository(db)
	leaderboardRepo := repository.NewPostgresLeaderboardRepository(db)
	chatRepo := repository.NewPostgresChatRepository(db)

	c.Leaderboard = usecase.NewLeaderboardUsecase(leaderboardRepo, userRepo, c.Cache, c.Hub, logger)
	c.Auth = usecase.NewAuthUsecase(userRepo, c.JWT)
	c.Users = usecase.NewUserUsecase(userRepo)
	c.Interviews = usecase.NewInterviewUsecase(interviewRepo, aiClient, importer, cfg.Interview.FreePlanLimit, logger)
	c.Sessions = usecase.NewSessionUsecase(usecase.SessionDeps{
		Interviews: interviewRepo,
		Users:      userRepo,
		AI:         aiClient,
		Cache:      c.Cache,
		Notifier:   mailer,
		Points:     c.Leaderboard,
		Workers:    cfg.Interview.AnalysisWorkers,
		AppName:    cfg.App.AppName,
		Logger:     logger,
	})
	c.Aptitude = usecase.NewAptitudeUsecase(aptitudeRepo, c.Cache, c.Leaderboard, logger)
	c.Payments = usecase.NewPaymentUsecase(usecase.PaymentDeps{
		Payments:   paymentRepo,
		Users:      userRepo,
		Gateway:    gateway,
		Cache:      c.Cache,
		Catalog:    plans,
		PendingTTL: cfg.Payment.PendingTTL,
		Logger:     logger,
	})
	c.Chat = usecase.NewChatUsecase(chatRepo, userRepo, c.JWT, c.Hub, logger)

	return c, nil
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.Cache != nil {
		errs = append(errs, c.Cache.Close())
	}
	if c.DB != nil {
		errs = append(errs, c.DB.Close())
	}
	return errors.Join(errs...)
}
