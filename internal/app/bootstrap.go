package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mockraft/internal/config"
	"mockraft/internal/delivery/http/handler"
	"mockraft/internal/delivery/http/middleware"
	"mockraft/internal/delivery/http/routes"
	v1 "mockraft/internal/delivery/http/routes/v1"
	"mockraft/internal/scheduler"
	"mockraft/internal/usecase"
	"mockraft/internal/ws"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
)

const (
	jobPaymentExpiry     = "payment_expiry"
	jobLeaderboardWarmup = "leaderboard_warmup"
)

type App struct {
	Fiber     *fiber.App
	Container *Container
	Scheduler *scheduler.Scheduler
}

// New builds the HTTP application on top of an existing container. baseCtx
// bounds the lifetime of websocket message handling.
func New(c *Container, baseCtx context.Context) *App {
	f := fiber.New(fiber.Config{
		AppName:   c.Config.App.AppName,
		BodyLimit: 1 << 20,
	})

	registerGlobalMiddleware(f, c.Logger)
	registerRoutes(f, c, baseCtx)

	return &App{Fiber: f, Container: c}
}

// Bootstrap connects every dependency, starts the ws hub and the scheduler,
// and returns the app with a cleanup that tears them down in reverse order.
func Bootstrap(cfg config.Config, logger *logrus.Logger) (*App, func() error, error) {
	c, err := NewContainer(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	baseCtx, cancel := context.WithCancel(context.Background())
	go c.Hub.Run(baseCtx)

	app := New(c, baseCtx)

	sched, err := newScheduler(cfg.Scheduler, c.Payments, c.Leaderboard, logger)
	if err != nil {
		cancel()
		_ = c.Close()
		return nil, nil, err
	}
	sched.Start()
	app.Scheduler = sched

	cleanup := func() error {
		stopCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
		defer stop()
		sched.Stop(stopCtx)
		cancel()
		return c.Close()
	}
	return app, cleanup, nil
}

func registerGlobalMiddleware(app *fiber.App, logger *logrus.Logger) {
	if app == nil {
		return
	}

	errMw := middleware.NewErrorMiddleware(logger)
	app.Use(errMw.Middleware())

	accessLog := middleware.NewAccessLogMiddleware(logger)
	app.Use(accessLog.Middleware())

	app.Use(middleware.Metrics())
}

func registerRoutes(app *fiber.App, c *Container, baseCtx context.Context) {
	if app == nil || c == nil {
		return
	}

	api := v1.Handlers{
		Auth:           handler.NewAuthHandler(c.Auth),
		User:           handler.NewUserHandler(c.Users),
		Interview:      handler.NewInterviewHandler(c.Interviews),
		Session:        handler.NewSessionHandler(c.Sessions),
		Aptitude:       handler.NewAptitudeHandler(c.Aptitude),
		Payment:        handler.NewPaymentHandler(c.Payments),
		Leaderboard:    handler.NewLeaderboardHandler(c.Leaderboard),
		Chat:           handler.NewChatHandler(c.Chat),
		AuthMiddleware: middleware.NewAuthMiddleware(c.JWT),
		AILimiter:      middleware.NewRateLimiter(aiRequestsPerMinute(c.Config.AI), 3),
	}

	chatWS := ws.NewHandler(baseCtx, c.Hub, chatAuth(c.Chat), chatMessage(c.Chat), c.Logger)
	health := handler.NewHealthHandler(c.DB, c.Cache)

	routes.NewRegistry(health, chatWS, api).Register(app)
}

// aiRequestsPerMinute gives each user a share of the upstream AI budget.
func aiRequestsPerMinute(cfg config.AIConfig) int {
	if cfg.RatePerMinute <= 0 {
		return 10
	}
	n := cfg.RatePerMinute / 2
	if n < 1 {
		n = 1
	}
	return n
}

func chatAuth(uc usecase.ChatUsecase) ws.AuthFunc {
	return func(ctx context.Context, token string) (ws.Identity, error) {
		id, err := uc.Authenticate(ctx, token)
		if err != nil {
			return ws.Identity{}, err
		}
		return ws.Identity{UserID: id.UserID, Name: id.Name}, nil
	}
}

func chatMessage(uc usecase.ChatUsecase) ws.MessageFunc {
	return func(ctx context.Context, c *ws.Client, body string) error {
		_, err := uc.Post(ctx, usecase.ChatIdentity{UserID: c.UserID, Name: c.Name}, body)
		return err
	}
}

func newScheduler(cfg config.SchedulerConfig, payments usecase.PaymentUsecase, board usecase.LeaderboardUsecase, logger *logrus.Logger) (*scheduler.Scheduler, error) {
	s := scheduler.New(logger)

	if err := s.Add(jobPaymentExpiry, cfg.PaymentExpirySpec, func(ctx context.Context) error {
		n, err := payments.ExpireStale(ctx)
		if err != nil {
			return err
		}
		if n > 0 && logger != nil {
			logger.Printf("[Scheduler] expired stale payments count=%d", n)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	if err := s.Add(jobLeaderboardWarmup, cfg.LeaderboardWarmupSpec, board.Warm); err != nil {
		return nil, err
	}

	return s, nil
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
