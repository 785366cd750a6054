package v1

import (
	"mockraft/internal/delivery/http/handler"
	"mockraft/internal/delivery/http/middleware"

	"github.com/gofiber/fiber/v3"
)

// Handlers is everything the v1 API mounts. A nil handler leaves its routes
// unregistered.
type Handlers struct {
	Auth        *handler.AuthHandler
	User        *handler.UserHandler
	Interview   *handler.InterviewHandler
	Session     *handler.SessionHandler
	Aptitude    *handler.AptitudeHandler
	Payment     *handler.PaymentHandler
	Leaderboard *handler.LeaderboardHandler
	Chat        *handler.ChatHandler

	AuthMiddleware *middleware.AuthMiddleware
	// AILimiter throttles endpoints that call the AI proxy or fetch job pages.
	AILimiter *middleware.RateLimiter
}

func Register(r fiber.Router, h Handlers) {
	if r == nil || h.AuthMiddleware == nil {
		return
	}

	if h.Auth != nil {
		h.Auth.RegisterRoutes(r.Group("/auth"))
	}

	protected := r.Group("", h.AuthMiddleware.Middleware())

	RegisterUsers(protected.Group("/users"), h.User)

	var limit fiber.Handler
	if h.AILimiter != nil {
		limit = h.AILimiter.Middleware()
	}
	RegisterInterviews(protected.Group("/interviews"), h.Interview, h.Session, limit)

	if h.Aptitude != nil {
		h.Aptitude.RegisterRoutes(protected.Group("/aptitude"))
	}
	if h.Payment != nil {
		h.Payment.RegisterRoutes(protected.Group("/payments"))
	}
	if h.Leaderboard != nil {
		h.Leaderboard.RegisterRoutes(protected.Group("/leaderboard"))
	}
	if h.Chat != nil {
		h.Chat.RegisterRoutes(protected.Group("/chat"))
	}
}
