package v1

import (
	"mockraft/internal/delivery/http/handler"

	"github.com/gofiber/fiber/v3"
)

// RegisterInterviews mounts interview CRUD and the session flow on the same
// group, both keyed by the interview id.
func RegisterInterviews(r fiber.Router, interviews *handler.InterviewHandler, sessions *handler.SessionHandler, limit fiber.Handler) {
	if r == nil {
		return
	}

	if interviews != nil {
		interviews.RegisterRoutes(r, limit)
	}
	if sessions != nil {
		sessions.RegisterRoutes(r, limit)
	}
}
