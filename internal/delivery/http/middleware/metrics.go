package middleware

import (
	"errors"

	"mockraft/internal/metrics"

	"github.com/gofiber/fiber/v3"
)

// Metrics records request counts and latency by route pattern, so path
// parameters do not explode label cardinality.
func Metrics() fiber.Handler {
	return func(c fiber.Ctx) error {
		done := metrics.RequestStarted()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			var appErr *AppError
			var fiberErr *fiber.Error
			switch {
			case errors.As(err, &appErr) && appErr.StatusCode > 0:
				status = appErr.StatusCode
			case errors.As(err, &fiberErr):
				status = fiberErr.Code
			default:
				status = fiber.StatusInternalServerError
			}
		}

		route := ""
		if r := c.Route(); r != nil {
			route = r.Path
		}
		done(c.Method(), route, status)
		return err
	}
}
