package web

import (
	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"

	"github.com/sahayakhq/sahayak/pkg/models"
)

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func notFound(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(404).
		WithInstance(c.Path()).
		WithType("not_found").
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

// internalError deliberately carries no detail from the underlying error:
// wrapped errors name catalog ids and upstream services, which must not reach
// clients. Callers log the specifics before returning this.
func internalError(c fiber.Ctx) error {
	problem := problems.NewStatusProblem(500).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithDetail("Something went wrong while processing your request. Please try again.")

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

// chatFailure keeps the chat response shape even on internal errors so
// clients can always render the reply. Details stay in the logs.
func chatFailure(c fiber.Ctx, sessionID string) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"session_id": sessionID,
		"response":   "Something went wrong while processing your request. Please try again.",
		"ui_tags":    []*models.Component{},
		"id":         nil,
	})
}
