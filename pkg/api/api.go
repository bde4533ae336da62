// Package api implements the REST API for evaluating expressions and reading
// the evaluation history.
package api

import (
	"fmt"
	"log"
	"math"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/lemonberrylabs/rpncalc/pkg/calc"
	"github.com/lemonberrylabs/rpncalc/pkg/store"
)

// Server is the HTTP API server.
type Server struct {
	app       *fiber.App
	store     *store.Store
	precision int
}

// New creates a new API server. precision is the number of significant digits
// used for the formatted result.
func New(s *store.Store, precision int) *Server {
	srv := &Server{
		store:     s,
		precision: precision,
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
	})

	app.Post("/v1/evaluate", srv.evaluate)
	app.Get("/v1/evaluations", srv.listEvaluations)
	app.Get("/v1/evaluations/:id", srv.getEvaluation)
	app.Delete("/v1/evaluations", srv.clearEvaluations)

	srv.app = app
	return srv
}

// Listen starts the HTTP server on the given address.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App returns the underlying Fiber app (useful for testing).
func (s *Server) App() *fiber.App {
	return s.app
}

type evaluateRequest struct {
	Expression string `json:"expression"`
}

func (s *Server) evaluate(c *fiber.Ctx) error {
	var req evaluateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    400,
				"message": fmt.Sprintf("invalid request body: %v", err),
				"status":  "INVALID_ARGUMENT",
			},
		})
	}

	ev, err := s.store.Evaluate(req.Expression, "http")
	if err != nil {
		log.Printf("Evaluation %s failed: %v", ev.ID, err)
		return c.Status(422).JSON(EvaluationToJSON(ev, s.precision))
	}
	return c.JSON(EvaluationToJSON(ev, s.precision))
}

func (s *Server) getEvaluation(c *fiber.Ctx) error {
	ev, err := s.store.GetEvaluation(c.Params("id"))
	if err != nil {
		return c.Status(404).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    404,
				"message": err.Error(),
				"status":  "NOT_FOUND",
			},
		})
	}
	return c.JSON(EvaluationToJSON(ev, s.precision))
}

func (s *Server) listEvaluations(c *fiber.Ctx) error {
	evaluations := s.store.ListEvaluations()

	items := make([]fiber.Map, len(evaluations))
	for i, ev := range evaluations {
		items[i] = EvaluationToJSON(ev, s.precision)
	}

	return c.JSON(fiber.Map{
		"evaluations": items,
	})
}

func (s *Server) clearEvaluations(c *fiber.Ctx) error {
	n := s.store.Clear()
	return c.JSON(fiber.Map{
		"deleted": n,
	})
}

// EvaluationToJSON renders a stored evaluation for API responses. Non-finite
// results cannot be encoded as JSON numbers, so only the formatted string is
// set for them.
func EvaluationToJSON(ev *store.Evaluation, precision int) fiber.Map {
	result := fiber.Map{
		"id":         ev.ID,
		"expression": ev.Expression,
		"cleaned":    ev.Cleaned,
		"state":      ev.State,
		"source":     ev.Source,
		"createTime": ev.CreateTime.Format(time.RFC3339),
	}

	if ev.Postfix != "" {
		result["postfix"] = ev.Postfix
	}
	if ev.State == store.EvaluationSucceeded {
		result["formatted"] = calc.FormatValue(ev.Result, precision)
		if !math.IsInf(ev.Result, 0) && !math.IsNaN(ev.Result) {
			result["result"] = ev.Result
		}
	}
	if ev.Error != nil {
		result["error"] = ev.Error.ToMap()
	}

	return result
}
