package server

import (
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v2"

	"github.com/lox/cardcricket/internal/game"
)

const defaultHistoryLimit = 20

// API exposes a Service over HTTP.
type API struct {
	svc    *Service
	app    *fiber.App
	logger *log.Logger
}

type startRequest struct {
	BattingFirst *game.Side `json:"batting_first"`
}

type tossRequest struct {
	Call *game.Coin `json:"call"`
}

type roundRequest struct {
	CardID *int `json:"card_id"`
}

// NewAPI builds the Fiber app and registers routes.
func NewAPI(svc *Service, logger *log.Logger) *API {
	a := &API{
		svc:    svc,
		logger: logger.WithPrefix("api"),
	}
	a.app = fiber.New(fiber.Config{
		AppName:               "cardcricket",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler:          a.handleError,
	})
	a.app.Use(a.logRequests)

	a.app.Post("/matches", a.startMatch)
	a.app.Post("/matches/toss", a.toss)
	a.app.Get("/matches/:id", a.getMatch)
	a.app.Post("/matches/:id/rounds", a.resolveRound)
	a.app.Get("/matches/:id/cards", a.availableCards)
	a.app.Delete("/matches/:id", a.endMatch)
	a.app.Get("/cards", a.cards)
	a.app.Get("/strategy", a.strategy)
	a.app.Get("/history", a.history)
	return a
}

// App returns the underlying Fiber app, for tests and embedding.
func (a *API) App() *fiber.App { return a.app }

// Listen serves until Shutdown is called.
func (a *API) Listen(addr string) error {
	a.logger.Info("Listening", "addr", addr)
	return a.app.Listen(addr)
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (a *API) Shutdown() error {
	return a.app.Shutdown()
}

func (a *API) logRequests(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	a.logger.Debug("Request",
		"method", c.Method(),
		"path", c.Path(),
		"status", c.Response().StatusCode(),
		"duration", time.Since(start))
	return err
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, ErrMatchNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, game.ErrInvalidPhase):
		return fiber.StatusConflict
	case errors.Is(err, game.ErrAlreadyUsed):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, game.ErrUnknownCard):
		return fiber.StatusBadRequest
	case errors.Is(err, game.ErrNoCardAvailable):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

func (a *API) handleError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status >= fiber.StatusInternalServerError {
		a.logger.Error("Request failed", "path", c.Path(), "error", err)
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func (a *API) startMatch(c *fiber.Ctx) error {
	var req startRequest
	if err := c.BodyParser(&req); err != nil || req.BattingFirst == nil {
		return fiber.NewError(fiber.StatusBadRequest, "batting_first must be player or computer")
	}
	state, err := a.svc.StartMatch(c.UserContext(), *req.BattingFirst)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(state)
}

func (a *API) toss(c *fiber.Ctx) error {
	var req tossRequest
	if err := c.BodyParser(&req); err != nil || req.Call == nil {
		return fiber.NewError(fiber.StatusBadRequest, "call must be heads or tails")
	}
	return c.JSON(a.svc.Toss(*req.Call))
}

func (a *API) getMatch(c *fiber.Ctx) error {
	state, err := a.svc.GetState(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(state)
}

func (a *API) resolveRound(c *fiber.Ctx) error {
	var req roundRequest
	if err := c.BodyParser(&req); err != nil || req.CardID == nil {
		return fiber.NewError(fiber.StatusBadRequest, "card_id is required")
	}
	state, err := a.svc.ResolveRound(c.UserContext(), c.Params("id"), *req.CardID)
	if err != nil {
		return err
	}
	return c.JSON(state)
}

func (a *API) availableCards(c *fiber.Ctx) error {
	cards, err := a.svc.Available(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(cards)
}

func (a *API) endMatch(c *fiber.Ctx) error {
	if err := a.svc.EndMatch(c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (a *API) cards(c *fiber.Ctx) error {
	cards, err := a.svc.Cards(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(cards)
}

func (a *API) strategy(c *fiber.Ctx) error {
	return c.JSON(a.svc.Strategy())
}

func (a *API) history(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", defaultHistoryLimit)
	recs, err := a.svc.History(c.UserContext(), limit)
	if err != nil {
		return err
	}
	return c.JSON(recs)
}
