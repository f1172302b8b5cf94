// Package web exposes the review, study and source operations as a JSON
// API. It shapes requests and responses only; all domain behavior lives
// in the service layer.
package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/deckard-app/deckard/internal/deckimport"
	"github.com/deckard-app/deckard/internal/domain"
	"github.com/deckard-app/deckard/internal/service"
	"github.com/deckard-app/deckard/internal/storage"
)

const (
	defaultPracticeLimit = 20
	defaultFeedLimit     = 20
)

// Server holds the dependencies for the HTTP API.
type Server struct {
	echo     *echo.Echo
	db       *storage.DB
	reviews  *service.ReviewService
	study    *service.StudyService
	reposDir string
}

type requestValidator struct {
	validate *validator.Validate
}

func (rv *requestValidator) Validate(i interface{}) error {
	if err := rv.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// NewServer creates and configures a new API server.
func NewServer(db *storage.DB, reviews *service.ReviewService, study *service.StudyService, reposDir string) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &requestValidator{validate: validator.New()}
	e.Use(middleware.Recover())

	s := &Server{
		echo:     e,
		db:       db,
		reviews:  reviews,
		study:    study,
		reposDir: reposDir,
	}
	s.routes()
	return s
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Start listens on addr until the server is shut down.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// routes sets up the routing for the server.
func (s *Server) routes() {
	api := s.echo.Group("/api/v1")

	api.GET("/decks", s.handleListDecks)
	api.GET("/decks/:id/due", s.handleDue)
	api.GET("/decks/:id/practice", s.handlePractice)
	api.GET("/decks/:id/stats", s.handleDeckStats)
	api.GET("/stats", s.handleUserStats)
	api.GET("/activity", s.handleActivity)
	api.POST("/reviews", s.handleSubmitReviews)

	api.GET("/sources", s.handleListSources)
	api.POST("/sources", s.handleAddSource)
	api.DELETE("/sources/:id", s.handleDeleteSource)
	api.POST("/sync", s.handleSync)
}

// httpError maps service errors onto status codes.
func httpError(err error) error {
	switch {
	case errors.Is(err, service.ErrCardNotFound), errors.Is(err, service.ErrDeckNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrEmptyBatch),
		errors.Is(err, service.ErrInvalidQuality),
		errors.Is(err, service.ErrInvalidLimit),
		errors.Is(err, service.ErrInvalidRange):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	slog.Error("request failed", "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
}

type deckResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

func (s *Server) handleListDecks(c echo.Context) error {
	decks, err := s.db.ListDecks(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	out := make([]deckResponse, 0, len(decks))
	for _, d := range decks {
		out = append(out, deckResponse{ID: d.ID, Name: d.Name, CreatedAt: d.CreatedAt})
	}
	return c.JSON(http.StatusOK, out)
}

type cardResponse struct {
	ID    string `json:"id"`
	Front string `json:"front"`
	Back  string `json:"back"`
}

func cardResponses(cards []domain.Card) []cardResponse {
	out := make([]cardResponse, 0, len(cards))
	for _, card := range cards {
		out = append(out, cardResponse{ID: card.ID, Front: card.Front, Back: card.Back})
	}
	return out
}

func (s *Server) handleDue(c echo.Context) error {
	limit, err := limitParam(c, 0)
	if err != nil {
		return err
	}
	cards, err := s.study.DueCards(c.Request().Context(), c.Param("id"), limit)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, cardResponses(cards))
}

func (s *Server) handlePractice(c echo.Context) error {
	limit, err := limitParam(c, defaultPracticeLimit)
	if err != nil {
		return err
	}
	cards, err := s.study.Practice(c.Request().Context(), c.Param("id"), limit)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, cardResponses(cards))
}

func (s *Server) handleDeckStats(c echo.Context) error {
	rng := service.NamedRange(c.QueryParam("range"))
	if rng == "" {
		rng = service.RangeWeek
	}
	from, to, err := rng.Resolve(time.Now())
	if err != nil {
		return httpError(err)
	}
	got, err := s.study.RangeStats(c.Request().Context(), c.Param("id"), from, to)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, got)
}

func (s *Server) handleUserStats(c echo.Context) error {
	got, err := s.study.UserStats(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, got)
}

func (s *Server) handleActivity(c echo.Context) error {
	limit, err := limitParam(c, defaultFeedLimit)
	if err != nil {
		return err
	}
	feed, err := s.study.RecentActivity(c.Request().Context(), limit)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, feed)
}

type reviewItem struct {
	CardID  string `json:"cardId" validate:"required"`
	Quality string `json:"quality" validate:"required,oneof=again hard good easy"`
}

type submitReviewsRequest struct {
	Reviews    []reviewItem `json:"reviews" validate:"required,min=1,dive"`
	ReviewedAt *time.Time   `json:"reviewedAt"`
	Practice   bool         `json:"practice"`
}

type reviewStateResponse struct {
	CardID      string     `json:"cardId"`
	Repetitions int        `json:"repetitions"`
	Interval    int        `json:"interval"`
	EaseFactor  float64    `json:"easeFactor"`
	Status      string     `json:"status"`
	NextReview  *time.Time `json:"nextReview"`
}

func (s *Server) handleSubmitReviews(c echo.Context) error {
	var req submitReviewsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	sub := service.SubmitRequest{Practice: req.Practice}
	if req.ReviewedAt != nil {
		sub.ReviewedAt = *req.ReviewedAt
	}
	for _, item := range req.Reviews {
		quality, ok := domain.ParseQuality(item.Quality)
		if !ok {
			return echo.NewHTTPError(http.StatusBadRequest, "unknown quality "+item.Quality)
		}
		sub.Reviews = append(sub.Reviews, service.ReviewInput{CardID: item.CardID, Quality: quality})
	}

	results, err := s.reviews.Submit(c.Request().Context(), sub)
	if err != nil {
		return httpError(err)
	}

	out := make([]reviewStateResponse, 0, len(results))
	for _, r := range results {
		out = append(out, reviewStateResponse{
			CardID:      r.CardID,
			Repetitions: r.State.Repetitions,
			Interval:    r.State.Interval,
			EaseFactor:  r.State.EaseFactor,
			Status:      string(r.State.Status),
			NextReview:  r.State.NextReview,
		})
	}
	return c.JSON(http.StatusOK, out)
}

type sourceResponse struct {
	ID          int64      `json:"id"`
	Path        string     `json:"path"`
	Kind        string     `json:"kind"`
	LastScanned *time.Time `json:"lastScanned"`
}

func (s *Server) handleListSources(c echo.Context) error {
	sources, err := s.db.GetAllSources(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	out := make([]sourceResponse, 0, len(sources))
	for _, src := range sources {
		resp := sourceResponse{ID: src.ID, Path: src.Path, Kind: src.Kind}
		if src.LastScanned.Valid {
			t := src.LastScanned.Time
			resp.LastScanned = &t
		}
		out = append(out, resp)
	}
	return c.JSON(http.StatusOK, out)
}

type addSourceRequest struct {
	Path string `json:"path" validate:"required"`
}

func (s *Server) handleAddSource(c echo.Context) error {
	var req addSourceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	id, err := s.db.InsertSource(c.Request().Context(), req.Path, deckimport.SourceKind(req.Path))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, map[string]int64{"id": id})
}

func (s *Server) handleDeleteSource(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid source ID")
	}
	if err := s.db.DeleteSource(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleSync(c echo.Context) error {
	// Run in the foreground so the caller sees a consistent deck list
	// right after the response.
	if err := deckimport.RunSync(c.Request().Context(), s.db, s.reposDir); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// limitParam reads the optional positive ?limit= parameter.
func limitParam(c echo.Context, fallback int) (int, error) {
	raw := c.QueryParam("limit")
	if raw == "" {
		return fallback, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
	}
	return limit, nil
}
