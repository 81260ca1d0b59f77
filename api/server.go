// Package api provides the HTTP REST API server for tradelens.
//
// It exposes endpoints for calendar ingestion, event queries, trade
// correlation, macro news, and WebSocket streaming of ingest progress.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/phuslu/log"

	"github.com/openquants/tradelens/internal/calendar"
	"github.com/openquants/tradelens/internal/config"
	"github.com/openquants/tradelens/internal/correlate"
	"github.com/openquants/tradelens/internal/news"
	"github.com/openquants/tradelens/internal/store"
	"github.com/openquants/tradelens/pkg/models"
)

// Server is the HTTP API server.
type Server struct {
	router  chi.Router
	cfg     *config.Config
	store   *store.Store
	fetcher *calendar.Fetcher
	news    *news.Service
	wsHub   *WSHub
}

// NewServer creates a configured API server with all routes and middleware.
func NewServer(cfg *config.Config, st *store.Store) *Server {
	feeds := make([]news.FeedSource, 0, len(cfg.News.Feeds))
	for _, f := range cfg.News.Feeds {
		feeds = append(feeds, news.FeedSource{Name: f.Name, URL: f.URL})
	}

	srv := &Server{
		cfg:     cfg,
		store:   st,
		fetcher: calendar.NewFetcher(cfg.Source.URL),
		news:    news.NewService(feeds),
		wsHub:   NewWSHub(),
	}
	srv.router = srv.buildRouter()
	return srv
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe starts the HTTP server with graceful shutdown.
func (s *Server) ListenAndServe(addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go s.wsHub.Run()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Str("addr", addr).Msg("API server listening")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	<-done
	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return httpSrv.Shutdown(ctx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// Ingestion
		r.Post("/ingest", s.handleIngest)

		// Events
		r.Get("/events", s.handleEvents)

		// Correlation
		r.Post("/correlate", s.handleCorrelate)
		r.Post("/correlate/batch", s.handleCorrelateBatch)

		// News
		r.Get("/news", s.handleNews)

		// Status
		r.Get("/status", s.handleStatus)

		// Runtime configuration
		r.Get("/config", s.handleGetConfig)
		r.Put("/config", s.handleUpdateConfig)

		// WebSocket
		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// --- Handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ingestRequest triggers an ingestion pass. Either markup is supplied
// inline (e.g. from a browser extension) or the configured source is
// fetched for the given date.
type ingestRequest struct {
	Date   string `json:"date"`             // YYYY-MM-DD, defaults to today
	Markup string `json:"markup,omitempty"` // raw page markup, skips the fetch
}

type ingestResponse struct {
	Report *calendar.Report `json:"report"`
	Stored int              `json:"stored"`
	NoData bool             `json:"no_data"`
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	day := time.Now().UTC()
	if req.Date != "" {
		var err error
		day, err = time.Parse("2006-01-02", req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid date %q: %w", req.Date, err))
			return
		}
	}

	markup := req.Markup
	if markup == "" {
		if s.cfg.Source.URL == "" {
			writeError(w, http.StatusBadRequest, fmt.Errorf("no markup supplied and no source URL configured"))
			return
		}
		var err error
		markup, err = s.fetcher.FetchPage(r.Context(), day)
		if err != nil {
			writeError(w, http.StatusBadGateway, err)
			return
		}
	}

	// The requested date anchors the year for date tokens that carry none.
	extractor := calendar.NewExtractor(
		calendar.WithTitleColumn(s.cfg.Calendar.TitleColumn),
		calendar.WithReferenceYear(day.Year()),
	)
	events, report, err := extractor.Extract(markup)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	stored, err := s.store.UpsertEvents(r.Context(), events)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	log.Info().Int("stored", stored).Int("scanned", report.RowsScanned).
		Bool("tz_detected", report.TimezoneDetected).Msg("ingest complete")
	s.wsHub.Broadcast(WSMessage{Type: "ingest", Data: ingestResponse{Report: report, Stored: stored, NoData: report.NoData()}})

	writeJSON(w, http.StatusOK, ingestResponse{Report: report, Stored: stored, NoData: report.NoData()})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	day := r.URL.Query().Get("date")
	if day == "" {
		day = time.Now().UTC().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", day); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid date %q: %w", day, err))
		return
	}

	var currencies, impacts []string
	if c := r.URL.Query().Get("currency"); c != "" {
		currencies = []string{c}
	}
	if i := r.URL.Query().Get("impact"); i != "" {
		impacts = []string{i}
	}

	events, err := s.store.EventsByDay(r.Context(), day, currencies, impacts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"date": day, "events": events})
}

// correlateRequest asks for the events relevant to one trade.
type correlateRequest struct {
	Date    string `json:"date"`    // YYYY-MM-DD
	Session string `json:"session"` // empty means full day
}

func (s *Server) handleCorrelate(w http.ResponseWriter, r *http.Request) {
	var req correlateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid date %q: %w", req.Date, err))
		return
	}

	bc := correlate.NewBatchCorrelator(s.store, s.cfg.Calendar.Currencies, 1)
	results, err := bc.Run(r.Context(), singleTrade{date: date, session: req.Session})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"date":    req.Date,
		"session": req.Session,
		"events":  results[0].Events,
	})
}

// batchRequest carries many trades at once.
type batchRequest struct {
	Trades []struct {
		TradeID string `json:"trade_id"`
		Date    string `json:"date"`
		Session string `json:"session"`
	} `json:"trades"`
}

func (s *Server) handleCorrelateBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	trades := make([]models.TradeSessionContext, 0, len(req.Trades))
	for _, t := range req.Trades {
		date, err := time.Parse("2006-01-02", t.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid date %q for trade %q", t.Date, t.TradeID))
			return
		}
		trades = append(trades, models.TradeSessionContext{TradeID: t.TradeID, Date: date, Session: t.Session})
	}

	bc := correlate.NewBatchCorrelator(s.store, s.cfg.Calendar.Currencies, s.cfg.Correlate.Workers)
	results, err := bc.Run(r.Context(), staticTrades(trades))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	limit := s.cfg.News.Limit
	if q := r.URL.Query().Get("limit"); q != "" {
		fmt.Sscanf(q, "%d", &limit)
	}
	headlines, err := s.news.Headlines(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"headlines": headlines})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	today := time.Now().UTC().Format("2006-01-02")
	count, err := s.store.CountByDay(r.Context(), today)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"events_today": count,
		"ws_clients":   s.wsHub.ClientCount(),
	})
}

// --- Trade sources for the correlate handlers ---

// singleTrade adapts one (date, session) pair to the TradeSource interface.
type singleTrade struct {
	date    time.Time
	session string
}

func (t singleTrade) Trades(_ context.Context) ([]models.TradeSessionContext, error) {
	return []models.TradeSessionContext{{Date: t.date, Session: t.session}}, nil
}

// staticTrades adapts an in-memory trade list to the TradeSource interface.
type staticTrades []models.TradeSessionContext

func (t staticTrades) Trades(_ context.Context) ([]models.TradeSessionContext, error) {
	return t, nil
}

// --- Response helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
