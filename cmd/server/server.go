package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Simplici0/supportquote/internal/money"
	"github.com/Simplici0/supportquote/internal/pricing"
	"github.com/Simplici0/supportquote/internal/session"
)

const maxBodyBytes = 1 << 20

type ctxKey int

const sessionIDKey ctxKey = iota

type server struct {
	log      *zap.Logger
	calc     *pricing.Calculator
	sessions session.Store
	cookies  *cookieSigner
	defaults pricing.Defaults
	now      func() time.Time
}

func newServer(calc *pricing.Calculator, sessions session.Store, cookies *cookieSigner, defaults pricing.Defaults, log *zap.Logger) *server {
	return &server{
		log:      log,
		calc:     calc,
		sessions: sessions,
		cookies:  cookies,
		defaults: defaults,
		now:      time.Now,
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Post("/calculate", s.handleCalculate)

	r.Route("/reference", func(r chi.Router) {
		r.Get("/countries", s.handleCountries)
		r.Get("/offerings", s.handleOfferings)
		r.Get("/risk-levels", s.handleRiskLevels)
		r.Get("/service-levels", s.handleServiceLevels)
		r.Get("/labor-rates", s.handleLaborRates)
	})

	r.Post("/quotes", s.handleNewQuote)
	r.Route("/quote", func(r chi.Router) {
		r.Use(s.sessionMiddleware)
		r.Get("/", s.handleGetQuote)
		r.Put("/", s.handleUpdateQuote)
		r.Delete("/", s.handleDeleteQuote)
		r.Post("/services", s.handleAddService)
		r.Put("/services/{index}", s.handleUpdateService)
		r.Delete("/services/{index}", s.handleRemoveService)
		r.Post("/labor", s.handleAddLabor)
		r.Put("/labor/{index}", s.handleUpdateLabor)
		r.Delete("/labor/{index}", s.handleRemoveLabor)
		r.Post("/import", s.handleImport)
		r.Get("/export.xlsx", s.handleExportXLSX)
		r.Get("/text", s.handleQuoteText)
	})

	return r
}

func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

// sessionMiddleware rejects requests without a valid signed session cookie
// and stores the session ID in the request context.
func (s *server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := s.cookies.sessionID(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "no active quote session, POST /quotes first")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionIDKey, id)))
	})
}

func sessionIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(sessionIDKey).(string)
	return id
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// quoteView is the response for every quote read or edit.
type quoteView struct {
	Quote   *pricing.Quote `json:"quote"`
	Result  pricing.Result `json:"result"`
	Display money.Display  `json:"display"`
}

func (s *server) view(q *pricing.Quote) quoteView {
	res := s.calc.Calculate(*q)
	return quoteView{
		Quote:   q,
		Result:  res,
		Display: money.Present(res.Totals, res.Country, q.CurrencyMode),
	}
}

// exchangeRate is the rate in effect for the quote's country.
func (s *server) exchangeRate(country string) float64 {
	return s.calc.Country(country, nil).ExchangeRate
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("request body is empty")
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

func parseIndex(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "index")
	index, err := strconv.Atoi(raw)
	if err != nil || index < 0 {
		return 0, fmt.Errorf("index must be a non-negative integer, got %q", raw)
	}
	return index, nil
}
