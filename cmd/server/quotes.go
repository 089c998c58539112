package main

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/Simplici0/supportquote/internal/pricing"
	"github.com/Simplici0/supportquote/internal/session"
)

// requestError is an edit rejected because of bad client input.
type requestError struct {
	msg string
}

func (e requestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return requestError{msg: fmt.Sprintf(format, args...)}
}

// loadQuote returns the session's quote, writing the error response itself
// when it cannot.
func (s *server) loadQuote(w http.ResponseWriter, r *http.Request) (*pricing.Quote, bool) {
	q, err := s.sessions.Get(r.Context(), sessionIDFrom(r.Context()))
	if errors.Is(err, session.ErrNotFound) {
		writeError(w, http.StatusNotFound, "quote session expired, POST /quotes to start again")
		return nil, false
	}
	if err != nil {
		s.log.Error("load session quote", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load quote")
		return nil, false
	}
	return q, true
}

// applyEdit loads the session's quote, applies edit and saves it. Editing
// is a full replace of the stored quote; the engine recomputes from scratch
// on the next read. The load and save are not locked together, so a session
// assumes one writer: of two concurrent edits to the same session, the last
// save wins and the other edit is lost.
func (s *server) applyEdit(w http.ResponseWriter, r *http.Request, edit func(q *pricing.Quote) error) (*pricing.Quote, bool) {
	q, ok := s.loadQuote(w, r)
	if !ok {
		return nil, false
	}

	if err := edit(q); err != nil {
		var reqErr requestError
		switch {
		case errors.Is(err, pricing.ErrLineNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.As(err, &reqErr):
			writeError(w, http.StatusBadRequest, reqErr.msg)
		default:
			s.log.Error("edit quote", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to edit quote")
		}
		return nil, false
	}

	if err := s.sessions.Save(r.Context(), sessionIDFrom(r.Context()), q); err != nil {
		s.log.Error("save session quote", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to save quote")
		return nil, false
	}
	return q, true
}

func (s *server) editQuote(w http.ResponseWriter, r *http.Request, status int, edit func(q *pricing.Quote) error) {
	q, ok := s.applyEdit(w, r, edit)
	if !ok {
		return
	}
	writeJSON(w, status, s.view(q))
}

func (s *server) handleNewQuote(w http.ResponseWriter, r *http.Request) {
	id := session.NewID()
	q := pricing.NewQuote(s.defaults, pricing.DateOf(s.now()))
	q.SyncDerived(s.exchangeRate(q.Country), nil)

	if err := s.sessions.Save(r.Context(), id, q); err != nil {
		s.log.Error("create session quote", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to create quote")
		return
	}

	s.cookies.setSessionCookie(w, id)
	writeJSON(w, http.StatusCreated, s.view(q))
}

func (s *server) handleGetQuote(w http.ResponseWriter, r *http.Request) {
	q, ok := s.loadQuote(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.view(q))
}

func (s *server) handleDeleteQuote(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(r.Context(), sessionIDFrom(r.Context())); err != nil {
		s.log.Error("delete session quote", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to delete quote")
		return
	}
	s.cookies.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// quoteHeaderRequest updates quote-level fields. Absent fields are left
// unchanged.
type quoteHeaderRequest struct {
	Country         *string       `json:"country"`
	CurrencyMode    *string       `json:"currency_mode"`
	RiskLevel       *string       `json:"risk_level"`
	Margin          *float64      `json:"margin"`
	DistributedCost *float64      `json:"distributed_cost"`
	ContractStart   *pricing.Date `json:"contract_start"`
	ContractEnd     *pricing.Date `json:"contract_end"`
}

func (req quoteHeaderRequest) validate() error {
	if req.Margin != nil && *req.Margin < 0 {
		return badRequest("margin must not be negative")
	}
	if req.DistributedCost != nil && *req.DistributedCost < 0 {
		return badRequest("distributed_cost must not be negative")
	}
	if req.CurrencyMode != nil {
		mode := strings.ToLower(strings.TrimSpace(*req.CurrencyMode))
		if mode != string(pricing.ModeBase) && mode != string(pricing.ModeLocal) {
			return badRequest("currency_mode must be base or local")
		}
	}
	return nil
}

func (s *server) handleUpdateQuote(w http.ResponseWriter, r *http.Request) {
	var req quoteHeaderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.editQuote(w, r, http.StatusOK, func(q *pricing.Quote) error {
		if req.CurrencyMode != nil {
			q.SetCurrencyMode(pricing.ParseCurrencyMode(*req.CurrencyMode))
		}
		if req.Country != nil {
			name := strings.TrimSpace(*req.Country)
			q.SetCountry(name, s.exchangeRate(name), nil)
		}
		if req.RiskLevel != nil {
			q.RiskLevel = strings.TrimSpace(*req.RiskLevel)
		}
		if req.Margin != nil {
			q.Margin = *req.Margin
		}
		if req.DistributedCost != nil {
			q.DistributedCost = *req.DistributedCost
		}
		if req.ContractStart != nil {
			q.ContractStart = *req.ContractStart
		}
		if req.ContractEnd != nil {
			q.ContractEnd = *req.ContractEnd
		}
		return nil
	})
}

// serviceLineRequest adds or replaces a service line. UnitCost is read in
// the quote's current currency mode; when absent on an update the line
// keeps its costs.
type serviceLineRequest struct {
	Offering string       `json:"offering"`
	SLC      string       `json:"slc"`
	Quantity int          `json:"quantity"`
	Start    pricing.Date `json:"start"`
	End      pricing.Date `json:"end"`
	UnitCost *float64     `json:"unit_cost"`
}

func (req serviceLineRequest) item() pricing.ServiceLineItem {
	return pricing.ServiceLineItem{
		Offering: strings.TrimSpace(req.Offering),
		SLC:      strings.TrimSpace(req.SLC),
		Quantity: req.Quantity,
		Start:    req.Start,
		End:      req.End,
	}
}

func decodeServiceLine(w http.ResponseWriter, r *http.Request) (serviceLineRequest, bool) {
	var req serviceLineRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return req, false
	}
	if req.UnitCost != nil && *req.UnitCost < 0 {
		writeError(w, http.StatusBadRequest, "unit_cost must not be negative")
		return req, false
	}
	return req, true
}

func (s *server) handleAddService(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeServiceLine(w, r)
	if !ok {
		return
	}

	s.editQuote(w, r, http.StatusCreated, func(q *pricing.Quote) error {
		i := q.AddService(req.item())
		if req.UnitCost == nil {
			return nil
		}
		return q.SetUnitCost(i, *req.UnitCost, s.exchangeRate(q.Country), nil)
	})
}

func (s *server) handleUpdateService(w http.ResponseWriter, r *http.Request) {
	index, err := parseIndex(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req, ok := decodeServiceLine(w, r)
	if !ok {
		return
	}

	s.editQuote(w, r, http.StatusOK, func(q *pricing.Quote) error {
		item := req.item()
		if index < len(q.Services) {
			item.UnitCostBase = q.Services[index].UnitCostBase
			item.UnitCostLocal = q.Services[index].UnitCostLocal
		}
		if err := q.UpdateService(index, item); err != nil {
			return err
		}
		if req.UnitCost == nil {
			return nil
		}
		return q.SetUnitCost(index, *req.UnitCost, s.exchangeRate(q.Country), nil)
	})
}

func (s *server) handleRemoveService(w http.ResponseWriter, r *http.Request) {
	index, err := parseIndex(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.editQuote(w, r, http.StatusOK, func(q *pricing.Quote) error {
		return q.RemoveService(index)
	})
}

func decodeLaborLine(w http.ResponseWriter, r *http.Request) (pricing.LaborLineItem, bool) {
	var item pricing.LaborLineItem
	if err := decodeJSON(w, r, &item); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return item, false
	}
	item.Category = strings.TrimSpace(item.Category)
	item.Code = strings.TrimSpace(item.Code)
	if item.Category == "" {
		writeError(w, http.StatusBadRequest, "category is required")
		return item, false
	}
	return item, true
}

func (s *server) handleAddLabor(w http.ResponseWriter, r *http.Request) {
	item, ok := decodeLaborLine(w, r)
	if !ok {
		return
	}
	s.editQuote(w, r, http.StatusCreated, func(q *pricing.Quote) error {
		q.AddLabor(item)
		return nil
	})
}

func (s *server) handleUpdateLabor(w http.ResponseWriter, r *http.Request) {
	index, err := parseIndex(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	item, ok := decodeLaborLine(w, r)
	if !ok {
		return
	}
	s.editQuote(w, r, http.StatusOK, func(q *pricing.Quote) error {
		return q.UpdateLabor(index, item)
	})
}

func (s *server) handleRemoveLabor(w http.ResponseWriter, r *http.Request) {
	index, err := parseIndex(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.editQuote(w, r, http.StatusOK, func(q *pricing.Quote) error {
		return q.RemoveLabor(index)
	})
}

// handleCalculate prices a posted quote without touching any session.
func (s *server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var q pricing.Quote
	if err := decodeJSON(w, r, &q); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	q.CurrencyMode = pricing.ParseCurrencyMode(string(q.CurrencyMode))
	if q.Services == nil {
		q.Services = []pricing.ServiceLineItem{}
	}
	if q.Labor == nil {
		q.Labor = []pricing.LaborLineItem{}
	}
	writeJSON(w, http.StatusOK, s.view(&q))
}
