package main

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/Simplici0/supportquote/internal/export"
	"github.com/Simplici0/supportquote/internal/ingest"
	"github.com/Simplici0/supportquote/internal/pricing"
)

const (
	maxUploadBytes = 10 << 20
	xlsxMediaType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type importResponse struct {
	Summary string            `json:"summary"`
	Issues  []ingest.RowIssue `json:"issues"`
	quoteView
}

// handleImport appends the rows of an uploaded CSV or xlsx file to the
// session quote, or replaces its lines when replace=true.
func (s *server) handleImport(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("kind")
	if kind != "services" && kind != "labor" {
		writeError(w, http.StatusBadRequest, "kind must be services or labor")
		return
	}
	replace := r.URL.Query().Get("replace") == "true"

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart upload")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	format, err := ingest.FormatFromName(header.Filename)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var (
		services []pricing.ServiceLineItem
		labor    []pricing.LaborLineItem
		issues   []ingest.RowIssue
		total    int
	)
	if kind == "services" {
		res, err := ingest.ServiceRows(file, format)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		services, issues, total = res.Items, res.Issues, res.TotalRows
	} else {
		res, err := ingest.LaborRows(file, format, s.calc.Store().LaborCategories())
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		labor, issues, total = res.Items, res.Issues, res.TotalRows
	}

	q, ok := s.applyEdit(w, r, func(q *pricing.Quote) error {
		rate := s.exchangeRate(q.Country)
		if kind == "services" {
			if replace {
				q.Services = q.Services[:0]
			}
			for _, item := range services {
				q.AddService(authoredCost(item, q.CurrencyMode, rate))
			}
			q.SyncDerived(rate, nil)
			return nil
		}
		if replace {
			q.Labor = q.Labor[:0]
		}
		for _, item := range labor {
			q.AddLabor(item)
		}
		return nil
	})
	if !ok {
		return
	}

	imported := len(services) + len(labor)
	summary := ingest.Summary(total, imported, issues)
	s.log.Info("quote lines imported",
		zap.String("kind", kind),
		zap.String("file", header.Filename),
		zap.String("summary", summary))

	writeJSON(w, http.StatusOK, importResponse{
		Summary:   summary,
		Issues:    issues,
		quoteView: s.view(q),
	})
}

// authoredCost makes sure the cost the quote's mode reads is populated when
// the file only carried the other currency.
func authoredCost(item pricing.ServiceLineItem, mode pricing.CurrencyMode, rate float64) pricing.ServiceLineItem {
	if mode == pricing.ModeLocal && item.UnitCostLocal == 0 && item.UnitCostBase != 0 {
		item.UnitCostLocal = pricing.ToLocal(item.UnitCostBase, rate, nil)
	}
	if mode != pricing.ModeLocal && item.UnitCostBase == 0 && item.UnitCostLocal != 0 {
		item.UnitCostBase = pricing.ToBase(item.UnitCostLocal, rate, pricing.ModeLocal, nil)
	}
	return item
}

func (s *server) record(w http.ResponseWriter, r *http.Request) (export.Record, bool) {
	q, ok := s.loadQuote(w, r)
	if !ok {
		return export.Record{}, false
	}
	return export.NewRecord(*q, s.calc.Calculate(*q), s.now()), true
}

func (s *server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.record(w, r)
	if !ok {
		return
	}

	data, err := export.Workbook(rec)
	if err != nil {
		s.log.Error("build workbook", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to build workbook")
		return
	}

	filename := fmt.Sprintf("quote-%s-%s.xlsx", rec.Country, rec.GeneratedAt.Format("2006-01-02"))
	w.Header().Set("Content-Type", xlsxMediaType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	_, _ = w.Write(data)
}

func (s *server) handleQuoteText(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.record(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(export.Text(rec)))
}
