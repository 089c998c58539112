package main

import "net/http"

func (s *server) handleCountries(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.calc.Store().Countries())
}

func (s *server) handleOfferings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.calc.Store().Offerings())
}

func (s *server) handleRiskLevels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.calc.Store().RiskLevels())
}

func (s *server) handleServiceLevels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.calc.Store().ServiceLevels())
}

func (s *server) handleLaborRates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"categories": s.calc.Store().LaborCategories(),
		"rates":      s.calc.Store().LaborRates(),
	})
}
