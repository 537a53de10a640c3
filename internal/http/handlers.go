package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"begroting/internal/core"
	"begroting/internal/derive"
	"begroting/internal/log"
	"begroting/internal/services"
	"begroting/internal/storage"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	snap, ok := s.deriveSnapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, buildDashboard(snap))
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	snap, ok := s.deriveSnapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Period        periodDTO         `json:"period"`
		Summary       summaryDTO        `json:"summary"`
		SelfSummary   personSummaryDTO  `json:"selfSummary"`
		SpouseSummary personSummaryDTO  `json:"spouseSummary"`
		MonthlyTrends []monthlyTrendDTO `json:"monthlyTrends"`
		Goals         []goalStatusDTO   `json:"goals"`
	}{
		Period:        buildPeriod(snap.Period),
		Summary:       buildSummary(snap.Summary),
		SelfSummary:   buildPersonSummary(snap.SelfSummary),
		SpouseSummary: buildPersonSummary(snap.SpouseSummary),
		MonthlyTrends: buildTrends(snap.MonthlyTrends),
		Goals:         buildGoalStatuses(snap.Goals),
	})
}

func (s *Server) handleBudgets(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	snap, ok := s.deriveSnapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Period          periodDTO           `json:"period"`
		CategoryBudgets []categoryBudgetDTO `json:"categoryBudgets"`
		SmartBudgets    []smartBudgetDTO    `json:"smartBudgets"`
	}{
		Period:          buildPeriod(snap.Period),
		CategoryBudgets: buildCategoryBudgets(snap.CategoryBudgets),
		SmartBudgets:    buildSmartBudgets(snap.SmartBudgets),
	})
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	snap, ok := s.deriveSnapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Period   periodDTO     `json:"period"`
		Analysis []analysisDTO `json:"analysis"`
	}{
		Period:   buildPeriod(snap.Period),
		Analysis: buildAnalysis(snap.Analysis),
	})
}

func (s *Server) handleSettlement(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		snap, ok := s.deriveSnapshot(w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, buildSettlement(snap.Settlement))

	case http.MethodPost:
		at, err := s.setups.RecordSettlement(r.Context())
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, struct {
			SettledAt time.Time `json:"settledAt"`
		}{SettledAt: at})

	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleBalances(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	snap, ok := s.deriveSnapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Period   periodDTO   `json:"period"`
		Balances balancesDTO `json:"balances"`
	}{
		Period:   buildPeriod(snap.Period),
		Balances: buildBalances(snap.BankBalances),
	})
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	now := s.now()
	in, ok := s.loadInputs(w, r, core.PayCycle(now), now)
	if !ok {
		return
	}

	recs, err := s.advisor.Recommend(r.Context(), in.Transactions, in.Setup, now)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Recommendations []recommendationDTO `json:"recommendations"`
		GeneratedAt     time.Time           `json:"generatedAt"`
	}{
		Recommendations: buildRecommendations(recs),
		GeneratedAt:     now,
	})
}

func (s *Server) handleSetup(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		setup, err := s.setups.Setup(r.Context())
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, struct {
			Setup *setupDTO `json:"setup"`
		}{Setup: setupToDTO(setup)})

	case http.MethodPut:
		var dto setupDTO
		if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		setup := dtoToSetup(&dto)
		if err := s.setups.SaveSetup(r.Context(), setup); err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, struct {
			Setup *setupDTO `json:"setup"`
		}{Setup: setupToDTO(setup)})

	default:
		w.Header().Set("Allow", "GET, PUT")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleGoals(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		goals, err := s.setups.Goals(r.Context())
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, struct {
			Goals []goalDTO `json:"goals"`
		}{Goals: goalsToDTO(goals)})

	case http.MethodPut:
		var dtos []goalDTO
		if err := json.NewDecoder(r.Body).Decode(&dtos); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		goals := dtoToGoals(dtos)
		if err := s.setups.SaveGoals(r.Context(), goals); err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, struct {
			Goals []goalDTO `json:"goals"`
		}{Goals: goalsToDTO(goals)})

	default:
		w.Header().Set("Allow", "GET, PUT")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleLock(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		locked, err := s.setups.Locked(r.Context())
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, struct {
			Locked bool `json:"locked"`
		}{Locked: locked})

	case http.MethodPut:
		var body struct {
			Locked bool `json:"locked"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := s.setups.SetLocked(r.Context(), body.Locked); err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, struct {
			Locked bool `json:"locked"`
		}{Locked: body.Locked})

	default:
		w.Header().Set("Allow", "GET, PUT")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// deriveSnapshot resolves the requested period, loads the inputs and asks
// the engine for the derived snapshot. A false return means the response
// has already been written.
func (s *Server) deriveSnapshot(w http.ResponseWriter, r *http.Request) (derive.Snapshot, bool) {
	now := s.now()
	period, err := resolvePeriod(r.URL.Query(), now)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return derive.Snapshot{}, false
	}

	in, ok := s.loadInputs(w, r, period, now)
	if !ok {
		return derive.Snapshot{}, false
	}

	snap, err := s.engine.Derive(r.Context(), in)
	if err != nil {
		s.writeServiceError(w, r, err)
		return derive.Snapshot{}, false
	}
	return snap, true
}

// loadInputs assembles the derivation inputs: stored transactions (falling
// back to the generator when the snapshot is empty), setup and goals.
func (s *Server) loadInputs(w http.ResponseWriter, r *http.Request, period core.Period, now time.Time) (derive.Inputs, bool) {
	ctx := r.Context()

	txs, _, err := s.reader.LoadSnapshot(ctx)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.writeServiceError(w, r, err)
		return derive.Inputs{}, false
	}
	if len(txs) == 0 && s.fallback != nil {
		txs, err = s.fallback.Fetch(ctx)
		if err != nil {
			s.writeServiceError(w, r, err)
			return derive.Inputs{}, false
		}
	}

	setup, err := s.setups.Setup(ctx)
	if err != nil {
		s.writeServiceError(w, r, err)
		return derive.Inputs{}, false
	}
	goals, err := s.setups.Goals(ctx)
	if err != nil {
		s.writeServiceError(w, r, err)
		return derive.Inputs{}, false
	}

	return derive.Inputs{
		Transactions: txs,
		Setup:        setup,
		Goals:        goals,
		Period:       period,
		Now:          now,
	}, true
}

// writeServiceError maps service errors onto status codes.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrAPILocked):
		writeError(w, http.StatusLocked, "api is locked")
	case errors.Is(err, services.ErrInvalidSetup):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusConflict, "budget setup required")
	default:
		s.logger.ErrorContext(r.Context(), "request failed",
			log.FieldRequestID, requestID(r.Context()),
			log.FieldPath, r.URL.Path,
			log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		w.Header().Set("Allow", method)
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
