package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"begroting/internal/core"
	"begroting/internal/derive"
	"begroting/internal/log"
	"begroting/internal/services"
	"begroting/internal/sheets"
	"begroting/internal/sheets/memory"
	"begroting/internal/storage"
)

type fakeReader struct {
	txs []core.Transaction
	err error
}

func (f *fakeReader) LoadSnapshot(context.Context) ([]core.Transaction, time.Time, error) {
	return f.txs, time.Time{}, f.err
}

type fakeStore struct {
	setup  *core.BudgetSetup
	goals  []core.SavingsGoal
	locked bool
}

func (f *fakeStore) LoadSetup(context.Context) (*core.BudgetSetup, error) {
	if f.setup == nil {
		return nil, storage.ErrNotFound
	}
	return f.setup, nil
}

func (f *fakeStore) SaveSetup(_ context.Context, setup *core.BudgetSetup) error {
	f.setup = setup
	return nil
}

func (f *fakeStore) LoadGoals(context.Context) ([]core.SavingsGoal, error) { return f.goals, nil }

func (f *fakeStore) SaveGoals(_ context.Context, goals []core.SavingsGoal) error {
	f.goals = goals
	return nil
}

func (f *fakeStore) RecordSettlement(_ context.Context, at time.Time) error {
	if f.setup == nil {
		return storage.ErrNotFound
	}
	f.setup.LastSettlement = &at
	return nil
}

func (f *fakeStore) APILocked(context.Context) (bool, error) { return f.locked, nil }

func (f *fakeStore) SetAPILocked(_ context.Context, locked bool) error {
	f.locked = locked
	return nil
}

var testNow = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T, txs []core.Transaction, fallback sheets.TransactionSource) (*httptest.Server, *fakeStore) {
	t.Helper()

	logger := log.New(log.DefaultConfig())
	store := &fakeStore{}
	engine := derive.NewEngine(logger)
	setups := services.NewSetupService(store, nil, engine, logger)
	advisor := services.NewAdvisorService(0, logger)

	s := NewServer(":0", &fakeReader{txs: txs}, fallback, engine, setups, advisor, logger)
	s.now = func() time.Time { return testNow }

	ts := httptest.NewServer(s.Handler)
	t.Cleanup(func() {
		ts.Close()
		_ = s.Shutdown(context.Background())
	})
	return ts, store
}

func seedTransactions() []core.Transaction {
	split := 55.0
	return []core.Transaction{
		{
			ID:         "salary-1",
			Date:       time.Date(2025, 5, 25, 0, 0, 0, 0, time.UTC),
			Category:   "Salary",
			Amount:     core.Money{Cents: 45000_00},
			Type:       core.Income,
			AssignedTo: core.AssignedSelf,
		},
		{
			ID:            "groc-1",
			Date:          time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC),
			Category:      "Groceries",
			Amount:        core.Money{Cents: 1200_00},
			Type:          core.Expense,
			AssignedTo:    core.AssignedShared,
			SplitPercent:  &split,
			PaymentMethod: core.CreditCard,
		},
		{
			ID:         "petrol-1",
			Date:       time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC),
			Category:   "Petrol",
			Amount:     core.Money{Cents: 900_00},
			Type:       core.Expense,
			AssignedTo: core.AssignedSelf,
		},
	}
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func doJSON(t *testing.T, method, url string, body, out any) int {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func TestDashboardServesDerivedState(t *testing.T) {
	ts, _ := newTestServer(t, seedTransactions(), nil)

	var dash dashboardDTO
	if status := getJSON(t, ts.URL+"/api/dashboard", &dash); status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}

	if dash.Period.Label != "This Pay Cycle" {
		t.Errorf("period = %q, want the pay cycle", dash.Period.Label)
	}
	if dash.Summary.TotalIncome != 45000 {
		t.Errorf("totalIncome = %v, want 45000", dash.Summary.TotalIncome)
	}
	if dash.Summary.TotalExpenses != 2100 {
		t.Errorf("totalExpenses = %v, want 2100", dash.Summary.TotalExpenses)
	}
	if len(dash.CategoryBudgets) == 0 {
		t.Error("no category budgets")
	}
	if dash.Settlement.TotalOutstanding != 1200 {
		t.Errorf("outstanding = %v, want the credit purchase", dash.Settlement.TotalOutstanding)
	}
}

func TestDashboardFallsBackToGeneratedData(t *testing.T) {
	fallback := memory.New(testNow, 1)
	ts, _ := newTestServer(t, nil, fallback)

	var dash dashboardDTO
	if status := getJSON(t, ts.URL+"/api/dashboard", &dash); status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if dash.Summary.TotalIncome <= 0 {
		t.Errorf("totalIncome = %v, want generated salaries in the pay cycle", dash.Summary.TotalIncome)
	}
}

func TestPeriodValidation(t *testing.T) {
	ts, _ := newTestServer(t, seedTransactions(), nil)

	if status := getJSON(t, ts.URL+"/api/summary?period=bogus", nil); status != http.StatusBadRequest {
		t.Errorf("bogus period status = %d, want 400", status)
	}
	if status := getJSON(t, ts.URL+"/api/summary?period=custom", nil); status != http.StatusBadRequest {
		t.Errorf("custom without range status = %d, want 400", status)
	}
	if status := getJSON(t, ts.URL+"/api/summary?period=this-month", nil); status != http.StatusOK {
		t.Errorf("this-month status = %d, want 200", status)
	}
}

func TestSettlementFlow(t *testing.T) {
	ts, store := newTestServer(t, seedTransactions(), nil)

	// No setup yet: nothing to stamp the settlement on.
	if status := doJSON(t, http.MethodPost, ts.URL+"/api/settlement", nil, nil); status != http.StatusConflict {
		t.Fatalf("settle without setup status = %d, want 409", status)
	}

	store.setup = &core.BudgetSetup{SelfName: "Anna", SpouseName: "Ben", DefaultSplitPercent: 55}

	var before settlementDTO
	if status := getJSON(t, ts.URL+"/api/settlement", &before); status != http.StatusOK {
		t.Fatalf("GET settlement status = %d", status)
	}
	if before.TotalOutstanding != 1200 {
		t.Fatalf("outstanding = %v, want 1200", before.TotalOutstanding)
	}

	var posted struct {
		SettledAt time.Time `json:"settledAt"`
	}
	if status := doJSON(t, http.MethodPost, ts.URL+"/api/settlement", nil, &posted); status != http.StatusOK {
		t.Fatalf("POST settlement status = %d", status)
	}
	if posted.SettledAt.IsZero() {
		t.Fatal("settledAt missing")
	}

	var after settlementDTO
	if status := getJSON(t, ts.URL+"/api/settlement", &after); status != http.StatusOK {
		t.Fatalf("GET settlement status = %d", status)
	}
	if after.TotalOutstanding != 0 {
		t.Errorf("outstanding after settling = %v, want 0", after.TotalOutstanding)
	}
	if after.LastSettlement == nil {
		t.Error("lastSettlement missing after settling")
	}
}

func TestSetupRoundTrip(t *testing.T) {
	ts, _ := newTestServer(t, seedTransactions(), nil)

	in := setupDTO{
		SelfName:            "Anna",
		SpouseName:          "Ben",
		DefaultSplitPercent: 55,
		IncomeSources: []incomeSourceDTO{
			{Name: "Salary", Amount: 45000, Frequency: "monthly", AssignedTo: "self", IsActive: true},
		},
		ManualBudgets: []manualBudgetDTO{
			{Category: "Groceries", Allocated: 4500, AssignedTo: "shared", IsActive: true},
		},
	}

	var saved struct {
		Setup *setupDTO `json:"setup"`
	}
	if status := doJSON(t, http.MethodPut, ts.URL+"/api/setup", in, &saved); status != http.StatusOK {
		t.Fatalf("PUT setup status = %d", status)
	}
	if saved.Setup == nil || saved.Setup.IncomeSources[0].ID == "" {
		t.Fatal("saved income source did not get an ID")
	}

	var loaded struct {
		Setup *setupDTO `json:"setup"`
	}
	if status := getJSON(t, ts.URL+"/api/setup", &loaded); status != http.StatusOK {
		t.Fatalf("GET setup status = %d", status)
	}
	if loaded.Setup == nil || loaded.Setup.SelfName != "Anna" || loaded.Setup.DefaultSplitPercent != 55 {
		t.Fatalf("loaded setup = %+v", loaded.Setup)
	}
	if loaded.Setup.ManualBudgets[0].Allocated != 4500 {
		t.Errorf("allocated = %v, want 4500", loaded.Setup.ManualBudgets[0].Allocated)
	}
}

func TestSetupValidationRejected(t *testing.T) {
	ts, _ := newTestServer(t, seedTransactions(), nil)

	in := setupDTO{DefaultSplitPercent: 140}
	if status := doJSON(t, http.MethodPut, ts.URL+"/api/setup", in, nil); status != http.StatusUnprocessableEntity {
		t.Fatalf("invalid setup status = %d, want 422", status)
	}
}

func TestGoalsRoundTrip(t *testing.T) {
	ts, _ := newTestServer(t, seedTransactions(), nil)

	in := []goalDTO{{
		Name:                "Emergency Fund",
		TargetAmount:        60000,
		CurrentAmount:       12000,
		TargetDate:          testNow.AddDate(1, 0, 0),
		MonthlyContribution: 4000,
	}}
	var saved struct {
		Goals []goalDTO `json:"goals"`
	}
	if status := doJSON(t, http.MethodPut, ts.URL+"/api/goals", in, &saved); status != http.StatusOK {
		t.Fatalf("PUT goals status = %d", status)
	}
	if len(saved.Goals) != 1 || saved.Goals[0].ID == "" {
		t.Fatalf("saved goals = %+v", saved.Goals)
	}

	var dash dashboardDTO
	if status := getJSON(t, ts.URL+"/api/dashboard", &dash); status != http.StatusOK {
		t.Fatalf("GET dashboard status = %d", status)
	}
	if len(dash.Goals) != 1 || dash.Goals[0].Goal.Name != "Emergency Fund" {
		t.Errorf("dashboard goals = %+v", dash.Goals)
	}
}

func TestLockBlocksWrites(t *testing.T) {
	ts, store := newTestServer(t, seedTransactions(), nil)
	store.setup = &core.BudgetSetup{DefaultSplitPercent: 55}

	if status := doJSON(t, http.MethodPut, ts.URL+"/api/lock", map[string]bool{"locked": true}, nil); status != http.StatusOK {
		t.Fatalf("PUT lock status = %d", status)
	}

	in := setupDTO{DefaultSplitPercent: 55}
	if status := doJSON(t, http.MethodPut, ts.URL+"/api/setup", in, nil); status != http.StatusLocked {
		t.Errorf("PUT setup while locked status = %d, want 423", status)
	}
	if status := doJSON(t, http.MethodPost, ts.URL+"/api/settlement", nil, nil); status != http.StatusLocked {
		t.Errorf("POST settlement while locked status = %d, want 423", status)
	}

	// Reads keep working while locked.
	if status := getJSON(t, ts.URL+"/api/dashboard", nil); status != http.StatusOK {
		t.Errorf("GET dashboard while locked status = %d, want 200", status)
	}

	var lock struct {
		Locked bool `json:"locked"`
	}
	if status := getJSON(t, ts.URL+"/api/lock", &lock); status != http.StatusOK || !lock.Locked {
		t.Errorf("GET lock = %d %+v", status, lock)
	}

	// Unlocking is always allowed.
	if status := doJSON(t, http.MethodPut, ts.URL+"/api/lock", map[string]bool{"locked": false}, nil); status != http.StatusOK {
		t.Fatalf("unlock status = %d", status)
	}
	if status := doJSON(t, http.MethodPut, ts.URL+"/api/setup", in, nil); status != http.StatusOK {
		t.Errorf("PUT setup after unlock status = %d, want 200", status)
	}
}

func TestRecommendations(t *testing.T) {
	var txs []core.Transaction
	for i := 0; i < 6; i++ {
		txs = append(txs, core.Transaction{
			ID:         "g" + string(rune('0'+i)),
			Date:       testNow.AddDate(0, -i, 0),
			Category:   "Groceries",
			Amount:     core.Money{Cents: 3000_00},
			Type:       core.Expense,
			AssignedTo: core.AssignedSelf,
		})
	}
	ts, _ := newTestServer(t, txs, nil)

	if status := getJSON(t, ts.URL+"/api/recommendations", nil); status != http.StatusMethodNotAllowed {
		t.Errorf("GET recommendations status = %d, want 405", status)
	}

	var out struct {
		Recommendations []recommendationDTO `json:"recommendations"`
	}
	if status := doJSON(t, http.MethodPost, ts.URL+"/api/recommendations", nil, &out); status != http.StatusOK {
		t.Fatalf("POST recommendations status = %d", status)
	}
	if len(out.Recommendations) == 0 {
		t.Fatal("expected at least one recommendation")
	}
	for _, rec := range out.Recommendations {
		if rec.Category == "Groceries" {
			return
		}
	}
	t.Error("Groceries missing from recommendations")
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t, nil, nil)

	var out map[string]string
	if status := getJSON(t, ts.URL+"/api/health", &out); status != http.StatusOK {
		t.Fatalf("health status = %d", status)
	}
	if out["status"] != "ok" {
		t.Errorf("health body = %v", out)
	}
}
