package http

import (
	"time"

	"begroting/internal/core"
	"begroting/internal/derive"
)

// All amounts cross the wire as rand values, never cents. Dates on
// transactions are calendar days; timestamps are RFC 3339.

const dateLayout = "2006-01-02"

type (
	periodDTO struct {
		Start string `json:"start"`
		End   string `json:"end"`
		Label string `json:"label"`
	}

	transactionDTO struct {
		ID            string   `json:"id"`
		Date          string   `json:"date"`
		Description   string   `json:"description"`
		Category      string   `json:"category"`
		Amount        float64  `json:"amount"`
		Type          string   `json:"type"`
		Account       string   `json:"account,omitempty"`
		AssignedTo    string   `json:"assignedTo"`
		SplitPercent  *float64 `json:"splitPercent,omitempty"`
		PaymentMethod string   `json:"paymentMethod,omitempty"`
	}

	summaryDTO struct {
		TotalIncome       float64 `json:"totalIncome"`
		TotalExpenses     float64 `json:"totalExpenses"`
		NetIncome         float64 `json:"netIncome"`
		TotalBudget       float64 `json:"totalBudget"`
		BudgetUsed        float64 `json:"budgetUsed"`
		SavingsRate       float64 `json:"savingsRate"`
		TotalSavingsGoals float64 `json:"totalSavingsGoals"`
		ProjectedSavings  float64 `json:"projectedSavings"`
	}

	categoryBudgetDTO struct {
		Category   string  `json:"category"`
		Allocated  float64 `json:"allocated"`
		Spent      float64 `json:"spent"`
		AssignedTo string  `json:"assignedTo"`
	}

	smartBudgetDTO struct {
		Category              string  `json:"category"`
		Allocated             float64 `json:"allocated"`
		Spent                 float64 `json:"spent"`
		HistoricalAverage     float64 `json:"historicalAverage"`
		Trend                 string  `json:"trend"`
		RecommendedBudget     float64 `json:"recommendedBudget"`
		RecommendedAdjustment float64 `json:"recommendedAdjustment"`
		Confidence            float64 `json:"confidence"`
		AssignedTo            string  `json:"assignedTo"`
	}

	analysisDTO struct {
		Category          string  `json:"category"`
		Actual            float64 `json:"actual"`
		Budgeted          float64 `json:"budgeted"`
		Variance          float64 `json:"variance"`
		VariancePct       float64 `json:"variancePct"`
		HistoricalAverage float64 `json:"historicalAverage"`
		RecommendedBudget float64 `json:"recommendedBudget"`
		Trend             string  `json:"trend"`
		ImpactOnGoals     float64 `json:"impactOnGoals"`
		AssignedTo        string  `json:"assignedTo"`
	}

	settlementDTO struct {
		SelfOwes         float64          `json:"selfOwes"`
		SpouseOwes       float64          `json:"spouseOwes"`
		TotalOutstanding float64          `json:"totalOutstanding"`
		LastSettlement   *time.Time       `json:"lastSettlement,omitempty"`
		Transactions     []transactionDTO `json:"transactions"`
	}

	personBalanceDTO struct {
		OpeningBalance        float64          `json:"openingBalance"`
		TotalIncome           float64          `json:"totalIncome"`
		FixedExpenses         float64          `json:"fixedExpenses"`
		CashExpenses          float64          `json:"cashExpenses"`
		CreditCardSettlements float64          `json:"creditCardSettlements"`
		ClosingBalance        float64          `json:"closingBalance"`
		Transactions          []transactionDTO `json:"transactions"`
	}

	balancesDTO struct {
		Self     personBalanceDTO `json:"self"`
		Spouse   personBalanceDTO `json:"spouse"`
		Combined struct {
			TotalClosingBalance float64 `json:"totalClosingBalance"`
			TotalIncome         float64 `json:"totalIncome"`
			TotalExpenses       float64 `json:"totalExpenses"`
		} `json:"combined"`
	}

	personSummaryDTO struct {
		Person           string  `json:"person"`
		Name             string  `json:"name"`
		ConfiguredIncome float64 `json:"configuredIncome"`
		PersonalFixed    float64 `json:"personalFixed"`
		SharedFixed      float64 `json:"sharedFixed"`
		TotalFixed       float64 `json:"totalFixed"`
		Net              float64 `json:"net"`
	}

	monthlyTrendDTO struct {
		Month    string  `json:"month"`
		Income   float64 `json:"income"`
		Expenses float64 `json:"expenses"`
		Net      float64 `json:"net"`
	}

	goalStatusDTO struct {
		Goal            goalDTO `json:"goal"`
		MonthsRemaining int     `json:"monthsRemaining"`
		RequiredMonthly float64 `json:"requiredMonthly"`
		OnTrack         bool    `json:"onTrack"`
	}

	recommendationDTO struct {
		Category          string  `json:"category"`
		CurrentBudget     float64 `json:"currentBudget"`
		RecommendedBudget float64 `json:"recommendedBudget"`
		SixMonthAverage   float64 `json:"sixMonthAverage"`
		Confidence        float64 `json:"confidence"`
		Reasoning         string  `json:"reasoning"`
		AssignedTo        string  `json:"assignedTo"`
		Change            float64 `json:"change"`
		ChangePct         float64 `json:"changePct"`
	}

	dashboardDTO struct {
		Period          periodDTO           `json:"period"`
		Summary         summaryDTO          `json:"summary"`
		CategoryBudgets []categoryBudgetDTO `json:"categoryBudgets"`
		SmartBudgets    []smartBudgetDTO    `json:"smartBudgets"`
		Analysis        []analysisDTO       `json:"analysis"`
		Settlement      settlementDTO       `json:"settlement"`
		BankBalances    balancesDTO         `json:"bankBalances"`
		SelfSummary     personSummaryDTO    `json:"selfSummary"`
		SpouseSummary   personSummaryDTO    `json:"spouseSummary"`
		MonthlyTrends   []monthlyTrendDTO   `json:"monthlyTrends"`
		Goals           []goalStatusDTO     `json:"goals"`
		GeneratedAt     time.Time           `json:"generatedAt"`
	}
)

// Setup and goal DTOs go both ways: the GET responses and the PUT bodies
// share one shape.
type (
	incomeSourceDTO struct {
		ID         string  `json:"id,omitempty"`
		Name       string  `json:"name"`
		Amount     float64 `json:"amount"`
		Frequency  string  `json:"frequency"`
		AssignedTo string  `json:"assignedTo"`
		IsActive   bool    `json:"isActive"`
	}

	fixedExpenseDTO struct {
		ID           string   `json:"id,omitempty"`
		Name         string   `json:"name"`
		Amount       float64  `json:"amount"`
		Category     string   `json:"category"`
		Frequency    string   `json:"frequency"`
		AssignedTo   string   `json:"assignedTo"`
		SplitPercent *float64 `json:"splitPercent,omitempty"`
		DueDay       int      `json:"dueDay,omitempty"`
		IsActive     bool     `json:"isActive"`
	}

	manualBudgetDTO struct {
		ID           string   `json:"id,omitempty"`
		Category     string   `json:"category"`
		Allocated    float64  `json:"allocated"`
		AssignedTo   string   `json:"assignedTo"`
		SplitPercent *float64 `json:"splitPercent,omitempty"`
		IsActive     bool     `json:"isActive"`
	}

	setupDTO struct {
		SelfName             string            `json:"selfName"`
		SpouseName           string            `json:"spouseName"`
		DefaultSplitPercent  float64           `json:"defaultSplitPercent"`
		IncomeSources        []incomeSourceDTO `json:"incomeSources"`
		FixedExpenses        []fixedExpenseDTO `json:"fixedExpenses"`
		ManualBudgets        []manualBudgetDTO `json:"manualBudgets"`
		LastSettlement       *time.Time        `json:"lastSettlement,omitempty"`
		SelfOpeningBalance   float64           `json:"selfOpeningBalance"`
		SpouseOpeningBalance float64           `json:"spouseOpeningBalance"`
		BalanceAsOfDate      *time.Time        `json:"balanceAsOfDate,omitempty"`
		ZeroBalances         bool              `json:"zeroBalances"`
	}

	goalDTO struct {
		ID                  string    `json:"id,omitempty"`
		Name                string    `json:"name"`
		TargetAmount        float64   `json:"targetAmount"`
		CurrentAmount       float64   `json:"currentAmount"`
		TargetDate          time.Time `json:"targetDate"`
		Priority            string    `json:"priority,omitempty"`
		MonthlyContribution float64   `json:"monthlyContribution"`
		Category            string    `json:"category,omitempty"`
		AssignedTo          string    `json:"assignedTo,omitempty"`
	}
)

func buildPeriod(p core.Period) periodDTO {
	return periodDTO{
		Start: p.Start.Format(dateLayout),
		End:   p.End.Format(dateLayout),
		Label: p.Label,
	}
}

func buildTransaction(t core.Transaction) transactionDTO {
	return transactionDTO{
		ID:            t.ID,
		Date:          t.Date.Format(dateLayout),
		Description:   t.Description,
		Category:      t.Category,
		Amount:        t.Amount.Rand(),
		Type:          string(t.Type),
		Account:       t.Account,
		AssignedTo:    string(t.AssignedTo),
		SplitPercent:  t.SplitPercent,
		PaymentMethod: string(t.PaymentMethod),
	}
}

func buildTransactions(txs []core.Transaction) []transactionDTO {
	out := make([]transactionDTO, 0, len(txs))
	for _, t := range txs {
		out = append(out, buildTransaction(t))
	}
	return out
}

func buildSummary(s core.FinancialSummary) summaryDTO {
	return summaryDTO{
		TotalIncome:       s.TotalIncome.Rand(),
		TotalExpenses:     s.TotalExpenses.Rand(),
		NetIncome:         s.NetIncome.Rand(),
		TotalBudget:       s.TotalBudget.Rand(),
		BudgetUsed:        s.BudgetUsed.Rand(),
		SavingsRate:       s.SavingsRate,
		TotalSavingsGoals: s.TotalSavingsGoals.Rand(),
		ProjectedSavings:  s.ProjectedSavings.Rand(),
	}
}

func buildCategoryBudgets(rows []core.CategoryBudget) []categoryBudgetDTO {
	out := make([]categoryBudgetDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, categoryBudgetDTO{
			Category:   r.Category,
			Allocated:  r.Allocated.Rand(),
			Spent:      r.Spent.Rand(),
			AssignedTo: string(r.AssignedTo),
		})
	}
	return out
}

func buildSmartBudgets(rows []core.SmartBudget) []smartBudgetDTO {
	out := make([]smartBudgetDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, smartBudgetDTO{
			Category:              r.Category,
			Allocated:             r.Allocated.Rand(),
			Spent:                 r.Spent.Rand(),
			HistoricalAverage:     r.HistoricalAverage.Rand(),
			Trend:                 string(r.Trend),
			RecommendedBudget:     r.RecommendedBudget.Rand(),
			RecommendedAdjustment: r.RecommendedAdjustment.Rand(),
			Confidence:            r.Confidence,
			AssignedTo:            string(r.AssignedTo),
		})
	}
	return out
}

func buildAnalysis(rows []core.BudgetAnalysis) []analysisDTO {
	out := make([]analysisDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, analysisDTO{
			Category:          r.Category,
			Actual:            r.Actual.Rand(),
			Budgeted:          r.Budgeted.Rand(),
			Variance:          r.Variance.Rand(),
			VariancePct:       r.VariancePct,
			HistoricalAverage: r.HistoricalAverage.Rand(),
			RecommendedBudget: r.RecommendedBudget.Rand(),
			Trend:             string(r.Trend),
			ImpactOnGoals:     r.ImpactOnGoals,
			AssignedTo:        string(r.AssignedTo),
		})
	}
	return out
}

func buildSettlement(b core.CreditCardBalance) settlementDTO {
	return settlementDTO{
		SelfOwes:         b.SelfOwes.Rand(),
		SpouseOwes:       b.SpouseOwes.Rand(),
		TotalOutstanding: b.TotalOutstanding.Rand(),
		LastSettlement:   b.LastSettlement,
		Transactions:     buildTransactions(b.Transactions),
	}
}

func buildPersonBalance(b core.PersonBankBalance) personBalanceDTO {
	return personBalanceDTO{
		OpeningBalance:        b.OpeningBalance.Rand(),
		TotalIncome:           b.TotalIncome.Rand(),
		FixedExpenses:         b.FixedExpenses.Rand(),
		CashExpenses:          b.CashExpenses.Rand(),
		CreditCardSettlements: b.CreditCardSettlements.Rand(),
		ClosingBalance:        b.ClosingBalance.Rand(),
		Transactions:          buildTransactions(b.Transactions),
	}
}

func buildBalances(b core.BankBalances) balancesDTO {
	out := balancesDTO{
		Self:   buildPersonBalance(b.Self),
		Spouse: buildPersonBalance(b.Spouse),
	}
	out.Combined.TotalClosingBalance = b.Combined.TotalClosingBalance.Rand()
	out.Combined.TotalIncome = b.Combined.TotalIncome.Rand()
	out.Combined.TotalExpenses = b.Combined.TotalExpenses.Rand()
	return out
}

func buildPersonSummary(s core.PersonSummary) personSummaryDTO {
	return personSummaryDTO{
		Person:           string(s.Person),
		Name:             s.Name,
		ConfiguredIncome: s.ConfiguredIncome.Rand(),
		PersonalFixed:    s.PersonalFixed.Rand(),
		SharedFixed:      s.SharedFixed.Rand(),
		TotalFixed:       s.TotalFixed.Rand(),
		Net:              s.Net.Rand(),
	}
}

func buildTrends(rows []core.MonthlyTrend) []monthlyTrendDTO {
	out := make([]monthlyTrendDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, monthlyTrendDTO{
			Month:    r.Month,
			Income:   r.Income.Rand(),
			Expenses: r.Expenses.Rand(),
			Net:      r.Net.Rand(),
		})
	}
	return out
}

func buildGoalStatuses(rows []core.GoalStatus) []goalStatusDTO {
	out := make([]goalStatusDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, goalStatusDTO{
			Goal:            goalToDTO(r.Goal),
			MonthsRemaining: r.MonthsRemaining,
			RequiredMonthly: r.RequiredMonthly.Rand(),
			OnTrack:         r.OnTrack,
		})
	}
	return out
}

func buildRecommendations(rows []core.Recommendation) []recommendationDTO {
	out := make([]recommendationDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, recommendationDTO{
			Category:          r.Category,
			CurrentBudget:     r.CurrentBudget.Rand(),
			RecommendedBudget: r.RecommendedBudget.Rand(),
			SixMonthAverage:   r.SixMonthAverage.Rand(),
			Confidence:        r.Confidence,
			Reasoning:         r.Reasoning,
			AssignedTo:        string(r.AssignedTo),
			Change:            r.Change.Rand(),
			ChangePct:         r.ChangePct,
		})
	}
	return out
}

func buildDashboard(snap derive.Snapshot) dashboardDTO {
	return dashboardDTO{
		Period:          buildPeriod(snap.Period),
		Summary:         buildSummary(snap.Summary),
		CategoryBudgets: buildCategoryBudgets(snap.CategoryBudgets),
		SmartBudgets:    buildSmartBudgets(snap.SmartBudgets),
		Analysis:        buildAnalysis(snap.Analysis),
		Settlement:      buildSettlement(snap.Settlement),
		BankBalances:    buildBalances(snap.BankBalances),
		SelfSummary:     buildPersonSummary(snap.SelfSummary),
		SpouseSummary:   buildPersonSummary(snap.SpouseSummary),
		MonthlyTrends:   buildTrends(snap.MonthlyTrends),
		Goals:           buildGoalStatuses(snap.Goals),
		GeneratedAt:     snap.GeneratedAt,
	}
}

func setupToDTO(s *core.BudgetSetup) *setupDTO {
	if s == nil {
		return nil
	}
	out := &setupDTO{
		SelfName:             s.SelfName,
		SpouseName:           s.SpouseName,
		DefaultSplitPercent:  s.DefaultSplitPercent,
		LastSettlement:       s.LastSettlement,
		SelfOpeningBalance:   s.SelfOpeningBalance.Rand(),
		SpouseOpeningBalance: s.SpouseOpeningBalance.Rand(),
		BalanceAsOfDate:      s.BalanceAsOfDate,
		ZeroBalances:         s.ZeroBalances,
		IncomeSources:        make([]incomeSourceDTO, 0, len(s.IncomeSources)),
		FixedExpenses:        make([]fixedExpenseDTO, 0, len(s.FixedExpenses)),
		ManualBudgets:        make([]manualBudgetDTO, 0, len(s.ManualBudgets)),
	}
	for _, src := range s.IncomeSources {
		out.IncomeSources = append(out.IncomeSources, incomeSourceDTO{
			ID:         src.ID,
			Name:       src.Name,
			Amount:     src.Amount.Rand(),
			Frequency:  string(src.Frequency),
			AssignedTo: string(src.AssignedTo),
			IsActive:   src.IsActive,
		})
	}
	for _, exp := range s.FixedExpenses {
		out.FixedExpenses = append(out.FixedExpenses, fixedExpenseDTO{
			ID:           exp.ID,
			Name:         exp.Name,
			Amount:       exp.Amount.Rand(),
			Category:     exp.Category,
			Frequency:    string(exp.Frequency),
			AssignedTo:   string(exp.AssignedTo),
			SplitPercent: exp.SplitPercent,
			DueDay:       exp.DueDay,
			IsActive:     exp.IsActive,
		})
	}
	for _, b := range s.ManualBudgets {
		out.ManualBudgets = append(out.ManualBudgets, manualBudgetDTO{
			ID:           b.ID,
			Category:     b.Category,
			Allocated:    b.Allocated.Rand(),
			AssignedTo:   string(b.AssignedTo),
			SplitPercent: b.SplitPercent,
			IsActive:     b.IsActive,
		})
	}
	return out
}

func dtoToSetup(d *setupDTO) *core.BudgetSetup {
	if d == nil {
		return nil
	}
	out := &core.BudgetSetup{
		SelfName:             d.SelfName,
		SpouseName:           d.SpouseName,
		DefaultSplitPercent:  d.DefaultSplitPercent,
		LastSettlement:       d.LastSettlement,
		SelfOpeningBalance:   core.FromRand(d.SelfOpeningBalance),
		SpouseOpeningBalance: core.FromRand(d.SpouseOpeningBalance),
		BalanceAsOfDate:      d.BalanceAsOfDate,
		ZeroBalances:         d.ZeroBalances,
	}
	for _, src := range d.IncomeSources {
		out.IncomeSources = append(out.IncomeSources, core.IncomeSource{
			ID:         src.ID,
			Name:       src.Name,
			Amount:     core.FromRand(src.Amount),
			Frequency:  core.Frequency(src.Frequency),
			AssignedTo: core.Assignment(src.AssignedTo),
			IsActive:   src.IsActive,
		})
	}
	for _, exp := range d.FixedExpenses {
		out.FixedExpenses = append(out.FixedExpenses, core.FixedExpense{
			ID:           exp.ID,
			Name:         exp.Name,
			Amount:       core.FromRand(exp.Amount),
			Category:     exp.Category,
			Frequency:    core.Frequency(exp.Frequency),
			AssignedTo:   core.Assignment(exp.AssignedTo),
			SplitPercent: exp.SplitPercent,
			DueDay:       exp.DueDay,
			IsActive:     exp.IsActive,
		})
	}
	for _, b := range d.ManualBudgets {
		out.ManualBudgets = append(out.ManualBudgets, core.ManualBudget{
			ID:           b.ID,
			Category:     b.Category,
			Allocated:    core.FromRand(b.Allocated),
			AssignedTo:   core.Assignment(b.AssignedTo),
			SplitPercent: b.SplitPercent,
			IsActive:     b.IsActive,
		})
	}
	return out
}

func goalToDTO(g core.SavingsGoal) goalDTO {
	return goalDTO{
		ID:                  g.ID,
		Name:                g.Name,
		TargetAmount:        g.TargetAmount.Rand(),
		CurrentAmount:       g.CurrentAmount.Rand(),
		TargetDate:          g.TargetDate,
		Priority:            g.Priority,
		MonthlyContribution: g.MonthlyContribution.Rand(),
		Category:            g.Category,
		AssignedTo:          string(g.AssignedTo),
	}
}

func goalsToDTO(goals []core.SavingsGoal) []goalDTO {
	out := make([]goalDTO, 0, len(goals))
	for _, g := range goals {
		out = append(out, goalToDTO(g))
	}
	return out
}

func dtoToGoals(dtos []goalDTO) []core.SavingsGoal {
	out := make([]core.SavingsGoal, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, core.SavingsGoal{
			ID:                  d.ID,
			Name:                d.Name,
			TargetAmount:        core.FromRand(d.TargetAmount),
			CurrentAmount:       core.FromRand(d.CurrentAmount),
			TargetDate:          d.TargetDate,
			Priority:            d.Priority,
			MonthlyContribution: core.FromRand(d.MonthlyContribution),
			Category:            d.Category,
			AssignedTo:          core.Assignment(d.AssignedTo),
		})
	}
	return out
}
