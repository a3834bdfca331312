package http

import (
	"github.com/shopspring/decimal"

	"contas/internal/core"
	"contas/internal/report"
	"contas/internal/storage"
)

const dateLayout = "2006-01-02"

type categoryDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Type  string `json:"type"`
}

type expenseDTO struct {
	ID           string      `json:"id"`
	Title        string      `json:"title"`
	Amount       string      `json:"amount"`
	Category     categoryDTO `json:"category"`
	DueDate      string      `json:"due_date"`
	Installments int         `json:"installments"`
	IsFixed      bool        `json:"is_fixed"`
	Status       string      `json:"status"`
	PaidAt       *string     `json:"paid_at,omitempty"`
	Description  string      `json:"description,omitempty"`
}

type incomeDTO struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Amount      string      `json:"amount"`
	Category    categoryDTO `json:"category"`
	ReceiveDate string      `json:"receive_date"`
	Status      string      `json:"status"`
	ReceivedAt  *string     `json:"received_at,omitempty"`
	Description string      `json:"description,omitempty"`
}

type installmentDTO struct {
	Installment int     `json:"installment"`
	DueMonth    string  `json:"due_month"`
	Status      string  `json:"status"`
	PaidAt      *string `json:"paid_at,omitempty"`
}

type monthEntryDTO struct {
	Expense     expenseDTO `json:"expense"`
	Installment int        `json:"installment,omitempty"`
	Amount      string     `json:"amount"`
}

type monthSummaryDTO struct {
	Month                string          `json:"month"`
	Label                string          `json:"label"`
	TotalMonth           string          `json:"total_month"`
	TotalOverdue         string          `json:"total_overdue"`
	TotalPending         string          `json:"total_pending"`
	TotalPaid            string          `json:"total_paid"`
	TotalIncomesReceived string          `json:"total_incomes_received"`
	Overdue              []monthEntryDTO `json:"overdue"`
	Pending              []monthEntryDTO `json:"pending"`
	Paid                 []monthEntryDTO `json:"paid"`
	All                  []monthEntryDTO `json:"all"`
}

type categorySliceDTO struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Color string `json:"color"`
}

type comparisonDTO struct {
	Month    string `json:"month"`
	Label    string `json:"label"`
	Incomes  string `json:"incomes"`
	Expenses string `json:"expenses"`
	Balance  string `json:"balance"`
}

type balancePointDTO struct {
	Month   string `json:"month"`
	Label   string `json:"label"`
	Balance string `json:"balance"`
}

type dashboardDTO struct {
	Month              string `json:"month"`
	TotalExpenses      string `json:"total_expenses"`
	TotalIncomes       string `json:"total_incomes"`
	PaidExpenses       string `json:"paid_expenses"`
	PendingExpenses    string `json:"pending_expenses"`
	Balance            string `json:"balance"`
	ExpensesComparison string `json:"expenses_comparison"`
	IncomesComparison  string `json:"incomes_comparison"`
	BalanceComparison  string `json:"balance_comparison"`
}

type recentDTO struct {
	Expenses []expenseDTO `json:"expenses"`
	Incomes  []incomeDTO  `json:"incomes"`
}

func money(d decimal.Decimal) string { return d.String() }

func toCategoryDTO(c core.Category) categoryDTO {
	return categoryDTO{
		ID:    c.ID.String(),
		Name:  c.Name,
		Color: c.Color,
		Type:  string(c.Type),
	}
}

func toExpenseDTO(e core.Expense) expenseDTO {
	dto := expenseDTO{
		ID:           e.ID.String(),
		Title:        e.Title,
		Amount:       money(e.Amount),
		Category:     toCategoryDTO(e.Category),
		DueDate:      e.DueDate.Format(dateLayout),
		Installments: e.Installments,
		IsFixed:      e.IsFixed,
		Status:       string(e.Status),
		Description:  e.Description,
	}
	if e.PaidAt != nil {
		paidAt := e.PaidAt.Format(dateLayout)
		dto.PaidAt = &paidAt
	}
	return dto
}

func toExpenseDTOs(expenses []core.Expense) []expenseDTO {
	out := make([]expenseDTO, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, toExpenseDTO(e))
	}
	return out
}

func toIncomeDTO(in core.Income) incomeDTO {
	dto := incomeDTO{
		ID:          in.ID.String(),
		Title:       in.Title,
		Amount:      money(in.Amount),
		Category:    toCategoryDTO(in.Category),
		ReceiveDate: in.ReceiveDate.Format(dateLayout),
		Status:      string(in.Status),
		Description: in.Description,
	}
	if in.ReceivedAt != nil {
		receivedAt := in.ReceivedAt.Format(dateLayout)
		dto.ReceivedAt = &receivedAt
	}
	return dto
}

func toIncomeDTOs(incomes []core.Income) []incomeDTO {
	out := make([]incomeDTO, 0, len(incomes))
	for _, in := range incomes {
		out = append(out, toIncomeDTO(in))
	}
	return out
}

func toInstallmentDTOs(e core.Expense, payments []storage.InstallmentPayment) []installmentDTO {
	out := make([]installmentDTO, 0, len(payments))
	start := report.YearMonthOf(e.DueDate)
	for _, p := range payments {
		dto := installmentDTO{
			Installment: p.InstallmentNo,
			DueMonth:    start.AddMonths(p.InstallmentNo - 1).String(),
			Status:      string(p.Status),
		}
		if p.PaidAt != nil {
			paidAt := p.PaidAt.Format(dateLayout)
			dto.PaidAt = &paidAt
		}
		out = append(out, dto)
	}
	return out
}

func toMonthEntryDTOs(entries []report.MonthEntry) []monthEntryDTO {
	out := make([]monthEntryDTO, 0, len(entries))
	for _, entry := range entries {
		out = append(out, monthEntryDTO{
			Expense:     toExpenseDTO(entry.Expense),
			Installment: entry.Installment,
			Amount:      money(entry.Amount),
		})
	}
	return out
}

func toMonthSummaryDTO(s report.MonthlySummary) monthSummaryDTO {
	return monthSummaryDTO{
		Month:                s.Month.String(),
		Label:                s.Month.Label(),
		TotalMonth:           money(s.TotalMonth),
		TotalOverdue:         money(s.TotalOverdue),
		TotalPending:         money(s.TotalPending),
		TotalPaid:            money(s.TotalPaid),
		TotalIncomesReceived: money(s.TotalIncomesReceived),
		Overdue:              toMonthEntryDTOs(s.Overdue),
		Pending:              toMonthEntryDTOs(s.Pending),
		Paid:                 toMonthEntryDTOs(s.Paid),
		All:                  toMonthEntryDTOs(s.All),
	}
}

func toCategorySliceDTOs(slices []report.CategorySlice) []categorySliceDTO {
	out := make([]categorySliceDTO, 0, len(slices))
	for _, sl := range slices {
		out = append(out, categorySliceDTO{
			Name:  sl.Name,
			Value: money(sl.Value),
			Color: sl.Color,
		})
	}
	return out
}

func toComparisonDTOs(comparisons []report.MonthComparison) []comparisonDTO {
	out := make([]comparisonDTO, 0, len(comparisons))
	for _, c := range comparisons {
		out = append(out, comparisonDTO{
			Month:    c.Month.String(),
			Label:    c.Label,
			Incomes:  money(c.Incomes),
			Expenses: money(c.Expenses),
			Balance:  money(c.Balance),
		})
	}
	return out
}

func toBalancePointDTOs(points []report.BalancePoint) []balancePointDTO {
	out := make([]balancePointDTO, 0, len(points))
	for _, p := range points {
		out = append(out, balancePointDTO{
			Month:   p.Month.String(),
			Label:   p.Label,
			Balance: money(p.Balance),
		})
	}
	return out
}

func toDashboardDTO(d report.DashboardSummary) dashboardDTO {
	return dashboardDTO{
		Month:              d.Month.String(),
		TotalExpenses:      money(d.TotalExpenses),
		TotalIncomes:       money(d.TotalIncomes),
		PaidExpenses:       money(d.PaidExpenses),
		PendingExpenses:    money(d.PendingExpenses),
		Balance:            money(d.Balance),
		ExpensesComparison: money(d.ExpensesComparison),
		IncomesComparison:  money(d.IncomesComparison),
		BalanceComparison:  money(d.BalanceComparison),
	}
}
