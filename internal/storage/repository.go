// Package storage persists categories, expenses, incomes and the
// per-installment payment ledger in SQLite.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"contas/internal/core"
	"contas/internal/report"
)

const dateLayout = "2006-01-02"

// InstallmentPayment is one ledger row: the payment state of a single
// installment of an expense. Installments without a row fall back to
// the expense's own status.
type InstallmentPayment struct {
	ExpenseID     uuid.UUID
	InstallmentNo int
	Status        core.TransactionStatus
	PaidAt        *time.Time
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	// foreign_keys is per-connection, so it has to ride on the DSN
	// to cover every connection the pool opens.
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// --- categories ---

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (id, name, color, type) VALUES (?, ?, ?, ?)`,
		c.ID.String(), c.Name, c.Color, string(c.Type))
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	slog.InfoContext(ctx, "Category created", "category_id", c.ID, "name", c.Name, "type", c.Type)
	return c, nil
}

func (r *SQLiteRepository) UpdateCategory(ctx context.Context, c core.Category) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, color = ?, type = ? WHERE id = ?`,
		c.Name, c.Color, string(c.Type), c.ID.String())
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return requireRow(res, "category", c.ID)
}

func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return requireRow(res, "category", id)
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, id uuid.UUID) (core.Category, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, color, type FROM categories WHERE id = ?`, id.String())
	return scanCategory(row)
}

// ListCategories returns all categories, optionally narrowed to one
// type. An empty type means both sides.
func (r *SQLiteRepository) ListCategories(ctx context.Context, t core.CategoryType) ([]core.Category, error) {
	query := `SELECT id, name, color, type FROM categories ORDER BY name`
	args := []any{}
	if t != "" {
		query = `SELECT id, name, color, type FROM categories WHERE type = ? ORDER BY name`
		args = append(args, string(t))
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var cats []core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// --- expenses ---

func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (id, title, amount, category_id, due_date, installments, is_fixed, status, paid_at, description)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID.String(), e.Title, e.Amount.String(), e.Category.ID.String(),
		e.DueDate.Format(dateLayout), e.Installments, boolToInt(e.IsFixed),
		string(e.Status), nullableDate(e.PaidAt), e.Description)
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}
	slog.InfoContext(ctx, "Expense saved",
		"expense_id", e.ID,
		"title", e.Title,
		"amount", e.Amount,
		"installments", e.Installments,
		"due_date", e.DueDate.Format(dateLayout))
	return e, nil
}

func (r *SQLiteRepository) UpdateExpense(ctx context.Context, e core.Expense) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET title = ?, amount = ?, category_id = ?, due_date = ?, installments = ?,
		        is_fixed = ?, status = ?, paid_at = ?, description = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		e.Title, e.Amount.String(), e.Category.ID.String(), e.DueDate.Format(dateLayout),
		e.Installments, boolToInt(e.IsFixed), string(e.Status), nullableDate(e.PaidAt),
		e.Description, e.ID.String())
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	return requireRow(res, "expense", e.ID)
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return requireRow(res, "expense", id)
}

func (r *SQLiteRepository) GetExpense(ctx context.Context, id uuid.UUID) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx, expenseSelect+` WHERE e.id = ?`, id.String())
	return scanExpense(row)
}

// ListExpenses returns every expense joined with its category, ordered
// by due date.
func (r *SQLiteRepository) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, expenseSelect+` ORDER BY e.due_date, e.created_at`)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// ListPastDuePending returns PENDING expenses whose due date is before
// the cutoff day. Used by the overdue sweep.
func (r *SQLiteRepository) ListPastDuePending(ctx context.Context, cutoff time.Time) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		expenseSelect+` WHERE e.status = ? AND e.due_date < ? ORDER BY e.due_date`,
		string(core.StatusPending), cutoff.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("list past-due pending expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// ListRecentExpenses returns the newest expenses by creation time.
func (r *SQLiteRepository) ListRecentExpenses(ctx context.Context, limit int) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		expenseSelect+` ORDER BY e.created_at DESC, e.id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// SetExpenseStatus updates the record-global status. paidAt is stored
// when given and cleared when nil.
func (r *SQLiteRepository) SetExpenseStatus(ctx context.Context, id uuid.UUID, status core.TransactionStatus, paidAt *time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET status = ?, paid_at = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		string(status), nullableDate(paidAt), id.String())
	if err != nil {
		return fmt.Errorf("set expense status: %w", err)
	}
	return requireRow(res, "expense", id)
}

// --- incomes ---

func (r *SQLiteRepository) CreateIncome(ctx context.Context, in core.Income) (core.Income, error) {
	if in.ID == uuid.Nil {
		in.ID = uuid.New()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO incomes (id, title, amount, category_id, receive_date, status, received_at, description)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		in.ID.String(), in.Title, in.Amount.String(), in.Category.ID.String(),
		in.ReceiveDate.Format(dateLayout), string(in.Status), nullableDate(in.ReceivedAt), in.Description)
	if err != nil {
		return core.Income{}, fmt.Errorf("create income: %w", err)
	}
	slog.InfoContext(ctx, "Income saved",
		"income_id", in.ID,
		"title", in.Title,
		"amount", in.Amount,
		"receive_date", in.ReceiveDate.Format(dateLayout))
	return in, nil
}

func (r *SQLiteRepository) UpdateIncome(ctx context.Context, in core.Income) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE incomes SET title = ?, amount = ?, category_id = ?, receive_date = ?,
		        status = ?, received_at = ?, description = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		in.Title, in.Amount.String(), in.Category.ID.String(), in.ReceiveDate.Format(dateLayout),
		string(in.Status), nullableDate(in.ReceivedAt), in.Description, in.ID.String())
	if err != nil {
		return fmt.Errorf("update income: %w", err)
	}
	return requireRow(res, "income", in.ID)
}

func (r *SQLiteRepository) DeleteIncome(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM incomes WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete income: %w", err)
	}
	return requireRow(res, "income", id)
}

func (r *SQLiteRepository) GetIncome(ctx context.Context, id uuid.UUID) (core.Income, error) {
	row := r.db.QueryRowContext(ctx, incomeSelect+` WHERE i.id = ?`, id.String())
	return scanIncome(row)
}

func (r *SQLiteRepository) ListIncomes(ctx context.Context) ([]core.Income, error) {
	rows, err := r.db.QueryContext(ctx, incomeSelect+` ORDER BY i.receive_date, i.created_at`)
	if err != nil {
		return nil, fmt.Errorf("list incomes: %w", err)
	}
	defer rows.Close()

	var incomes []core.Income
	for rows.Next() {
		in, err := scanIncome(rows)
		if err != nil {
			return nil, err
		}
		incomes = append(incomes, in)
	}
	return incomes, rows.Err()
}

// ListRecentIncomes returns the newest incomes by creation time.
func (r *SQLiteRepository) ListRecentIncomes(ctx context.Context, limit int) ([]core.Income, error) {
	rows, err := r.db.QueryContext(ctx,
		incomeSelect+` ORDER BY i.created_at DESC, i.id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent incomes: %w", err)
	}
	defer rows.Close()

	var incomes []core.Income
	for rows.Next() {
		in, err := scanIncome(rows)
		if err != nil {
			return nil, err
		}
		incomes = append(incomes, in)
	}
	return incomes, rows.Err()
}

func (r *SQLiteRepository) SetIncomeStatus(ctx context.Context, id uuid.UUID, status core.TransactionStatus, receivedAt *time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE incomes SET status = ?, received_at = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		string(status), nullableDate(receivedAt), id.String())
	if err != nil {
		return fmt.Errorf("set income status: %w", err)
	}
	return requireRow(res, "income", id)
}

// --- installment ledger ---

// UpsertInstallmentPayment records the payment state of one installment.
func (r *SQLiteRepository) UpsertInstallmentPayment(ctx context.Context, p InstallmentPayment) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO installment_payments (expense_id, installment_no, status, paid_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (expense_id, installment_no)
		 DO UPDATE SET status = excluded.status, paid_at = excluded.paid_at, updated_at = CURRENT_TIMESTAMP`,
		p.ExpenseID.String(), p.InstallmentNo, string(p.Status), nullableDate(p.PaidAt))
	if err != nil {
		return fmt.Errorf("upsert installment payment: %w", err)
	}
	slog.InfoContext(ctx, "Installment payment recorded",
		"expense_id", p.ExpenseID,
		"installment", p.InstallmentNo,
		"status", p.Status)
	return nil
}

// ListInstallmentPayments returns the full ledger.
func (r *SQLiteRepository) ListInstallmentPayments(ctx context.Context) ([]InstallmentPayment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT expense_id, installment_no, status, paid_at FROM installment_payments`)
	if err != nil {
		return nil, fmt.Errorf("list installment payments: %w", err)
	}
	defer rows.Close()

	var payments []InstallmentPayment
	for rows.Next() {
		var (
			p      InstallmentPayment
			idStr  string
			status string
			paidAt sql.NullString
		)
		if err := rows.Scan(&idStr, &p.InstallmentNo, &status, &paidAt); err != nil {
			return nil, fmt.Errorf("scan installment payment: %w", err)
		}
		id, err := uuid.Parse(idStr)
		if err != nil {
			return nil, fmt.Errorf("parse expense id %q: %w", idStr, err)
		}
		p.ExpenseID = id
		p.Status = core.TransactionStatus(status)
		if p.PaidAt, err = parseNullableDate(paidAt); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// --- row mapping ---

const expenseSelect = `
	SELECT e.id, e.title, e.amount, e.due_date, e.installments, e.is_fixed,
	       e.status, e.paid_at, e.description,
	       c.id, c.name, c.color, c.type
	  FROM expenses e
	  JOIN categories c ON c.id = e.category_id`

const incomeSelect = `
	SELECT i.id, i.title, i.amount, i.receive_date, i.status, i.received_at, i.description,
	       c.id, c.name, c.color, c.type
	  FROM incomes i
	  JOIN categories c ON c.id = i.category_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(row rowScanner) (core.Category, error) {
	var (
		c            core.Category
		idStr, ctype string
	)
	if err := row.Scan(&idStr, &c.Name, &c.Color, &ctype); err != nil {
		return core.Category{}, fmt.Errorf("scan category: %w", err)
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return core.Category{}, fmt.Errorf("parse category id %q: %w", idStr, err)
	}
	c.ID = id
	c.Type = core.CategoryType(ctype)
	return c, nil
}

func scanExpense(row rowScanner) (core.Expense, error) {
	var (
		e                        core.Expense
		idStr, amountStr, dueStr string
		fixedInt                 int
		status                   string
		paidAt                   sql.NullString
		catID, catType           string
	)
	if err := row.Scan(&idStr, &e.Title, &amountStr, &dueStr, &e.Installments, &fixedInt,
		&status, &paidAt, &e.Description,
		&catID, &e.Category.Name, &e.Category.Color, &catType); err != nil {
		return core.Expense{}, fmt.Errorf("scan expense: %w", err)
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return core.Expense{}, fmt.Errorf("parse expense id %q: %w", idStr, err)
	}
	e.ID = id
	if e.Category.ID, err = uuid.Parse(catID); err != nil {
		return core.Expense{}, fmt.Errorf("parse category id %q: %w", catID, err)
	}
	if e.Amount, err = decimal.NewFromString(amountStr); err != nil {
		return core.Expense{}, fmt.Errorf("parse amount %q: %w", amountStr, err)
	}
	if e.DueDate, err = report.ParseLocalDate(dueStr); err != nil {
		return core.Expense{}, fmt.Errorf("parse due date: %w", err)
	}
	e.IsFixed = fixedInt != 0
	e.Status = core.TransactionStatus(status)
	e.Category.Type = core.CategoryType(catType)
	if e.PaidAt, err = parseNullableDate(paidAt); err != nil {
		return core.Expense{}, err
	}
	return e, nil
}

func scanIncome(row rowScanner) (core.Income, error) {
	var (
		in                           core.Income
		idStr, amountStr, receiveStr string
		status                       string
		receivedAt                   sql.NullString
		catID, catType               string
	)
	if err := row.Scan(&idStr, &in.Title, &amountStr, &receiveStr, &status, &receivedAt, &in.Description,
		&catID, &in.Category.Name, &in.Category.Color, &catType); err != nil {
		return core.Income{}, fmt.Errorf("scan income: %w", err)
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return core.Income{}, fmt.Errorf("parse income id %q: %w", idStr, err)
	}
	in.ID = id
	if in.Category.ID, err = uuid.Parse(catID); err != nil {
		return core.Income{}, fmt.Errorf("parse category id %q: %w", catID, err)
	}
	if in.Amount, err = decimal.NewFromString(amountStr); err != nil {
		return core.Income{}, fmt.Errorf("parse amount %q: %w", amountStr, err)
	}
	if in.ReceiveDate, err = report.ParseLocalDate(receiveStr); err != nil {
		return core.Income{}, fmt.Errorf("parse receive date: %w", err)
	}
	in.Status = core.TransactionStatus(status)
	in.Category.Type = core.CategoryType(catType)
	if in.ReceivedAt, err = parseNullableDate(receivedAt); err != nil {
		return core.Income{}, err
	}
	return in, nil
}

func requireRow(res sql.Result, kind string, id uuid.UUID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, sql.ErrNoRows)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullableDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(dateLayout)
}

func parseNullableDate(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := report.ParseLocalDate(s.String)
	if err != nil {
		return nil, fmt.Errorf("parse stored date: %w", err)
	}
	return &t, nil
}
