package core

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	CategoryExpense CategoryType = "EXPENSE"
	CategoryIncome  CategoryType = "INCOME"
)

const (
	StatusPending TransactionStatus = "PENDING"
	StatusPaid    TransactionStatus = "PAID"
	StatusOverdue TransactionStatus = "OVERDUE"
)

type (
	// CategoryType partitions categories between the expense and income
	// sides. It is a tag, not a hierarchy.
	CategoryType string

	// TransactionStatus is the closed payment-state set. Expenses use all
	// three values; incomes never carry OVERDUE.
	TransactionStatus string

	Category struct {
		ID    uuid.UUID
		Name  string
		Color string // hex, e.g. "#EF4444"
		Type  CategoryType
	}

	// Expense is a single obligation. Amount is the full amount owed;
	// with Installments > 1 it is spread over that many consecutive
	// calendar months starting at DueDate's month.
	Expense struct {
		ID           uuid.UUID
		Title        string
		Amount       decimal.Decimal
		Category     Category
		DueDate      time.Time
		Installments int
		IsFixed      bool
		Status       TransactionStatus
		PaidAt       *time.Time
		Description  string
	}

	Income struct {
		ID          uuid.UUID
		Title       string
		Amount      decimal.Decimal
		Category    Category
		ReceiveDate time.Time
		Status      TransactionStatus
		ReceivedAt  *time.Time
		Description string
	}
)

var (
	ErrInvalidAmount           = errors.New("invalid amount")
	ErrInvalidDateFormat       = errors.New("invalid date format")
	ErrInvalidInstallmentIndex = errors.New("invalid installment index")
	ErrInvalidInstallments     = errors.New("installments must be at least 1")
	ErrInvalidStatus           = errors.New("invalid transaction status")
	ErrInvalidCategoryType     = errors.New("invalid category type")
	ErrInvalidColor            = errors.New("invalid category color")
	ErrEmptyTitle              = errors.New("empty title")
	ErrEmptyCategoryName       = errors.New("empty category name")
)

var hexColorRe = regexp.MustCompile(`^#([0-9A-Fa-f]{6}|[0-9A-Fa-f]{3})$`)

func (t CategoryType) Valid() bool {
	return t == CategoryExpense || t == CategoryIncome
}

func (s TransactionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusOverdue:
		return true
	}
	return false
}

// ValidForIncome reports whether the status is allowed on an income
// record. Incomes are either pending or received, never overdue.
func (s TransactionStatus) ValidForIncome() bool {
	return s == StatusPending || s == StatusPaid
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyCategoryName
	}
	if !hexColorRe.MatchString(c.Color) {
		return ErrInvalidColor
	}
	if !c.Type.Valid() {
		return ErrInvalidCategoryType
	}
	return nil
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return ErrEmptyTitle
	}
	if len(e.Title) > 200 {
		return errors.New("title too long (max 200 characters)")
	}
	if !e.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if e.DueDate.IsZero() {
		return errors.New("due date cannot be zero")
	}
	if e.Installments < 1 {
		return ErrInvalidInstallments
	}
	if !e.Status.Valid() {
		return ErrInvalidStatus
	}
	if err := e.Category.Validate(); err != nil {
		return err
	}
	return nil
}

func (i Income) Validate() error {
	if strings.TrimSpace(i.Title) == "" {
		return ErrEmptyTitle
	}
	if len(i.Title) > 200 {
		return errors.New("title too long (max 200 characters)")
	}
	if !i.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if i.ReceiveDate.IsZero() {
		return errors.New("receive date cannot be zero")
	}
	if !i.Status.ValidForIncome() {
		return ErrInvalidStatus
	}
	if err := i.Category.Validate(); err != nil {
		return err
	}
	return nil
}
