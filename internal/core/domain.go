package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	LineItemWork     LineItemType = "work"
	LineItemMaterial LineItemType = "material"
)

type (
	LineItemType string

	Date struct {
		time.Time
	}

	Client struct {
		ID           int64
		Name         string
		HourlyRate   decimal.Decimal
		DisplayOrder *int
		Credit       decimal.Decimal // saldo a cuenta, overwritten on each settlement
	}

	WorkItem struct {
		ID       int64
		ClientID int64
		Date     Date
		Hours    decimal.Decimal
		Paid     bool // covered by some payment
		Settled  bool // fully reconciled (cuadrado)
		Notes    string
	}

	MaterialItem struct {
		ID          int64
		ClientID    int64
		Date        Date
		Description string
		Cost        decimal.Decimal
		Paid        bool
		Settled     bool
	}

	Payment struct {
		ID       int64
		ClientID int64
		Amount   decimal.Decimal
		Date     Date
		Notes    string
	}

	// Allocation is the durable record of how much of a payment went to one line item.
	Allocation struct {
		ID            int64
		PaymentID     int64
		ClientID      int64
		LineItemID    int64
		LineItemType  LineItemType
		AmountApplied decimal.Decimal
		LineItemDate  Date
		PaymentDate   Date
	}
)

var (
	ErrInvalidDay        = errors.New("invalid day")
	ErrInvalidMonth      = errors.New("invalid month")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidHours      = errors.New("invalid hours")
	ErrInvalidRate       = errors.New("invalid hourly rate")
	ErrInvalidCost       = errors.New("invalid cost")
	ErrEmptyName         = errors.New("empty name")
	ErrMissingClient     = errors.New("missing client")
	ErrInvalidLineItem   = errors.New("invalid line item type")
	ErrClientNotFound    = errors.New("client not found")
	ErrPaymentNotFound   = errors.New("payment not found")
	ErrWorkItemNotFound  = errors.New("work item not found")
	ErrMaterialNotFound  = errors.New("material item not found")
	ErrSettledNotPaid    = errors.New("settled item must also be paid")
	ErrDescriptionLength = errors.New("description too long (max 200 characters)")
)

// IsValid reports whether t is one of the known line item types.
func (t LineItemType) IsValid() bool {
	switch t {
	case LineItemWork, LineItemMaterial:
		return true
	}
	return false
}

func (t LineItemType) String() string {
	return string(t)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate accepts YYYY-MM-DD or a full RFC 3339 timestamp, which is what
// browsers send when a date input is serialised with toISOString.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, errors.New("date cannot be empty")
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return Date{Time: t}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, err
	}
	t = t.UTC()
	return NewDate(t.Year(), int(t.Month()), t.Day()), nil
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

func (c Client) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if !c.HourlyRate.IsPositive() {
		return ErrInvalidRate
	}
	if c.Credit.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

func (w WorkItem) Validate() error {
	if w.ClientID <= 0 {
		return ErrMissingClient
	}
	if err := w.Date.Validate(); err != nil {
		return err
	}
	if !w.Hours.IsPositive() {
		return ErrInvalidHours
	}
	if w.Settled && !w.Paid {
		return ErrSettledNotPaid
	}
	return nil
}

// Cost evaluates the item against the client's current rate.
func (w WorkItem) Cost(rate decimal.Decimal) decimal.Decimal {
	return w.Hours.Mul(rate)
}

// Outstanding reports whether the item still counts towards debt.
func (w WorkItem) Outstanding() bool {
	return !w.Paid && !w.Settled
}

func (m MaterialItem) Validate() error {
	if m.ClientID <= 0 {
		return ErrMissingClient
	}
	if err := m.Date.Validate(); err != nil {
		return err
	}
	if m.Cost.IsNegative() {
		return ErrInvalidCost
	}
	if len(m.Description) > 200 {
		return ErrDescriptionLength
	}
	if m.Settled && !m.Paid {
		return ErrSettledNotPaid
	}
	return nil
}

func (m MaterialItem) Outstanding() bool {
	return !m.Paid && !m.Settled
}

func (p Payment) Validate() error {
	if p.ClientID <= 0 {
		return ErrMissingClient
	}
	if !p.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if err := p.Date.Validate(); err != nil {
		return err
	}
	if len(p.Notes) > 500 {
		return errors.New("notes too long (max 500 characters)")
	}
	return nil
}

func (a Allocation) Validate() error {
	if a.PaymentID <= 0 || a.LineItemID <= 0 {
		return errors.New("allocation must reference a payment and a line item")
	}
	if !a.LineItemType.IsValid() {
		return ErrInvalidLineItem
	}
	if a.AmountApplied.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}
