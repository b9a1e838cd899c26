package core

import "github.com/shopspring/decimal"

// PaymentUsage reports how much of one payment has been allocated to line items.
type PaymentUsage struct {
	PaymentID int64
	Date      Date
	Amount    decimal.Decimal
	Used      decimal.Decimal
	Remaining decimal.Decimal
	FullyUsed bool
}

// DebtSummary is the per-client result of the debt calculation.
type DebtSummary struct {
	ClientID            int64
	ClientName          string
	PendingHours        decimal.Decimal
	PendingWorkCost     decimal.Decimal
	PendingMaterialCost decimal.Decimal
	OutstandingCost     decimal.Decimal
	TotalPaid           decimal.Decimal
	CreditCarried       decimal.Decimal
	TotalDebt           decimal.Decimal
	PaymentsUsage       []PaymentUsage
}

// MonthTotal is the amount received in a given year+month.
type MonthTotal struct {
	Year  int
	Month int // 1-12
	Total decimal.Decimal
}
