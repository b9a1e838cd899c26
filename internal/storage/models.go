// Hand-written in sqlc's layout; keep in step with migrations/ and queries/.

package storage

import (
	"database/sql"
)

type Allocation struct {
	ID            int64
	PaymentID     int64
	ClientID      int64
	LineItemID    int64
	LineItemType  string
	AmountApplied string
	LineItemDate  string
	PaymentDate   string
}

type Client struct {
	ID           int64
	Name         string
	HourlyRate   string
	DisplayOrder sql.NullInt64
	Credit       string
}

type MaterialItem struct {
	ID          int64
	ClientID    int64
	Date        string
	Description string
	Cost        string
	Paid        int64
	Settled     int64
}

type Payment struct {
	ID       int64
	ClientID int64
	Amount   string
	Date     string
	Notes    string
}

type WorkItem struct {
	ID       int64
	ClientID int64
	Date     string
	Hours    string
	Paid     int64
	Settled  int64
	Notes    string
}
