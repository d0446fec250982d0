package domain

import "github.com/shopspring/decimal"

// Account is the sole entity. IDs are caller-assigned and immutable;
// Balance uses exact decimal arithmetic so repeated cent-sized movements
// never drift.
type Account struct {
	ID         int64           `json:"id"`
	Agency     int64           `json:"agency"`
	Digit      int64           `json:"digit"`
	Balance    decimal.Decimal `json:"balance"`
	OwnerName  string          `json:"owner_name"`
	OwnerTaxID string          `json:"owner_tax_id"`
}

type AmountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type AmountResponse struct {
	AccountID int64           `json:"account_id"`
	Amount    decimal.Decimal `json:"amount"`
}

type TransferRequest struct {
	SourceID int64           `json:"source_id"`
	DestID   int64           `json:"dest_id"`
	Amount   decimal.Decimal `json:"amount"`
}

type TransferResponse struct {
	OperationCode int64  `json:"operation_code"`
	Message       string `json:"message"`
}
