package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "YATIRIM"
	TransactionTypeWithdrawal TransactionType = "ÇEKİM"
	// Eski kayıtlarda kalan yazım; okurken çekim sayılır
	TransactionTypeLegacyWithdrawal TransactionType = "CEKIM"
)

// WithdrawalTypes lists every stored spelling of a withdrawal.
var WithdrawalTypes = []TransactionType{TransactionTypeWithdrawal, TransactionTypeLegacyWithdrawal}

// Transaction: tek bir para hareketi. salesperson_id ile ret_member_id'den
// yalnızca biri dolu olabilir.
type Transaction struct {
	ID              uint                `gorm:"primaryKey" json:"id"`
	Type            TransactionType     `gorm:"size:16;not null;index" json:"type"`
	OriginalAmount  decimal.Decimal     `gorm:"type:numeric;not null" json:"original_amount"`
	Currency        string              `gorm:"size:8;not null" json:"currency"`
	ManualRateToUSD decimal.NullDecimal `gorm:"column:manual_rate_to_usd;type:numeric" json:"manual_rate_to_usd"`
	AmountUSD       decimal.Decimal     `gorm:"column:amount_usd;type:numeric;not null" json:"amount_usd"`
	CustomerID      uint                `gorm:"index;not null" json:"customer_id"`
	Customer        *Customer           `json:"-"`
	SalespersonID   *uint               `gorm:"index;check:chk_transactions_attribution,(salesperson_id IS NULL) <> (ret_member_id IS NULL)" json:"salesperson_id"`
	Salesperson     *Salesperson        `json:"-"`
	RetMemberID     *uint               `gorm:"index" json:"ret_member_id"`
	RetMember       *RetMember          `json:"-"`
	Note            *string             `gorm:"size:1000" json:"note"`
	CreatedByUserID *uint               `json:"created_by_user_id"`
	CreatedAt       time.Time           `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}
