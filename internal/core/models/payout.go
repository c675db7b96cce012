package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod определяет способ выплаты
type PaymentMethod string

const (
	// MethodBankTransfer - банковский перевод на расчётный счёт
	MethodBankTransfer PaymentMethod = "bank"
	// MethodCardTransfer - перевод на банковскую карту
	MethodCardTransfer PaymentMethod = "card"
)

func (m PaymentMethod) Valid() bool {
	return m == MethodBankTransfer || m == MethodCardTransfer
}

// Currency - валюта выплаты, ISO 4217
type Currency string

const (
	CurrencyRUB Currency = "RUB"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyCNY Currency = "CNY"
)

func (c Currency) Valid() bool {
	switch c {
	case CurrencyRUB, CurrencyUSD, CurrencyEUR, CurrencyCNY:
		return true
	}
	return false
}

// Status - статус заявки на выплату
type Status string

const (
	StatusPending    Status = "pending"
	StatusApproved   Status = "approved"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusRejected   Status = "rejected"
	StatusCancelled  Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusProcessing,
		StatusCompleted, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether the automated pipeline is done with the record.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusRejected
}

// Payout представляет заявку на выплату
type Payout struct {
	ID            uuid.UUID       `json:"payout_uid" db:"payout_uid"`
	Method        PaymentMethod   `json:"method" db:"method"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	Currency      Currency        `json:"currency" db:"currency"`
	Status        Status          `json:"status" db:"status"`
	BankName      string          `json:"bank_name" db:"bank_name"`
	BankBik       string          `json:"bank_bik" db:"bank_bik"`
	CardNumber    string          `json:"card_number" db:"card_number"`
	AccountNumber string          `json:"account_number" db:"account_number"`
	Phone         string          `json:"phone" db:"phone"`
	Description   string          `json:"description" db:"description"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// PayoutCreate представляет запрос на создание заявки
type PayoutCreate struct {
	Method        PaymentMethod   `json:"method"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      Currency        `json:"currency" validate:"omitempty,oneof=RUB USD EUR CNY"`
	BankName      string          `json:"bank_name" validate:"required"`
	BankBik       string          `json:"bank_bik"`
	CardNumber    string          `json:"card_number"`
	AccountNumber string          `json:"account_number"`
	Phone         string          `json:"phone" validate:"required,e164"`
	Description   string          `json:"description"`
}

// PayoutPatch представляет частичное обновление заявки.
// nil-поле означает "не менять". Сумма и валюта через PATCH не меняются.
type PayoutPatch struct {
	Method        *PaymentMethod `json:"method"`
	Status        *Status        `json:"status"`
	BankName      *string        `json:"bank_name"`
	BankBik       *string        `json:"bank_bik"`
	CardNumber    *string        `json:"card_number"`
	AccountNumber *string        `json:"account_number"`
	Phone         *string        `json:"phone" validate:"omitempty,e164"`
	Description   *string        `json:"description"`
}

// NewPayout собирает новую заявку с дефолтами: свежий id, статус pending,
// валюта RUB если не указана, обе временные метки равны моменту создания.
func NewPayout(in PayoutCreate) *Payout {
	currency := in.Currency
	if currency == "" {
		currency = CurrencyRUB
	}
	now := time.Now().UTC()
	return &Payout{
		ID:            uuid.New(),
		Method:        in.Method,
		Amount:        in.Amount,
		Currency:      currency,
		Status:        StatusPending,
		BankName:      in.BankName,
		BankBik:       in.BankBik,
		CardNumber:    in.CardNumber,
		AccountNumber: in.AccountNumber,
		Phone:         in.Phone,
		Description:   in.Description,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
