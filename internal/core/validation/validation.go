package validation

import (
	"errors"
	"fmt"

	"github.com/Nzyazin/payouts/internal/core/models"
	"github.com/shopspring/decimal"
)

// Определение ошибок валидации
var (
	ErrMissingMethod        = errors.New("payment method is required")
	ErrInvalidCardNumber    = errors.New("invalid card number")
	ErrInvalidAccountNumber = errors.New("invalid account number")
	ErrInvalidAmount        = errors.New("amount is below the allowed minimum")
	ErrInvalidStatus        = errors.New("invalid status")
)

// FieldError привязывает ошибку валидации к конкретному полю заявки
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

func fieldError(field string, err error) *FieldError {
	return &FieldError{Field: field, Err: err}
}

// Engine проверяет поля заявки в зависимости от способа выплаты.
// Не имеет состояния кроме настроек, поэтому безопасен для параллельного
// использования из обработчиков и воркеров.
type Engine struct {
	cardNumberLength    int
	accountNumberLength int
	minAmount           decimal.Decimal
}

func NewEngine(cardNumberLength, accountNumberLength int, minAmount decimal.Decimal) *Engine {
	return &Engine{
		cardNumberLength:    cardNumberLength,
		accountNumberLength: accountNumberLength,
		minAmount:           minAmount,
	}
}

// ValidateMethodFields проверяет, что номер карты либо номер счёта
// соответствует выбранному способу выплаты. Чистая функция: никаких
// побочных эффектов, один и тот же вход даёт один и тот же результат.
func (e *Engine) ValidateMethodFields(method models.PaymentMethod, cardNumber, accountNumber string) error {
	if !method.Valid() {
		return fieldError("method", ErrMissingMethod)
	}

	switch method {
	case models.MethodCardTransfer:
		if !digitsOfLength(cardNumber, e.cardNumberLength) {
			return fieldError("card_number", ErrInvalidCardNumber)
		}
	case models.MethodBankTransfer:
		if !digitsOfLength(accountNumber, e.accountNumberLength) {
			return fieldError("account_number", ErrInvalidAccountNumber)
		}
	}

	return nil
}

// ValidateAmount проверяет сумму на пути создания: сумма должна быть
// строго больше настроенного минимума.
func (e *Engine) ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(e.minAmount) {
		return fieldError("amount", ErrInvalidAmount)
	}
	return nil
}

// AmountBelowFloor — та же граница, но с точки зрения воркера:
// true означает, что заявку надо отклонить.
func (e *Engine) AmountBelowFloor(amount decimal.Decimal) bool {
	return amount.LessThanOrEqual(e.minAmount)
}

func digitsOfLength(s string, length int) bool {
	if len(s) != length {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
