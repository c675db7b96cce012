package validation_test

import (
	"errors"
	"testing"

	"github.com/Nzyazin/payouts/internal/core/models"
	"github.com/Nzyazin/payouts/internal/core/validation"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine() *validation.Engine {
	return validation.NewEngine(16, 20, decimal.Zero)
}

func TestValidateMethodFields(t *testing.T) {
	tests := []struct {
		name          string
		method        models.PaymentMethod
		cardNumber    string
		accountNumber string
		wantErr       error
		wantField     string
	}{
		{
			name:       "card with valid 16-digit number",
			method:     models.MethodCardTransfer,
			cardNumber: "1234567890123456",
		},
		{
			name:          "bank with valid 20-digit account",
			method:        models.MethodBankTransfer,
			accountNumber: "12345678901234567890",
		},
		{
			name:      "missing method",
			method:    "",
			wantErr:   validation.ErrMissingMethod,
			wantField: "method",
		},
		{
			name:      "unknown method",
			method:    "crypto",
			wantErr:   validation.ErrMissingMethod,
			wantField: "method",
		},
		{
			name:      "card without number",
			method:    models.MethodCardTransfer,
			wantErr:   validation.ErrInvalidCardNumber,
			wantField: "card_number",
		},
		{
			name:       "card number too short",
			method:     models.MethodCardTransfer,
			cardNumber: "123456789012345",
			wantErr:    validation.ErrInvalidCardNumber,
			wantField:  "card_number",
		},
		{
			name:       "card number too long",
			method:     models.MethodCardTransfer,
			cardNumber: "12345678901234567",
			wantErr:    validation.ErrInvalidCardNumber,
			wantField:  "card_number",
		},
		{
			name:       "card number with letters",
			method:     models.MethodCardTransfer,
			cardNumber: "12345678901234ab",
			wantErr:    validation.ErrInvalidCardNumber,
			wantField:  "card_number",
		},
		{
			name:      "bank without account",
			method:    models.MethodBankTransfer,
			wantErr:   validation.ErrInvalidAccountNumber,
			wantField: "account_number",
		},
		{
			name:          "account number 15 digits",
			method:        models.MethodBankTransfer,
			accountNumber: "123456789012345",
			wantErr:       validation.ErrInvalidAccountNumber,
			wantField:     "account_number",
		},
		{
			name:          "account number with spaces",
			method:        models.MethodBankTransfer,
			accountNumber: "1234567890 123456789",
			wantErr:       validation.ErrInvalidAccountNumber,
			wantField:     "account_number",
		},
		{
			name:          "card ignores stale account number",
			method:        models.MethodCardTransfer,
			cardNumber:    "1234567890123456",
			accountNumber: "not-a-number",
		},
	}

	engine := newEngine()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := engine.ValidateMethodFields(tt.method, tt.cardNumber, tt.accountNumber)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var fieldErr *validation.FieldError
			require.True(t, errors.As(err, &fieldErr))
			assert.Equal(t, tt.wantField, fieldErr.Field)
		})
	}
}

func TestValidateMethodFieldsIsDeterministic(t *testing.T) {
	engine := newEngine()

	first := engine.ValidateMethodFields(models.MethodCardTransfer, "123", "")
	second := engine.ValidateMethodFields(models.MethodCardTransfer, "123", "")

	require.Error(t, first)
	require.Error(t, second)
	assert.Equal(t, first.Error(), second.Error())
}

func TestValidateAmount(t *testing.T) {
	engine := newEngine()

	assert.NoError(t, engine.ValidateAmount(decimal.NewFromFloat(100.0)))
	assert.NoError(t, engine.ValidateAmount(decimal.NewFromFloat(0.01)))

	err := engine.ValidateAmount(decimal.Zero)
	require.Error(t, err)
	assert.ErrorIs(t, err, validation.ErrInvalidAmount)

	err = engine.ValidateAmount(decimal.NewFromInt(-5))
	assert.ErrorIs(t, err, validation.ErrInvalidAmount)
}

func TestValidateAmountConfiguredFloor(t *testing.T) {
	engine := validation.NewEngine(16, 20, decimal.NewFromInt(10))

	assert.ErrorIs(t, engine.ValidateAmount(decimal.NewFromInt(10)), validation.ErrInvalidAmount)
	assert.NoError(t, engine.ValidateAmount(decimal.NewFromFloat(10.01)))
}

func TestAmountBelowFloor(t *testing.T) {
	engine := newEngine()

	assert.True(t, engine.AmountBelowFloor(decimal.Zero))
	assert.True(t, engine.AmountBelowFloor(decimal.NewFromInt(-1)))
	assert.False(t, engine.AmountBelowFloor(decimal.NewFromFloat(100.0)))
}

func TestConfigurableLengths(t *testing.T) {
	engine := validation.NewEngine(4, 6, decimal.Zero)

	assert.NoError(t, engine.ValidateMethodFields(models.MethodCardTransfer, "1234", ""))
	assert.Error(t, engine.ValidateMethodFields(models.MethodCardTransfer, "1234567890123456", ""))
	assert.NoError(t, engine.ValidateMethodFields(models.MethodBankTransfer, "", "123456"))
}
