package usecase

import "errors"

// Определение ошибок сервиса
var (
	ErrPayoutNotFound = errors.New("payout not found")
)
