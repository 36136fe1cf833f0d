package domain

import "errors"

// Domain errors (no external dependencies).
var (
	ErrNotFound          = errors.New("resource not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidDraft      = errors.New("invalid transaction draft")
	ErrItemNotInStock    = errors.New("item not in stock")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrSupplierNotFound  = errors.New("supplier not found")
	ErrDownloadFailed    = errors.New("media download failed")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrSessionNotFound   = errors.New("call session not found")
	ErrSessionExpired    = errors.New("call session expired")
)
