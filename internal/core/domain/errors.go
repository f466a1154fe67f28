package domain

import "errors"

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("order not found")
	ErrInvalidState    = errors.New("invalid state")
	ErrLedgerClosed    = errors.New("ledger closed")
)
