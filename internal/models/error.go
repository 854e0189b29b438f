package models

import "errors"

var (
	ErrValidation    = errors.New("invalid checkout request")
	ErrConflictData  = errors.New("data conflicts with existing data")
	ErrDataNotFound  = errors.New("data not found")
	ErrNoChargeData  = errors.New("payment intent has no charge data")
	ErrInternalError = errors.New("internal error")
)
