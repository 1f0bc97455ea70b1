package entity

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("qr code disabled")
	ErrInvalidInput    = errors.New("invalid input")
	ErrNoData          = errors.New("no data to update")
	ErrTargetMissing   = errors.New("active qr code has no target url")
	ErrStorageDegraded = errors.New("image storage unavailable")
	ErrTimeout         = errors.New("store timeout")
	ErrDuplicate       = errors.New("duplicate code")
)
