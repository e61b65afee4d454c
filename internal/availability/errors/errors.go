package errors

import "errors"

var (
	ErrRuleNotFound = errors.New("availability rule not found")

	ErrBlockedDateNotFound = errors.New("blocked date not found")

	ErrInvalidID = errors.New("invalid ID format")

	ErrDateAlreadyBlocked = errors.New("date is already blocked")
)
