package models

import (
	"errors"
	"net/http"
)

// ReasonCode is a stable, machine-readable failure reason. Every expected
// failure of a mutating call carries one; callers must never see internal
// state or stack detail.
type ReasonCode string

const (
	ReasonUserNotFound        ReasonCode = "USER_NOT_FOUND"
	ReasonQuestNotFound       ReasonCode = "QUEST_NOT_FOUND"
	ReasonVoucherNotFound     ReasonCode = "VOUCHER_NOT_FOUND"
	ReasonQuestInactive       ReasonCode = "QUEST_INACTIVE"
	ReasonNotRepeatable       ReasonCode = "NOT_REPEATABLE"
	ReasonDailyLimitReached   ReasonCode = "DAILY_LIMIT_REACHED"
	ReasonOnCooldown          ReasonCode = "ON_COOLDOWN"
	ReasonInsufficientXP      ReasonCode = "INSUFFICIENT_XP"
	ReasonInvalidExchangeRate ReasonCode = "INVALID_EXCHANGE_RATE"
	ReasonInvalidGrant        ReasonCode = "INVALID_GRANT"
	ReasonVoucherAlreadyUsed  ReasonCode = "VOUCHER_ALREADY_USED"
	ReasonVoucherExpired      ReasonCode = "VOUCHER_EXPIRED"
)

// EngineError is an expected, recoverable outcome of an engine operation.
type EngineError struct {
	Code    ReasonCode
	Message string
}

func (e *EngineError) Error() string {
	return string(e.Code) + ": " + e.Message
}

// Is lets errors.Is match two engine errors by code.
func (e *EngineError) Is(target error) bool {
	var t *EngineError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// HTTPStatus maps the reason taxonomy onto response statuses.
func (e *EngineError) HTTPStatus() int {
	switch e.Code {
	case ReasonUserNotFound, ReasonQuestNotFound, ReasonVoucherNotFound:
		return http.StatusNotFound
	case ReasonVoucherAlreadyUsed, ReasonVoucherExpired:
		return http.StatusConflict
	case ReasonInvalidExchangeRate, ReasonInvalidGrant:
		return http.StatusBadRequest
	default:
		return http.StatusUnprocessableEntity
	}
}

var (
	ErrUserNotFound        = &EngineError{ReasonUserNotFound, "user not found"}
	ErrQuestNotFound       = &EngineError{ReasonQuestNotFound, "quest not found"}
	ErrVoucherNotFound     = &EngineError{ReasonVoucherNotFound, "voucher not found or not owned by user"}
	ErrQuestInactive       = &EngineError{ReasonQuestInactive, "quest is not active"}
	ErrNotRepeatable       = &EngineError{ReasonNotRepeatable, "quest already completed and is not repeatable"}
	ErrDailyLimitReached   = &EngineError{ReasonDailyLimitReached, "daily completion limit reached"}
	ErrOnCooldown          = &EngineError{ReasonOnCooldown, "quest is on cooldown"}
	ErrInsufficientXP      = &EngineError{ReasonInsufficientXP, "not enough XP for this exchange"}
	ErrInvalidExchangeRate = &EngineError{ReasonInvalidExchangeRate, "unknown exchange rate"}
	ErrInvalidGrant        = &EngineError{ReasonInvalidGrant, "grant amount must be positive"}
	ErrVoucherAlreadyUsed  = &EngineError{ReasonVoucherAlreadyUsed, "voucher has already been used"}
	ErrVoucherExpired      = &EngineError{ReasonVoucherExpired, "voucher has expired"}
)

// AsEngineError unwraps err into an EngineError if it is one.
func AsEngineError(err error) (*EngineError, bool) {
	var e *EngineError
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
