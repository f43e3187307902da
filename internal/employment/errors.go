package employment

import (
	"errors"

	"github.com/talgya/laborsim/internal/economy"
)

var (
	ErrWorkerNotFound         = errors.New("worker not found")
	ErrAlreadyHired           = errors.New("worker already hired")
	ErrNotHired               = errors.New("worker not hired")
	ErrWorkerResting          = errors.New("worker is resting after dismissal")
	ErrProfessionLimitReached = errors.New("profession hire limit reached")
	ErrCategoryLimitReached   = errors.New("category hire limit reached")
	ErrMaxSkill               = errors.New("worker already at max skill")

	// ErrInsufficientFunds aliases the treasury error so callers can match
	// either package.
	ErrInsufficientFunds = economy.ErrInsufficientFunds
)
