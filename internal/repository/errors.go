package repository

import (
	"errors"
	"fmt"
)

// Repository level failures services translate into API errors. Missing
// rows are reported as sql.ErrNoRows.
var (
	ErrOrderNotPending    = errors.New("order is not pending")
	ErrInsufficientCredit = errors.New("insufficient credit")
	ErrDuplicate          = errors.New("duplicate record")
	ErrInUse              = errors.New("record is referenced by other records")
)

// Stages of the approval transaction.
const (
	StageTransition = "transition"
	StageProvision  = "provision"
	StageCharge     = "charge"
)

// StageError reports which step of a multi-statement transaction failed.
// The transaction has been rolled back.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
