package domain

import (
	"errors"
	"fmt"
)

var (
	ErrFileNotFound      = errors.New("file record not found")
	ErrQueueNotFound     = errors.New("queue entry not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrIllegalTransition = errors.New("illegal state transition")
	ErrExtraction        = errors.New("extraction failure")
	ErrTemporary         = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

func stateError(state FileState) error {
	return fmt.Errorf("record already in terminal state %q", state)
}
