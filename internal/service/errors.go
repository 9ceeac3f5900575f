package service

import (
	"errors"
	"fmt"

	"task_manager/internal/domain"
	"task_manager/internal/repository"
)

// storeErr translates repository sentinels into domain errors. A nil
// replacement leaves that sentinel wrapped as an internal failure.
func storeErr(op string, err error, notFound, duplicate *domain.Error) error {
	switch {
	case err == nil:
		return nil
	case notFound != nil && errors.Is(err, repository.ErrNotFound):
		return notFound
	case duplicate != nil && errors.Is(err, repository.ErrDuplicate):
		return duplicate
	}
	return fmt.Errorf("%s: %w", op, err)
}
