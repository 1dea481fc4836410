package service

import (
	"errors"

	"stylecore/internal/model"
	"stylecore/internal/store"
)

// persistError maps a write the backend silently dropped to a domain error.
func persistError(err error) error {
	if errors.Is(err, store.ErrNotPersisted) {
		return model.ErrNotPersisted
	}
	return err
}
