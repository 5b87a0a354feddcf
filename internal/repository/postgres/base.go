package postgres

import (
	"database/sql"
	"errors"

	apperrors "github.com/aafiyacare/homecare-api/pkg/errors"
)

// notFound translates sql.ErrNoRows into the shared not-found error so
// callers stay oblivious to the storage layer.
func notFound(err error, entity string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NewNotFound(entity, err)
	}
	return err
}

// requireRow converts a zero-row update or delete into a not-found error.
func requireRow(result sql.Result, entity string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.NewNotFound(entity, nil)
	}
	return nil
}
