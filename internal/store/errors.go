package store

import (
	"database/sql"
	"fmt"

	"github.com/rpggio/syncus/internal/repository"
)

// requireAffected maps a zero-row write to repository.ErrNotFound.
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
