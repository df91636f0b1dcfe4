package repositories

import (
	"database/sql"
	"fmt"
)

// requireRow turns a zero-row update into an error naming what was missing.
func requireRow(result sql.Result, what string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%s not found", what)
	}
	return nil
}
