package postgres

import (
	"context"
	"fmt"
)

// TruncateForTest removes all rows from the templates and executions tables.
// Defined in the package proper so postgres_test can reach the unexported db.
func (s *Store) TruncateForTest(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "TRUNCATE TABLE templates, executions RESTART IDENTITY")
	if err != nil {
		return fmt.Errorf("postgres: failed to truncate tables: %w", err)
	}
	return nil
}
