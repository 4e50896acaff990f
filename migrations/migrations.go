// migrations/migrations.go
package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"custodial-wallet/internal/repository"
)

//go:embed *.sql
var files embed.FS

// Apply runs every embedded migration in file name order. Each file is
// idempotent, so Apply may run against an already migrated database.
func Apply(ctx context.Context, q repository.DBExecutor) error {
	names, err := fs.Glob(files, "*.sql")
	if err != nil {
		return err
	}
	sort.Strings(names)

	for _, name := range names {
		script, err := files.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := q.ExecContext(ctx, string(script)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
	}
	return nil
}
