package postgres

import (
	"fmt"

	"github.com/koustreak/nullscan/internal/database"
)

// Dialect emits PostgreSQL syntax: $n placeholders, RANDOM() and LIMIT.
type Dialect struct{}

var _ database.Dialect = Dialect{}

func (Dialect) Name() database.Driver { return database.DriverPostgres }

func (Dialect) Placeholder(n int) string { return fmt.Sprintf("$%d", n) }

func (Dialect) RandomSample(cte string, limit int) string {
	return fmt.Sprintf("SELECT * FROM %s\nORDER BY RANDOM()\nLIMIT %d", cte, limit)
}

// MaxInListSize is zero: Postgres has no documented IN-list cap.
func (Dialect) MaxInListSize() int { return 0 }
