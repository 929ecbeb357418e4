package database

// Dialect captures the vendor-specific SQL fragments the query builder needs.
// Each driver package exports one.
type Dialect interface {
	// Name is the driver name, used in logs and errors.
	Name() Driver

	// Placeholder returns the bind placeholder for the n-th argument (1-based).
	Placeholder(n int) string

	// RandomSample wraps a SELECT over cte so that it returns at most limit
	// rows in random order. cte is the name of the CTE holding the
	// filtered rows.
	RandomSample(cte string, limit int) string

	// MaxInListSize is the largest number of literals allowed in an IN
	// list. Zero means no documented limit.
	MaxInListSize() int
}
