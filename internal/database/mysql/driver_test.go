package mysql

import (
	"errors"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"

	"github.com/koustreak/nullscan/internal/database"
	"github.com/koustreak/nullscan/internal/errs"
)

func TestBuildDSN(t *testing.T) {
	dsn := BuildDSN(database.Credentials{
		User: "colin", Password: "secret", Host: "mysql.internal", Port: "3306", Service: "registry",
	})

	assert.Contains(t, dsn, "colin:secret@tcp(mysql.internal:3306)/registry")
	assert.Contains(t, dsn, "parseTime=true")
}

func TestDialect(t *testing.T) {
	d := Dialect{}

	assert.Equal(t, "?", d.Placeholder(3))
	assert.Equal(t, "SELECT * FROM filtered_rows\nORDER BY RAND()\nLIMIT 100", d.RandomSample("filtered_rows", 100))
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want errs.ErrKind
	}{
		{"access denied", &mysql.MySQLError{Number: 1045, Message: "Access denied"}, errs.ErrKindConnectionFailed},
		{"no such table", &mysql.MySQLError{Number: 1146, Message: "Table doesn't exist"}, errs.ErrKindQueryFailed},
		{"select denied", &mysql.MySQLError{Number: 1142, Message: "SELECT command denied"}, errs.ErrKindPermissionDenied},
		{"max execution time", &mysql.MySQLError{Number: 3024}, errs.ErrKindTimeout},
		{"network", errors.New("dial tcp: connection refused"), errs.ErrKindConnectionFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError(tt.err, "query failed")
			assert.Equal(t, tt.want, got.Kind)
			assert.ErrorIs(t, got, tt.err)
		})
	}
}
