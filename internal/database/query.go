package database

import (
	"database/sql/driver"
	"fmt"
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/koustreak/nullscan/internal/errs"
)

// filteredCTE names the CTE that holds the filtered target rows.
const filteredCTE = "filtered_rows"

// identPattern is the allowlist for identifiers. Identifiers cannot be
// bound as parameters, so anything outside this set is rejected. Names are
// left unquoted so Oracle keeps folding them to upper case.
var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$#]*$`)

// Query is a SQL statement and its bind arguments.
type Query struct {
	SQL  string
	Args []any
}

// Filter restricts the target table to rows whose Column holds an event id
// that belongs to a filing of the given type:
//
//	t.<Column> IN (SELECT e.<EventKey> FROM <EventTable> e
//	               JOIN <FilingTable> f ON e.<EventKey> = f.<EventKey>
//	               WHERE f.<FilingTypeColumn> = :filingType)
//
// Zero-valued table and column names fall back to the EVENT / FILING
// defaults.
type Filter struct {
	Column           string
	FilingType       string
	EventTable       string
	FilingTable      string
	EventKey         string
	FilingTypeColumn string
}

func (f Filter) withDefaults() Filter {
	if f.EventTable == "" {
		f.EventTable = "EVENT"
	}
	if f.FilingTable == "" {
		f.FilingTable = "FILING"
	}
	if f.EventKey == "" {
		f.EventKey = "EVENT_ID"
	}
	if f.FilingTypeColumn == "" {
		f.FilingTypeColumn = "FILING_TYP_CD"
	}
	return f
}

// SampleBuilder constructs the stage-one sample query and its companion
// count query.
//
// Usage (Oracle):
//
//	q, err := database.Sample("COLIN_MGR_TST", "CORP_PARTY", oracle.Dialect{}).
//	    FilterBy(database.Filter{Column: "START_EVENT_ID", FilingType: "NOCDR"}).
//	    Random(1000).
//	    Build()
type SampleBuilder struct {
	schema  string
	table   string
	dialect Dialect
	filter  *Filter
	random  bool
	limit   int
}

// Sample starts a new SampleBuilder over schema.table. Without Random the
// builder returns every filtered row.
func Sample(schema, table string, d Dialect) *SampleBuilder {
	return &SampleBuilder{schema: schema, table: table, dialect: d}
}

// FilterBy restricts the sample through the events/filings join.
func (b *SampleBuilder) FilterBy(f Filter) *SampleBuilder {
	f = f.withDefaults()
	b.filter = &f
	return b
}

// Random switches to random sampling truncated to limit rows.
func (b *SampleBuilder) Random(limit int) *SampleBuilder {
	b.random = true
	b.limit = limit
	return b
}

// Build produces the sample query.
func (b *SampleBuilder) Build() (Query, error) {
	from, args, err := b.filteredFrom()
	if err != nil {
		return Query{}, err
	}

	var sb strings.Builder
	sb.WriteString("WITH " + filteredCTE + " AS (\n")
	sb.WriteString("    SELECT t.*\n")
	sb.WriteString(from)
	sb.WriteString(")\n")
	if b.random {
		sb.WriteString(b.dialect.RandomSample(filteredCTE, b.limit))
	} else {
		sb.WriteString("SELECT * FROM " + filteredCTE)
	}

	return Query{SQL: sb.String(), Args: args}, nil
}

// BuildCount produces the query counting every row that satisfies the
// filter. It is never bounded by the row limit.
func (b *SampleBuilder) BuildCount() (Query, error) {
	from, args, err := b.filteredFrom()
	if err != nil {
		return Query{}, err
	}
	return Query{SQL: "SELECT COUNT(*) AS count\n" + from, Args: args}, nil
}

// filteredFrom renders the FROM/WHERE part shared by both queries.
func (b *SampleBuilder) filteredFrom() (string, []any, error) {
	if b.schema == "" || b.table == "" {
		return "", nil, errs.New(errs.ErrKindConfig, "missing schema configuration or table name")
	}
	if b.random && b.limit < 0 {
		return "", nil, errs.Newf(errs.ErrKindConfig, "row limit must not be negative, got %d", b.limit)
	}
	if err := validateIdents(b.schema, b.table); err != nil {
		return "", nil, err
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("    FROM %s.%s t\n", b.schema, b.table))

	if b.filter == nil {
		return sb.String(), nil, nil
	}

	f := b.filter
	if f.Column == "" || f.FilingType == "" {
		return "", nil, errs.New(errs.ErrKindConfig, "filter needs both an event id column and a filing type")
	}
	if err := validateIdents(f.Column, f.EventTable, f.FilingTable, f.EventKey, f.FilingTypeColumn); err != nil {
		return "", nil, err
	}

	sb.WriteString(fmt.Sprintf("    WHERE t.%s IN (\n", f.Column))
	sb.WriteString(fmt.Sprintf("        SELECT e.%s\n", f.EventKey))
	sb.WriteString(fmt.Sprintf("        FROM %s e\n", f.EventTable))
	sb.WriteString(fmt.Sprintf("        JOIN %s f ON e.%s = f.%s\n", f.FilingTable, f.EventKey, f.EventKey))
	sb.WriteString(fmt.Sprintf("        WHERE f.%s = %s\n", f.FilingTypeColumn, b.dialect.Placeholder(1)))
	sb.WriteString("    )\n")

	return sb.String(), []any{f.FilingType}, nil
}

// SelectIn builds `SELECT * FROM table WHERE column IN (v1,v2,...)` with the
// values rendered as literals. table may be schema-qualified.
func SelectIn(table, column string, values []any) (Query, error) {
	if table == "" || column == "" {
		return Query{}, errs.New(errs.ErrKindConfig, "connected table and column names are required")
	}
	if err := validateQualified(table); err != nil {
		return Query{}, err
	}
	if err := validateIdents(column); err != nil {
		return Query{}, err
	}
	if len(values) == 0 {
		return Query{}, errs.New(errs.ErrKindEmptySample, "no values to filter the connected table by")
	}

	list, err := FormatInList(values)
	if err != nil {
		return Query{}, err
	}

	sql := fmt.Sprintf("SELECT *\nFROM %s\nWHERE %s IN (%s)", table, column, list)
	return Query{SQL: sql}, nil
}

// FormatInList renders values as a comma-separated literal list:
// strings are single-quoted, numbers are left bare.
//
//	FormatInList([]any{1, 2, "A"}) // 1,2,'A'
func FormatInList(values []any) (string, error) {
	parts := make([]string, len(values))
	for i, v := range values {
		lit, err := FormatLiteral(v)
		if err != nil {
			return "", err
		}
		parts[i] = lit
	}
	return strings.Join(parts, ","), nil
}

// FormatLiteral renders one scanned value as a SQL literal.
func FormatLiteral(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "NULL", nil
	case string:
		return quoteLiteral(x), nil
	case []byte:
		return quoteLiteral(string(x)), nil
	case bool:
		if x {
			return "1", nil
		}
		return "0", nil
	case int:
		return strconv.FormatInt(int64(x), 10), nil
	case int8:
		return strconv.FormatInt(int64(x), 10), nil
	case int16:
		return strconv.FormatInt(int64(x), 10), nil
	case int32:
		return strconv.FormatInt(int64(x), 10), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case uint:
		return strconv.FormatUint(uint64(x), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(x), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(x), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(x), 10), nil
	case uint64:
		return strconv.FormatUint(x, 10), nil
	case float32:
		return formatFloat(float64(x), 32)
	case float64:
		return formatFloat(x, 64)
	case time.Time:
		return quoteLiteral(x.Format("2006-01-02 15:04:05")), nil
	case pgtype.Numeric:
		return formatNumeric(x)
	case *pgtype.Numeric:
		if x == nil {
			return "NULL", nil
		}
		return formatNumeric(*x)
	case driver.Valuer:
		// sql.Null* and pgtype wrappers other than Numeric
		inner, err := x.Value()
		if err != nil {
			return "", errs.Wrap(errs.ErrKindInvalidInput, "cannot render filter value", err)
		}
		if _, again := inner.(driver.Valuer); again {
			return "", errs.Newf(errs.ErrKindInvalidInput, "unsupported filter value type %T", v)
		}
		return FormatLiteral(inner)
	default:
		return "", errs.Newf(errs.ErrKindInvalidInput, "unsupported filter value type %T", v)
	}
}

// formatNumeric renders a Postgres NUMERIC bare. Value() would hand back a
// string, which would be quoted.
func formatNumeric(n pgtype.Numeric) (string, error) {
	if !n.Valid {
		return "NULL", nil
	}
	if n.NaN || n.InfinityModifier != pgtype.Finite {
		return "", errs.New(errs.ErrKindInvalidInput, "cannot use a non-finite numeric as a filter value")
	}
	if n.Int == nil {
		return "0", nil
	}

	if n.Exp >= 0 {
		scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n.Exp)), nil)
		return new(big.Int).Mul(n.Int, scale).String(), nil
	}

	digits := new(big.Int).Abs(n.Int).String()
	frac := int(-n.Exp)
	if len(digits) <= frac {
		digits = strings.Repeat("0", frac-len(digits)+1) + digits
	}
	lit := digits[:len(digits)-frac] + "." + digits[len(digits)-frac:]
	if n.Int.Sign() < 0 {
		lit = "-" + lit
	}
	return lit, nil
}

func formatFloat(f float64, bits int) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", errs.Newf(errs.ErrKindInvalidInput, "cannot use %v as a filter value", f)
	}
	return strconv.FormatFloat(f, 'f', -1, bits), nil
}

// quoteLiteral wraps s in single quotes, doubling embedded quotes.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func validateIdents(names ...string) error {
	for _, n := range names {
		if !identPattern.MatchString(n) {
			return errs.Newf(errs.ErrKindInvalidInput, "invalid identifier %q", n)
		}
	}
	return nil
}

// validateQualified accepts NAME or SCHEMA.NAME.
func validateQualified(name string) error {
	parts := strings.Split(name, ".")
	if len(parts) > 2 {
		return errs.Newf(errs.ErrKindInvalidInput, "invalid identifier %q", name)
	}
	return validateIdents(parts...)
}
