package schema

import (
	"database/sql"
	"fmt"
	"strings"

	migrate "github.com/rubenv/sql-migrate"

	"github.com/deckwave/enginelibrary/internal/errs"
	"github.com/deckwave/enginelibrary/pkg/logger"
)

// CurrentPlayedIndicator is the constant value reference hardware writes to
// Information.currentPlayedIndiciator on a freshly created library. Its
// origin is undocumented; this library reproduces it bit-for-bit rather than
// guessing at a more "sensible" default.
const CurrentPlayedIndicator int64 = 1410065408

var log = logger.New("schema")

// Create applies a version's DDL to db, identified by dbKey ("m" or "p",
// matching the keys BuildDDL returns). It is idempotent only in the
// sql-migrate sense: re-running Create against an already-created database
// is a no-op because the migration id has already been recorded.
func Create(db *sql.DB, v Version, dbKey string) error {
	l := log.Function("Create")

	ddl, ok := BuildDDL(v)[dbKey]
	if !ok {
		return l.Err("no DDL for database key", fmt.Errorf("unknown key %q for version %s", dbKey, v), "version", v.String(), "key", dbKey)
	}

	source := &migrate.MemoryMigrationSource{
		Migrations: []*migrate.Migration{
			{
				Id: fmt.Sprintf("%s-%s", v.String(), dbKey),
				Up: []string(ddl),
			},
		},
	}

	if _, err := migrate.Exec(db, "sqlite3", source, migrate.Up); err != nil {
		return l.Err("failed to apply schema DDL", err, "version", v.String(), "key", dbKey)
	}

	l.Info("schema created", "version", v.String(), "key", dbKey)
	return nil
}

// Verify checks that db's installed schema for dbKey exactly matches v's
// DDL: every declared table carries exactly the declared columns (name,
// type, nullability, default, primary-key rank) and exactly the declared
// indexes (name, uniqueness, creation method, column order), and no more.
// This mirrors the reference implementation's schema_validate_utils.hpp,
// which performs the same table_info/index_list/index_info comparison
// against a hard-coded per-version expectation; here the "hard-coded
// expectation" is the DDL itself, since ddl.go already hard-codes the
// per-version CREATE statements.
func Verify(db *sql.DB, v Version, dbKey string) error {
	l := log.Function("Verify")

	ddl, ok := BuildDDL(v)[dbKey]
	if !ok {
		return l.Err("no DDL for database key", fmt.Errorf("unknown key %q for version %s", dbKey, v), "version", v.String(), "key", dbKey)
	}

	expectedTables := parseDDL(ddl)
	var tableCount int
	if err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' AND name != 'gorp_migrations'`).Scan(&tableCount); err != nil {
		return l.Err("failed to count tables", err)
	}
	if tableCount != len(expectedTables) {
		detail := fmt.Sprintf("database has %d tables, expected %d for schema version %s", tableCount, len(expectedTables), v.String())
		return l.Err("table count mismatch", &errs.SchemaMismatch{Detail: detail}, "version", v.String())
	}

	for table, expected := range expectedTables {
		actualCols, err := actualColumns(db, table)
		if err != nil {
			return l.Err("failed to introspect table", err, "table", table)
		}
		if actualCols == nil {
			detail := fmt.Sprintf("table %q not found for schema version %s", table, v.String())
			return l.Err("expected table is missing", &errs.SchemaMismatch{Detail: detail}, "version", v.String(), "table", table)
		}
		if len(actualCols) != len(expected.Columns) {
			detail := fmt.Sprintf("table %q has %d columns, expected %d for schema version %s", table, len(actualCols), len(expected.Columns), v.String())
			return l.Err("table column count mismatch", &errs.SchemaMismatch{Detail: detail}, "version", v.String(), "table", table)
		}
		for _, col := range expected.Columns {
			actual, ok := actualCols[col.Name]
			if !ok {
				detail := fmt.Sprintf("column %q not found on table %q for schema version %s", col.Name, table, v.String())
				return l.Err("expected column is missing", &errs.SchemaMismatch{Detail: detail},
					"version", v.String(), "table", table, "column", col.Name)
			}
			if reason := compareColumn(col, actual); reason != "" {
				detail := fmt.Sprintf("column %q on table %q for schema version %s %s", col.Name, table, v.String(), reason)
				return l.Err("column definition mismatch", &errs.SchemaMismatch{Detail: detail},
					"version", v.String(), "table", table, "column", col.Name)
			}
		}

		actualIdx, err := actualIndexes(db, table)
		if err != nil {
			return l.Err("failed to introspect indexes", err, "table", table)
		}
		if len(actualIdx) != len(expected.Indexes) {
			detail := fmt.Sprintf("table %q has %d indexes, expected %d for schema version %s", table, len(actualIdx), len(expected.Indexes), v.String())
			return l.Err("table index count mismatch", &errs.SchemaMismatch{Detail: detail}, "version", v.String(), "table", table)
		}
		for name, idx := range expected.Indexes {
			actual, ok := actualIdx[name]
			if !ok {
				detail := fmt.Sprintf("index %q not found on table %q for schema version %s", name, table, v.String())
				return l.Err("expected index is missing", &errs.SchemaMismatch{Detail: detail},
					"version", v.String(), "table", table, "index", name)
			}
			if reason := compareIndex(idx, actual); reason != "" {
				detail := fmt.Sprintf("index %q on table %q for schema version %s %s", name, table, v.String(), reason)
				return l.Err("index definition mismatch", &errs.SchemaMismatch{Detail: detail},
					"version", v.String(), "table", table, "index", name)
			}
		}
	}

	return nil
}

// HasColumn reports whether table carries column in db. Detect uses it for
// the 1.18.0 dual-variant disambiguation.
func HasColumn(db *sql.DB, table, column string) (bool, error) {
	cols, err := actualColumns(db, table)
	if err != nil {
		return false, err
	}
	_, ok := cols[column]
	return ok, nil
}

// columnSpec describes one column's declared (or introspected) shape:
// exactly the fields schema_validate_utils.hpp's table_info_entry checks.
type columnSpec struct {
	Name    string
	Type    string
	NotNull bool
	Default sql.NullString
	PKRank  int // 1-based rank among this table's primary-key columns, 0 if not part of one
}

// indexSpec describes one index's declared (or introspected) shape: exactly
// the fields schema_validate_utils.hpp's index_list_entry/index_info_entry
// check. CreationMethod mirrors PRAGMA index_list's "origin" column: "c" for
// an explicit CREATE INDEX, "u"/"pk" for an index SQLite derives implicitly
// from a UNIQUE or PRIMARY KEY table constraint.
type indexSpec struct {
	Unique         bool
	CreationMethod string
	Columns        []string
}

// tableSpec is one table's full expected (or actual) shape.
type tableSpec struct {
	Columns []columnSpec
	Indexes map[string]indexSpec
}

// parseDDL extracts a table->tableSpec map from a DDL slice by parsing each
// hard-coded "CREATE TABLE"/"CREATE [UNIQUE] INDEX" statement. It is a
// deliberately simple parser: DDL in this package is hand-written and never
// contains nested parentheses inside a column or index definition, nor any
// table-level constraint beyond the inline column modifiers ddl.go uses.
func parseDDL(ddl DDL) map[string]*tableSpec {
	tables := map[string]*tableSpec{}
	tableOf := func(name string) *tableSpec {
		spec, ok := tables[name]
		if !ok {
			spec = &tableSpec{Indexes: map[string]indexSpec{}}
			tables[name] = spec
		}
		return spec
	}

	for _, stmt := range ddl {
		upper := strings.ToUpper(stmt)
		switch {
		case strings.HasPrefix(upper, "CREATE TABLE"):
			name, columns := parseCreateTable(stmt)
			spec := tableOf(name)
			spec.Columns = columns
		case strings.HasPrefix(upper, "CREATE INDEX"), strings.HasPrefix(upper, "CREATE UNIQUE INDEX"):
			table, name, idx := parseCreateIndex(stmt)
			tableOf(table).Indexes[name] = idx
		}
	}
	return tables
}

func parseCreateTable(stmt string) (string, []columnSpec) {
	rest := strings.TrimSpace(stmt[len("CREATE TABLE"):])
	nameEnd := strings.IndexAny(rest, " \t\n(")
	table := rest[:nameEnd]

	open := strings.Index(rest, "(")
	closeIdx := strings.LastIndex(rest, ")")
	body := rest[open+1 : closeIdx]

	var columns []columnSpec
	pkRank := 0
	for _, line := range strings.Split(body, ",") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		col := columnSpec{Name: fields[0]}
		if len(fields) > 1 {
			col.Type = strings.ToUpper(fields[1])
		}

		upperLine := strings.ToUpper(line)
		if strings.Contains(upperLine, "NOT NULL") {
			col.NotNull = true
		}
		if strings.Contains(upperLine, "PRIMARY KEY") {
			pkRank++
			col.PKRank = pkRank
		}
		if at := strings.Index(upperLine, "DEFAULT"); at >= 0 {
			value := strings.TrimSpace(line[at+len("DEFAULT"):])
			if stop := strings.Index(strings.ToUpper(value), "NOT NULL"); stop >= 0 {
				value = strings.TrimSpace(value[:stop])
			}
			if stop := strings.Index(strings.ToUpper(value), "PRIMARY KEY"); stop >= 0 {
				value = strings.TrimSpace(value[:stop])
			}
			col.Default = sql.NullString{String: value, Valid: true}
		}

		columns = append(columns, col)
	}
	return table, columns
}

func parseCreateIndex(stmt string) (table, name string, idx indexSpec) {
	unique := false
	rest := strings.TrimSpace(stmt[len("CREATE INDEX"):])
	if strings.HasPrefix(strings.ToUpper(stmt), "CREATE UNIQUE INDEX") {
		unique = true
		rest = strings.TrimSpace(stmt[len("CREATE UNIQUE INDEX"):])
	}

	fields := strings.Fields(rest)
	name = fields[0]

	onAt := strings.Index(strings.ToUpper(rest), " ON ")
	afterOn := strings.TrimSpace(rest[onAt+len(" ON "):])
	tableEnd := strings.IndexAny(afterOn, " \t\n(")
	table = afterOn[:tableEnd]

	open := strings.Index(afterOn, "(")
	closeIdx := strings.LastIndex(afterOn, ")")
	var cols []string
	for _, c := range strings.Split(afterOn[open+1:closeIdx], ",") {
		cols = append(cols, strings.TrimSpace(c))
	}

	return table, name, indexSpec{Unique: unique, CreationMethod: "c", Columns: cols}
}

// compareColumn returns a non-empty human-readable reason when actual does
// not match every field expected declares, or "" when it matches.
func compareColumn(expected, actual columnSpec) string {
	if expected.Type != "" && !strings.EqualFold(expected.Type, actual.Type) {
		return fmt.Sprintf("has type %q, expected %q", actual.Type, expected.Type)
	}
	if expected.NotNull != actual.NotNull {
		return fmt.Sprintf("has nullable=%v, expected nullable=%v", !actual.NotNull, !expected.NotNull)
	}
	if expected.Default.Valid != actual.Default.Valid ||
		(expected.Default.Valid && !strings.EqualFold(expected.Default.String, actual.Default.String)) {
		return "has a mismatched default value"
	}
	if expected.PKRank != actual.PKRank {
		return fmt.Sprintf("has primary-key rank %d, expected %d", actual.PKRank, expected.PKRank)
	}
	return ""
}

// compareIndex returns a non-empty human-readable reason when actual does
// not match every field expected declares, or "" when it matches.
func compareIndex(expected, actual indexSpec) string {
	if expected.Unique != actual.Unique {
		return fmt.Sprintf("has unique=%v, expected unique=%v", actual.Unique, expected.Unique)
	}
	if expected.CreationMethod != actual.CreationMethod {
		return fmt.Sprintf("has creation method %q, expected %q", actual.CreationMethod, expected.CreationMethod)
	}
	if len(expected.Columns) != len(actual.Columns) {
		return fmt.Sprintf("indexes %d columns, expected %d", len(actual.Columns), len(expected.Columns))
	}
	for i := range expected.Columns {
		if !strings.EqualFold(expected.Columns[i], actual.Columns[i]) {
			return fmt.Sprintf("indexes column %q in position %d, expected %q", actual.Columns[i], i, expected.Columns[i])
		}
	}
	return ""
}

func actualColumns(db *sql.DB, table string) (map[string]columnSpec, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%q)", table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols := map[string]columnSpec{}
	for rows.Next() {
		var (
			cid       int
			name      string
			colType   string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return nil, err
		}
		cols[name] = columnSpec{
			Name:    name,
			Type:    strings.ToUpper(colType),
			NotNull: notNull != 0,
			Default: dfltValue,
			PKRank:  pk,
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, nil
	}
	return cols, nil
}

func actualIndexes(db *sql.DB, table string) (map[string]indexSpec, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA index_list(%q)", table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type listing struct {
		name   string
		unique bool
		origin string
	}
	var listings []listing
	for rows.Next() {
		var (
			seq     int
			name    string
			unique  int
			origin  string
			partial int
		)
		if err := rows.Scan(&seq, &name, &unique, &origin, &partial); err != nil {
			return nil, err
		}
		listings = append(listings, listing{name: name, unique: unique != 0, origin: origin})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := map[string]indexSpec{}
	for _, l := range listings {
		cols, err := indexColumns(db, l.name)
		if err != nil {
			return nil, err
		}
		out[l.name] = indexSpec{Unique: l.unique, CreationMethod: l.origin, Columns: cols}
	}
	return out, nil
}

func indexColumns(db *sql.DB, index string) ([]string, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA index_info(%q)", index))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var (
			seqno, cid int
			name       sql.NullString
		)
		if err := rows.Scan(&seqno, &cid, &name); err != nil {
			return nil, err
		}
		cols = append(cols, name.String)
	}
	return cols, rows.Err()
}
