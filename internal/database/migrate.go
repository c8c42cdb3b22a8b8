package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations
var migrationsFS embed.FS

// Migrator applies schema migrations in either direction.
type Migrator interface {
	Up() error
	// Down rolls back steps migrations, or all of them when steps <= 0.
	Down(steps int) error
	Version() (uint, bool, error)
	Close() error
}

// NewMigrator returns the migrator for driver.
func NewMigrator(db *sql.DB, driver string, logger *zap.Logger) (Migrator, error) {
	switch driver {
	case "", DriverSQLite:
		return newSQLiteMigrator(db)
	case DriverOracle:
		return &oracleMigrator{db: db, logger: logger}, nil
	default:
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}
}

type sqliteMigrator struct {
	m *migrate.Migrate
}

func newSQLiteMigrator(db *sql.DB) (*sqliteMigrator, error) {
	src, err := iofs.New(migrationsFS, "migrations/sqlite")
	if err != nil {
		return nil, fmt.Errorf("could not read migrations: %w", err)
	}
	drv, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("could not create migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, DriverSQLite, drv)
	if err != nil {
		return nil, fmt.Errorf("could not create migrator: %w", err)
	}
	return &sqliteMigrator{m: m}, nil
}

func (s *sqliteMigrator) Up() error {
	if err := s.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func (s *sqliteMigrator) Down(steps int) error {
	var err error
	if steps <= 0 {
		err = s.m.Down()
	} else {
		err = s.m.Steps(-steps)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func (s *sqliteMigrator) Version() (uint, bool, error) {
	v, dirty, err := s.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return v, dirty, err
}

// Close is a no-op: closing the migrate instance would also close the
// caller's *sql.DB.
func (s *sqliteMigrator) Close() error {
	return nil
}

// oracleMigrator executes the embedded Oracle scripts statement by
// statement and records the applied version in schema_migrations.
type oracleMigrator struct {
	db     *sql.DB
	logger *zap.Logger
}

type migrationFile struct {
	version uint
	name    string
}

func (o *oracleMigrator) ensureTable(ctx context.Context) error {
	var n int
	err := o.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM user_tables WHERE table_name = 'SCHEMA_MIGRATIONS'`).Scan(&n)
	if err != nil {
		return fmt.Errorf("could not inspect schema_migrations: %w", err)
	}
	if n > 0 {
		return nil
	}
	_, err = o.db.ExecContext(ctx, `CREATE TABLE schema_migrations (version NUMBER(19) NOT NULL, dirty NUMBER(1) NOT NULL)`)
	return err
}

func (o *oracleMigrator) Version() (uint, bool, error) {
	ctx := context.Background()
	if err := o.ensureTable(ctx); err != nil {
		return 0, false, err
	}
	var version int64
	var dirty int
	err := o.db.QueryRowContext(ctx, `SELECT version, dirty FROM schema_migrations FETCH FIRST 1 ROWS ONLY`).Scan(&version, &dirty)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return uint(version), dirty == 1, nil
}

func (o *oracleMigrator) setVersion(ctx context.Context, version uint, dirty bool) error {
	if _, err := o.db.ExecContext(ctx, `DELETE FROM schema_migrations`); err != nil {
		return err
	}
	if version == 0 {
		return nil
	}
	d := 0
	if dirty {
		d = 1
	}
	_, err := o.db.ExecContext(ctx, `INSERT INTO schema_migrations (version, dirty) VALUES (:1, :2)`, int64(version), d)
	return err
}

func (o *oracleMigrator) Up() error {
	ctx := context.Background()
	current, dirty, err := o.Version()
	if err != nil {
		return err
	}
	if dirty {
		return fmt.Errorf("database is dirty at version %d", current)
	}
	files, err := listMigrations("migrations/oracle", ".up.sql")
	if err != nil {
		return err
	}
	for _, f := range files {
		if f.version <= current {
			continue
		}
		if err := o.apply(ctx, f); err != nil {
			return err
		}
		if err := o.setVersion(ctx, f.version, false); err != nil {
			return err
		}
	}
	return nil
}

func (o *oracleMigrator) Down(steps int) error {
	ctx := context.Background()
	current, dirty, err := o.Version()
	if err != nil {
		return err
	}
	if dirty {
		return fmt.Errorf("database is dirty at version %d", current)
	}
	files, err := listMigrations("migrations/oracle", ".down.sql")
	if err != nil {
		return err
	}
	sort.Slice(files, func(i, j int) bool { return files[i].version > files[j].version })

	done := 0
	for i, f := range files {
		if f.version > current {
			continue
		}
		if steps > 0 && done == steps {
			break
		}
		if err := o.apply(ctx, f); err != nil {
			return err
		}
		var prev uint
		if i+1 < len(files) {
			prev = files[i+1].version
		}
		if err := o.setVersion(ctx, prev, false); err != nil {
			return err
		}
		done++
	}
	return nil
}

func (o *oracleMigrator) apply(ctx context.Context, f migrationFile) error {
	content, err := migrationsFS.ReadFile(f.name)
	if err != nil {
		return fmt.Errorf("could not read migration file %s: %w", f.name, err)
	}
	for _, stmt := range SplitStatements(string(content)) {
		if _, err := o.db.ExecContext(ctx, stmt); err != nil {
			_ = o.setVersion(ctx, f.version, true)
			return fmt.Errorf("could not execute migration %s: %w", f.name, err)
		}
	}
	if o.logger != nil {
		o.logger.Info("Executed migration", zap.String("file", f.name))
	}
	return nil
}

func (o *oracleMigrator) Close() error { return nil }

func listMigrations(dir, suffix string) ([]migrationFile, error) {
	entries, err := fs.ReadDir(migrationsFS, dir)
	if err != nil {
		return nil, fmt.Errorf("could not read migrations directory: %w", err)
	}
	var files []migrationFile
	for _, e := range entries {
		if !strings.HasSuffix(e.Name(), suffix) {
			continue
		}
		prefix, _, ok := strings.Cut(e.Name(), "_")
		if !ok {
			continue
		}
		v, err := strconv.ParseUint(prefix, 10, 64)
		if err != nil {
			continue
		}
		files = append(files, migrationFile{version: uint(v), name: dir + "/" + e.Name()})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].version < files[j].version })
	return files, nil
}

// SplitStatements splits a script on semicolons that end a line. Oracle
// rejects both multi-statement execs and trailing semicolons.
func SplitStatements(script string) []string {
	var out []string
	var cur strings.Builder
	for _, line := range strings.Split(script, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		if strings.HasSuffix(trimmed, ";") {
			cur.WriteString(strings.TrimSuffix(trimmed, ";"))
			if s := strings.TrimSpace(cur.String()); s != "" {
				out = append(out, s)
			}
			cur.Reset()
			continue
		}
		cur.WriteString(trimmed)
		cur.WriteString("\n")
	}
	if s := strings.TrimSpace(cur.String()); s != "" {
		out = append(out, s)
	}
	return out
}
