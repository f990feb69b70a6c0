package dbkeeper

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/drstein77/shopbot/internal/models"
	"github.com/golang-migrate/migrate"
	"github.com/golang-migrate/migrate/database/postgres"
	_ "github.com/golang-migrate/migrate/source/file"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrNoPool is returned when the keeper has no open connection pool.
var ErrNoPool = errors.New("database connection pool is nil")

type Log interface {
	Info(string, ...zap.Field)
	Error(string, ...zap.Field)
}

// DBKeeper serves the product catalog out of PostgreSQL.
type DBKeeper struct {
	pool *pgxpool.Pool
	log  Log
}

// NewDBKeeper connects to the database, applies pending migrations and
// returns nil when any step fails, so the caller can fall back to another
// catalog source.
func NewDBKeeper(ctx context.Context, dsn func() string, log Log) *DBKeeper {
	addr := dsn()
	if addr == "" {
		log.Info("database dsn is empty")
		return nil
	}

	config, err := pgxpool.ParseConfig(addr)
	if err != nil {
		log.Error("Unable to parse database DSN: ", zap.Error(err))
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		log.Error("Unable to connect to database: ", zap.Error(err))
		return nil
	}

	if err := migrateUp(config.ConnConfig); err != nil {
		log.Error("Error while performing migration: ", zap.Error(err))
		pool.Close()
		return nil
	}

	log.Info("Connected!")

	return &DBKeeper{
		pool: pool,
		log:  log,
	}
}

func migrateUp(connConfig *pgx.ConnConfig) error {
	sqlDB := stdlib.OpenDB(*connConfig)
	defer sqlDB.Close()

	driver, err := postgres.WithInstance(sqlDB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("get migration driver: %w", err)
	}

	dir, err := migrationsDir()
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+filepath.ToSlash(dir), "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// migrationsDir finds the migrations directory from the repository root or
// from a package directory two levels below it.
func migrationsDir() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get current directory: %w", err)
	}

	for _, dir := range []string{
		filepath.Join(cwd, "migrations"),
		filepath.Join(cwd, "..", "..", "migrations"),
	} {
		if _, err := os.Stat(dir); err == nil {
			return dir, nil
		}
	}
	return "", fmt.Errorf("migrations directory not found from %s", cwd)
}

// LoadProducts returns the catalog ordered by id.
func (kp *DBKeeper) LoadProducts(ctx context.Context) ([]models.Product, error) {
	if kp == nil || kp.pool == nil {
		return nil, ErrNoPool
	}

	query := `
		SELECT id, name, price::text
		FROM products
		ORDER BY id
	`

	rows, err := kp.pool.Query(ctx, query)
	if err != nil {
		kp.log.Error("Failed to execute query", zap.Error(err))
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var (
			product models.Product
			price   string
		)
		if err := rows.Scan(&product.ID, &product.Name, &price); err != nil {
			kp.log.Error("Failed to scan row", zap.Error(err))
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		if product.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("product %d: price %q: %w", product.ID, price, err)
		}
		products = append(products, product)
	}

	if rows.Err() != nil {
		kp.log.Error("Error occurred during rows iteration", zap.Error(rows.Err()))
		return nil, fmt.Errorf("error during rows iteration: %w", rows.Err())
	}

	kp.log.Info("Successfully retrieved all products", zap.Int("count", len(products)))
	return products, nil
}

func (kp *DBKeeper) Ping(ctx context.Context) bool {
	if kp == nil || kp.pool == nil {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := kp.pool.Ping(ctx); err != nil {
		kp.log.Error("Database ping failed", zap.Error(err))
		return false
	}

	return true
}

func (kp *DBKeeper) Close() bool {
	if kp != nil && kp.pool != nil {
		kp.pool.Close()
		kp.log.Info("Database connection pool closed")
		return true
	}
	return false
}
