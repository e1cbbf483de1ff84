package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/lawn-quote-service/internal/config"
)

const (
	driverName  = "pgx"
	pingTimeout = 5 * time.Second
)

// DB - пул соединений с базой квот и настроек цен аккаунтов
type DB struct {
	*sqlx.DB
	name   string
	logger *zap.Logger
}

// New открывает пул с настройками из cfg и ждёт первого ping не дольше pingTimeout.
// При неудачном ping пул закрывается.
func New(ctx context.Context, cfg *config.DatabaseConfig, logger *zap.Logger) (*DB, error) {
	db, err := sqlx.Open(driverName, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", cfg.DBName, err)
	}
	configurePool(db.DB, cfg)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database %s at %s:%d: %w", cfg.DBName, cfg.Host, cfg.Port, err)
	}

	logger.Info("PostgreSQL pool ready",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.DBName),
		zap.Int("max_conns", cfg.MaxConns),
		zap.Int("max_idle_conns", cfg.MaxIdleConns),
		zap.Duration("conn_max_lifetime", cfg.ConnMaxLifetime),
	)

	return &DB{DB: db, name: cfg.DBName, logger: logger}, nil
}

// configurePool - нулевые значения оставляют умолчания database/sql
func configurePool(db *sql.DB, cfg *config.DatabaseConfig) {
	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.MaxConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}
}

func (db *DB) Close() error {
	stats := db.Stats()
	db.logger.Info("Closing PostgreSQL pool",
		zap.Int("open", stats.OpenConnections),
		zap.Int("in_use", stats.InUse),
	)
	return db.DB.Close()
}

// Health - проверка для /health и старта сервиса
func (db *DB) Health(ctx context.Context) error {
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres %s: %w", db.name, err)
	}
	return nil
}

// StatsCollector - метрики пула (go_sql_*) с меткой db_name
func (db *DB) StatsCollector() prometheus.Collector {
	return collectors.NewDBStatsCollector(db.DB.DB, db.name)
}

// NewDBForTest оборачивает готовое соединение тестовой БД
func NewDBForTest(sqlxDB *sqlx.DB, logger *zap.Logger) *DB {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DB{
		DB:     sqlxDB,
		name:   "test",
		logger: logger,
	}
}
