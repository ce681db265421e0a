package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/k1s0-platform/system-server-go-configsync/internal/infra/config"
)

// DB は PostgreSQL 接続プールのラッパー。
type DB struct {
	conn        *sqlx.DB
	lockTimeout time.Duration
}

// NewDB はデータベースに接続し、プール設定を適用する。
func NewDB(cfg config.DatabaseConfig) (*DB, error) {
	conn, err := sqlx.Connect("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 10
	}
	maxIdle := cfg.MaxIdleConns
	if maxIdle <= 0 {
		maxIdle = 5
	}
	conn.SetMaxOpenConns(maxOpen)
	conn.SetMaxIdleConns(maxIdle)
	conn.SetConnMaxLifetime(30 * time.Minute)

	return &DB{conn: conn, lockTimeout: cfg.LockTimeout}, nil
}

// Conn は内部の sqlx.DB を返す。
func (d *DB) Conn() *sqlx.DB {
	return d.conn
}

// BeginTx はトランザクションを開始し、ロックタイムアウトを設定する。
func (d *DB) BeginTx(ctx context.Context) (*sqlx.Tx, error) {
	tx, err := d.conn.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	if d.lockTimeout > 0 {
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = %d", d.lockTimeout.Milliseconds())
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			_ = tx.Rollback()
			return nil, fmt.Errorf("failed to set lock timeout: %w", err)
		}
	}
	return tx, nil
}

// Healthy はデータベースへの接続を確認する。
func (d *DB) Healthy(ctx context.Context) error {
	return d.conn.PingContext(ctx)
}

// Close は接続プールを閉じる。
func (d *DB) Close() error {
	return d.conn.Close()
}
