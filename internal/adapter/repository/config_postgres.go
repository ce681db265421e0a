package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/k1s0-platform/system-server-go-configsync/internal/domain/model"
	"github.com/k1s0-platform/system-server-go-configsync/internal/domain/repository"
	"github.com/k1s0-platform/system-server-go-configsync/internal/infra/persistence"
)

// ConfigPostgresRepository は ConfigRepository の PostgreSQL 実装。
type ConfigPostgresRepository struct {
	db *persistence.DB
}

// NewConfigPostgresRepository は新しい ConfigPostgresRepository を作成する。
func NewConfigPostgresRepository(db *persistence.DB) *ConfigPostgresRepository {
	return &ConfigPostgresRepository{db: db}
}

// wrapStoreErr は DB エラーを一時障害かどうか分類して包む。
func wrapStoreErr(op string, err error) error {
	if persistence.IsTransient(err) {
		return &repository.TransientStoreError{Op: op, Err: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// GetByKey は section と key で設定エントリを取得する。
func (r *ConfigPostgresRepository) GetByKey(ctx context.Context, section, key string) (*model.ConfigEntry, error) {
	query := `SELECT section, key, value_json, version, updated_by, created_at, updated_at
	           FROM config_entries
	           WHERE section = $1 AND key = $2`

	var entry model.ConfigEntry
	err := r.db.Conn().GetContext(ctx, &entry, query, section, key)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: %s/%s", repository.ErrNotFound, section, key)
		}
		return nil, wrapStoreErr("failed to get config entry", err)
	}

	return &entry, nil
}

// ListBySection は section 内の全エントリをキー昇順で取得する。
func (r *ConfigPostgresRepository) ListBySection(ctx context.Context, section string) ([]*model.ConfigEntry, error) {
	query := `SELECT section, key, value_json, version, updated_by, created_at, updated_at
	           FROM config_entries
	           WHERE section = $1
	           ORDER BY key ASC`

	var entries []*model.ConfigEntry
	if err := r.db.Conn().SelectContext(ctx, &entries, query, section); err != nil {
		return nil, wrapStoreErr("failed to list config entries", err)
	}
	return entries, nil
}

// ListAll は全エントリを section, key 昇順で取得する。
func (r *ConfigPostgresRepository) ListAll(ctx context.Context) ([]*model.ConfigEntry, error) {
	query := `SELECT section, key, value_json, version, updated_by, created_at, updated_at
	           FROM config_entries
	           ORDER BY section ASC, key ASC`

	var entries []*model.ConfigEntry
	if err := r.db.Conn().SelectContext(ctx, &entries, query); err != nil {
		return nil, wrapStoreErr("failed to list all config entries", err)
	}
	return entries, nil
}

// Count は格納済みエントリ数を返す。
func (r *ConfigPostgresRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.Conn().GetContext(ctx, &count, "SELECT COUNT(*) FROM config_entries"); err != nil {
		return 0, wrapStoreErr("failed to count config entries", err)
	}
	return count, nil
}

// ApplyBulk は一括更新を単一トランザクションで適用する。
// 楽観的バージョン検証に失敗したキーが 1 つでもあれば全体をロールバックし、
// ConflictError に不一致キーをすべて列挙して返す。
func (r *ConfigPostgresRepository) ApplyBulk(ctx context.Context, req model.BulkUpdateRequest) ([]model.CommittedChange, error) {
	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return nil, wrapStoreErr("failed to begin bulk update", err)
	}
	defer func() { _ = tx.Rollback() }()

	commitTime := time.Now().UTC()
	changes := make([]model.CommittedChange, 0, len(req.Operations))
	var conflicts []string

	for _, op := range req.Operations {
		existing, err := lockEntry(ctx, tx, op.Section, op.Key)
		if err != nil {
			return nil, wrapStoreErr("failed to lock config entry", err)
		}

		currentVersion := 0
		if existing != nil {
			currentVersion = existing.Version
		}
		if op.ExpectedVersion != nil && *op.ExpectedVersion != currentVersion {
			conflicts = append(conflicts, op.Section+"/"+op.Key)
			continue
		}
		if len(conflicts) > 0 {
			// 競合を全件報告するため検証だけ続け、書き込みは行わない
			continue
		}

		if op.Delete {
			if existing == nil {
				return nil, fmt.Errorf("%w: %s/%s", repository.ErrNotFound, op.Section, op.Key)
			}
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM config_entries WHERE section = $1 AND key = $2`,
				op.Section, op.Key,
			); err != nil {
				return nil, wrapStoreErr("failed to delete config entry", err)
			}
			changes = append(changes, model.CommittedChange{
				Section:    op.Section,
				Key:        op.Key,
				OldValue:   existing.ValueJSON,
				OldVersion: existing.Version,
				UpdatedAt:  commitTime,
			})
			continue
		}

		newVersion := currentVersion + 1
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO config_entries (section, key, value_json, version, updated_by, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $6)
			 ON CONFLICT (section, key) DO UPDATE
			 SET value_json = EXCLUDED.value_json,
			     version    = config_entries.version + 1,
			     updated_by = EXCLUDED.updated_by,
			     updated_at = EXCLUDED.updated_at`,
			op.Section, op.Key, []byte(op.Value), newVersion, req.UpdatedBy, commitTime,
		); err != nil {
			return nil, wrapStoreErr("failed to upsert config entry", err)
		}

		change := model.CommittedChange{
			Section:    op.Section,
			Key:        op.Key,
			NewValue:   op.Value,
			NewVersion: newVersion,
			UpdatedAt:  commitTime,
		}
		if existing != nil {
			change.OldValue = existing.ValueJSON
			change.OldVersion = existing.Version
		}
		changes = append(changes, change)
	}

	if len(conflicts) > 0 {
		return nil, &repository.ConflictError{Keys: conflicts}
	}

	if err := tx.Commit(); err != nil {
		return nil, wrapStoreErr("failed to commit bulk update", err)
	}

	return changes, nil
}

// lockEntry は対象行を FOR UPDATE で取得する。存在しなければ nil を返す。
func lockEntry(ctx context.Context, tx *sqlx.Tx, section, key string) (*model.ConfigEntry, error) {
	query := `SELECT section, key, value_json, version, updated_by, created_at, updated_at
	           FROM config_entries
	           WHERE section = $1 AND key = $2
	           FOR UPDATE`

	var entry model.ConfigEntry
	err := tx.GetContext(ctx, &entry, query, section, key)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}
