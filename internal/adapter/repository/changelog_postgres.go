package repository

import (
	"context"
	"fmt"

	"github.com/k1s0-platform/system-server-go-configsync/internal/domain/model"
	"github.com/k1s0-platform/system-server-go-configsync/internal/domain/repository"
	"github.com/k1s0-platform/system-server-go-configsync/internal/infra/persistence"
)

// ChangeLogPostgresRepository は ChangeLogRepository の PostgreSQL 実装。
type ChangeLogPostgresRepository struct {
	db *persistence.DB
}

// NewChangeLogPostgresRepository は新しい ChangeLogPostgresRepository を作成する。
func NewChangeLogPostgresRepository(db *persistence.DB) *ChangeLogPostgresRepository {
	return &ChangeLogPostgresRepository{db: db}
}

// Append は変更レコードをコミット順で追記する。全件を 1 トランザクションで
// 書き込み、返った時点で永続化されている。
func (r *ChangeLogPostgresRepository) Append(ctx context.Context, records []*model.ChangeRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return wrapStoreErr("failed to begin change log append", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `INSERT INTO config_change_records
	           (id, sequence, section, key, old_value, new_value, old_version, new_version, change_type, source, changed_by, changed_at)
	           VALUES (:id, :sequence, :section, :key, :old_value, :new_value, :old_version, :new_version, :change_type, :source, :changed_by, :changed_at)`

	for _, record := range records {
		if _, err := tx.NamedExecContext(ctx, query, record); err != nil {
			return wrapStoreErr("failed to append change record", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return wrapStoreErr("failed to commit change log append", err)
	}
	return nil
}

// MaxSequence は記録済みの最大シーケンス値を返す。
func (r *ChangeLogPostgresRepository) MaxSequence(ctx context.Context) (int64, error) {
	var max int64
	query := "SELECT COALESCE(MAX(sequence), 0) FROM config_change_records"
	if err := r.db.Conn().GetContext(ctx, &max, query); err != nil {
		return 0, wrapStoreErr("failed to get max sequence", err)
	}
	return max, nil
}

// Query は変更履歴をシーケンス降順でページ取得する。ページングの基準は
// 壁時計ではなくシーケンスなので、取得済みページは後続の追記で揺れない。
func (r *ChangeLogPostgresRepository) Query(ctx context.Context, params repository.ChangeLogQueryParams) ([]*model.ChangeRecord, int, error) {
	var conditions []string
	var args []interface{}
	bindIdx := 1

	if params.Section != "" {
		conditions = append(conditions, fmt.Sprintf("section = $%d", bindIdx))
		args = append(args, params.Section)
		bindIdx++
	}
	if params.Key != "" {
		conditions = append(conditions, fmt.Sprintf("key = $%d", bindIdx))
		args = append(args, params.Key)
		bindIdx++
	}

	whereClause := ""
	for i, c := range conditions {
		if i == 0 {
			whereClause = " WHERE " + c
		} else {
			whereClause += " AND " + c
		}
	}

	// count クエリ
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM config_change_records%s", whereClause)
	var totalCount int
	if err := r.db.Conn().GetContext(ctx, &totalCount, countQuery, args...); err != nil {
		return nil, 0, wrapStoreErr("failed to count change records", err)
	}

	limit := params.Limit
	if limit < 1 {
		limit = 10
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}

	// data クエリ
	dataQuery := fmt.Sprintf(
		`SELECT id, sequence, section, key, old_value, new_value, old_version, new_version, change_type, source, changed_by, changed_at
		  FROM config_change_records%s ORDER BY sequence DESC LIMIT $%d OFFSET $%d`,
		whereClause, bindIdx, bindIdx+1,
	)
	dataArgs := append(args, limit, offset)

	var records []*model.ChangeRecord
	if err := r.db.Conn().SelectContext(ctx, &records, dataQuery, dataArgs...); err != nil {
		return nil, 0, wrapStoreErr("failed to query change records", err)
	}

	return records, totalCount, nil
}
