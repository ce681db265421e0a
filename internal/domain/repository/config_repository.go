package repository

import (
	"context"

	"github.com/k1s0-platform/system-server-go-configsync/internal/domain/model"
)

// ConfigRepository は設定エントリの永続化インターフェース。
// ApplyBulk が唯一の書き込み経路で、必ず単一トランザクションとして実行される。
type ConfigRepository interface {
	// GetByKey は section と key で設定エントリを取得する。
	// 存在しない場合は ErrNotFound を返す。
	GetByKey(ctx context.Context, section, key string) (*model.ConfigEntry, error)

	// ListBySection は section 内の全エントリをキー昇順で取得する。
	ListBySection(ctx context.Context, section string) ([]*model.ConfigEntry, error)

	// ListAll は全エントリを section, key 昇順で取得する。
	ListAll(ctx context.Context) ([]*model.ConfigEntry, error)

	// Count は格納済みエントリ数を返す。ブートストラップ要否の判定に使う。
	Count(ctx context.Context) (int, error)

	// ApplyBulk は一括更新を単一トランザクションで適用する。
	// ExpectedVersion の不一致が 1 件でもあれば ConflictError を返し、
	// 部分適用は発生しない。成功時は各エントリのバージョンを 1 増やし、
	// updated_at をコミット時刻に揃えて、変更内容を返す。
	ApplyBulk(ctx context.Context, req model.BulkUpdateRequest) ([]model.CommittedChange, error)
}

// ChangeLogRepository は変更履歴の永続化インターフェース。履歴は追記専用。
type ChangeLogRepository interface {
	// Append は変更レコードをコミット順で追記する。呼び出しが返った時点で永続化済み。
	Append(ctx context.Context, records []*model.ChangeRecord) error

	// MaxSequence は記録済みの最大シーケンス値を返す。レコードが無ければ 0。
	MaxSequence(ctx context.Context) (int64, error)

	// Query は変更履歴をシーケンス降順でページ取得し、フィルタ一致の総件数を返す。
	Query(ctx context.Context, params ChangeLogQueryParams) ([]*model.ChangeRecord, int, error)
}

// ChangeLogQueryParams は変更履歴取得のパラメータ。Section / Key は空なら無条件。
type ChangeLogQueryParams struct {
	Section string
	Key     string
	Limit   int
	Offset  int
}
