package usecase

import (
	"context"

	"github.com/k1s0-platform/system-server-go-configsync/internal/domain/model"
	"github.com/k1s0-platform/system-server-go-configsync/internal/domain/repository"
	"github.com/k1s0-platform/system-server-go-configsync/internal/infra/codec"
	"github.com/k1s0-platform/system-server-go-configsync/internal/infra/retry"
)

// ExportAll は全設定を指定形式（json / yaml / toml）で書き出す。
// 番兵キーで格納された list / スカラーのセクションは元の形で出力される。
func (e *SyncEngine) ExportAll(ctx context.Context, format string) ([]byte, error) {
	if err := e.ensureReady(); err != nil {
		return nil, err
	}

	c, err := codec.ForFormat(format)
	if err != nil {
		return nil, validationErr("%v", err)
	}

	entries, err := retry.Do(ctx, e.retryCfg, repository.IsTransient, func(ctx context.Context) ([]*model.ConfigEntry, error) {
		return e.store.ListAll(ctx)
	})
	if err != nil {
		return nil, err
	}

	nested, err := codec.Nest(entries)
	if err != nil {
		return nil, err
	}
	return c.Serialize(nested)
}
