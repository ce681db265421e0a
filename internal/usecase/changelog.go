package usecase

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/k1s0-platform/system-server-go-configsync/internal/domain/model"
	"github.com/k1s0-platform/system-server-go-configsync/internal/domain/repository"
	"github.com/k1s0-platform/system-server-go-configsync/internal/infra/retry"
)

// ChangeLog は変更履歴の追記とシーケンス採番を担う。
// シーケンスはインスタンス内で単調増加・欠番なし。採番は追記の成功時のみ
// 確定するため、コミットされなかった変更が番号を消費することはない。
type ChangeLog struct {
	repo     repository.ChangeLogRepository
	retryCfg *retry.Config

	mu      sync.Mutex
	nextSeq int64
}

// NewChangeLog は新しい ChangeLog を作成する。
func NewChangeLog(repo repository.ChangeLogRepository, retryCfg *retry.Config) *ChangeLog {
	if retryCfg == nil {
		retryCfg = retry.DefaultConfig()
	}
	return &ChangeLog{repo: repo, retryCfg: retryCfg}
}

// Seed は永続化済みの最大シーケンスから採番を再開する。起動時に 1 回呼ぶ。
func (l *ChangeLog) Seed(ctx context.Context) error {
	max, err := retry.Do(ctx, l.retryCfg, repository.IsTransient, func(ctx context.Context) (int64, error) {
		return l.repo.MaxSequence(ctx)
	})
	if err != nil {
		return err
	}
	l.mu.Lock()
	l.nextSeq = max + 1
	l.mu.Unlock()
	return nil
}

// Record はコミット済み変更からレコードを組み立て、コミット順に追記する。
// 採番と追記は同一クリティカルセクションで行い、並行する書き込み同士でも
// シーケンス順＝コミット順が保たれる。
func (l *ChangeLog) Record(ctx context.Context, req model.BulkUpdateRequest, changes []model.CommittedChange) ([]*model.ChangeRecord, error) {
	if len(changes) == 0 {
		return nil, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	records := make([]*model.ChangeRecord, 0, len(changes))
	seq := l.nextSeq
	for _, c := range changes {
		records = append(records, &model.ChangeRecord{
			ID:         uuid.New().String(),
			Sequence:   seq,
			Section:    c.Section,
			Key:        c.Key,
			OldValue:   c.OldValue,
			NewValue:   c.NewValue,
			OldVersion: c.OldVersion,
			NewVersion: c.NewVersion,
			ChangeType: c.ChangeType(),
			Source:     req.Source,
			ChangedBy:  req.UpdatedBy,
			ChangedAt:  c.UpdatedAt,
		})
		seq++
	}

	_, err := retry.Do(ctx, l.retryCfg, repository.IsTransient, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, l.repo.Append(ctx, records)
	})
	if err != nil {
		return nil, err
	}

	l.nextSeq = seq
	return records, nil
}

// Query は変更履歴をシーケンス降順でページ取得する。
func (l *ChangeLog) Query(ctx context.Context, params repository.ChangeLogQueryParams) ([]*model.ChangeRecord, int, error) {
	type page struct {
		records []*model.ChangeRecord
		total   int
	}
	p, err := retry.Do(ctx, l.retryCfg, repository.IsTransient, func(ctx context.Context) (page, error) {
		records, total, err := l.repo.Query(ctx, params)
		return page{records: records, total: total}, err
	})
	if err != nil {
		return nil, 0, err
	}
	return p.records, p.total, nil
}
