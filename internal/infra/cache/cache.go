package cache

import (
	"context"
	"encoding/json"
)

// Entry はキャッシュされた設定値。ストアで観測したバージョンを保持し、
// 読み手が古いエントリを検出して破棄できるようにする（単調読み取りの安全網）。
type Entry struct {
	Section string          `json:"section"`
	Key     string          `json:"key"`
	Value   json.RawMessage `json:"value"`
	Version int             `json:"version"`
}

// ConfigCache はキャッシュレイヤーのインターフェース。
// Broadcast は Notifier が購読者向けメッセージの配信に使う。
type ConfigCache interface {
	// Get はキャッシュエントリを取得する。ミス時は (nil, nil) を返す。
	Get(ctx context.Context, section, key string) (*Entry, error)
	// Put はエントリを格納する。既により新しいバージョンが格納されている
	// 場合は上書きしない。
	Put(ctx context.Context, entry Entry) error
	// Invalidate は単一エントリを無効化する。
	Invalidate(ctx context.Context, section, key string) error
	// InvalidateSection はセクション内の全エントリを無効化する。
	InvalidateSection(ctx context.Context, section string) error
	// Broadcast はブロードキャストチャネルへメッセージを配信する。
	Broadcast(ctx context.Context, payload []byte) error
	// Subscribe はブロードキャストチャネルを購読する。返される関数で購読を終了する。
	Subscribe(ctx context.Context) (<-chan []byte, func())
	// Healthy はキャッシュへの接続を確認する。
	Healthy(ctx context.Context) error
	// Close は接続を閉じる。
	Close() error
}
