package model

import (
	"encoding/json"
	"time"
)

// ConfigEntry は設定エントリを表す。識別子は (Section, Key) の組。
// Version は同一識別子に対するコミット毎に必ず 1 ずつ増加する。
type ConfigEntry struct {
	Section   string          `json:"section" db:"section"`
	Key       string          `json:"key" db:"key"`
	ValueJSON json.RawMessage `json:"value" db:"value_json"`
	Version   int             `json:"version" db:"version"`
	UpdatedBy string          `json:"updated_by" db:"updated_by"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

// セクション全体が dict 以外の値を持つ場合に使う番兵キー。
// list は SectionListKey、スカラーは SectionScalarKey の下に格納する。
const (
	SectionListKey   = "__list__"
	SectionScalarKey = "__val__"
)
