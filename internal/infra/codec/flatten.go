package codec

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/k1s0-platform/system-server-go-configsync/internal/domain/model"
)

// FlatEntry は (section, key) 単位に平坦化された設定値。
type FlatEntry struct {
	Section string
	Key     string
	Value   json.RawMessage
}

// Flatten は section -> 値 のマッピングを (section, key) 単位に平坦化する。
// dict はキー毎に、list は SectionListKey の下に、スカラーは SectionScalarKey
// の下に格納する。結果は section, key 昇順で返す。
func Flatten(sections map[string]any) ([]FlatEntry, error) {
	var entries []FlatEntry

	for section, values := range sections {
		switch v := values.(type) {
		case map[string]any:
			for key, value := range v {
				raw, err := json.Marshal(value)
				if err != nil {
					return nil, fmt.Errorf("failed to encode value %s/%s: %w", section, key, err)
				}
				entries = append(entries, FlatEntry{Section: section, Key: key, Value: raw})
			}
		case []any:
			raw, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("failed to encode list section %s: %w", section, err)
			}
			entries = append(entries, FlatEntry{Section: section, Key: model.SectionListKey, Value: raw})
		case string, bool, int, int64, float64, json.Number:
			raw, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("failed to encode scalar section %s: %w", section, err)
			}
			entries = append(entries, FlatEntry{Section: section, Key: model.SectionScalarKey, Value: raw})
		default:
			return nil, fmt.Errorf("section %s must be a mapping, list or scalar", section)
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Section != entries[j].Section {
			return entries[i].Section < entries[j].Section
		}
		return entries[i].Key < entries[j].Key
	})

	return entries, nil
}

// Nest は格納済みエントリを section -> 値 のマッピングに復元する。
// 番兵キー（SectionListKey / SectionScalarKey）は元の list / スカラーに戻す。
func Nest(entries []*model.ConfigEntry) (map[string]any, error) {
	bySection := make(map[string]map[string]any)
	for _, e := range entries {
		var value any
		if err := json.Unmarshal(e.ValueJSON, &value); err != nil {
			return nil, fmt.Errorf("failed to decode value %s/%s: %w", e.Section, e.Key, err)
		}
		if bySection[e.Section] == nil {
			bySection[e.Section] = make(map[string]any)
		}
		bySection[e.Section][e.Key] = value
	}

	out := make(map[string]any, len(bySection))
	for section, values := range bySection {
		out[section] = CollapseSection(values)
	}
	return out, nil
}

// CollapseSection は番兵キーのみのセクションを元の形に戻す。
func CollapseSection(values map[string]any) any {
	if len(values) == 1 {
		if v, ok := values[model.SectionListKey]; ok {
			return v
		}
		if v, ok := values[model.SectionScalarKey]; ok {
			return v
		}
	}
	return values
}
