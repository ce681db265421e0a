package codec

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Codec は設定値マッピングとファイル形式の相互変換を行う。副作用を持たない。
type Codec interface {
	// Format は形式タグ（"json" / "yaml" / "toml"）を返す。
	Format() string
	// Parse はバイト列を section -> 値 のマッピングに復元する。
	Parse(data []byte) (map[string]any, error)
	// Serialize はマッピングをこの形式のバイト列に変換する。
	Serialize(data map[string]any) ([]byte, error)
}

// ForFormat は形式タグに対応する Codec を返す。
func ForFormat(format string) (Codec, error) {
	switch strings.ToLower(format) {
	case "json":
		return jsonCodec{}, nil
	case "yaml", "yml":
		return yamlCodec{}, nil
	case "toml":
		return tomlCodec{}, nil
	}
	return nil, fmt.Errorf("unsupported config format: %s", format)
}

// ForPath はファイル拡張子から Codec を選択する。
func ForPath(path string) (Codec, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" {
		return nil, fmt.Errorf("cannot detect config format: %s", path)
	}
	return ForFormat(ext)
}

// LoadFile はファイルを読み込み、拡張子に応じた Codec でパースする。
func LoadFile(path string) (map[string]any, error) {
	c, err := ForPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	parsed, err := c.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return parsed, nil
}
