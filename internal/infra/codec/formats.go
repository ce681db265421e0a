package codec

import (
	"bytes"
	"encoding/json"
	"fmt"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

type jsonCodec struct{}

func (jsonCodec) Format() string { return "json" }

func (jsonCodec) Parse(data []byte) (map[string]any, error) {
	var out map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}
	return out, nil
}

func (jsonCodec) Serialize(data map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "    ")
	if err := enc.Encode(data); err != nil {
		return nil, fmt.Errorf("failed to serialize json: %w", err)
	}
	return buf.Bytes(), nil
}

type yamlCodec struct{}

func (yamlCodec) Format() string { return "yaml" }

func (yamlCodec) Parse(data []byte) (map[string]any, error) {
	var out map[string]any
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("invalid yaml: %w", err)
	}
	return out, nil
}

func (yamlCodec) Serialize(data map[string]any) ([]byte, error) {
	out, err := yaml.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize yaml: %w", err)
	}
	return out, nil
}

type tomlCodec struct{}

func (tomlCodec) Format() string { return "toml" }

func (tomlCodec) Parse(data []byte) (map[string]any, error) {
	var out map[string]any
	if err := toml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("invalid toml: %w", err)
	}
	return out, nil
}

func (tomlCodec) Serialize(data map[string]any) ([]byte, error) {
	out, err := toml.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize toml: %w", err)
	}
	return out, nil
}
