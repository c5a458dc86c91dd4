package dqsi

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load builds the scoring configuration from defaults merged with the YAML
// file at path. An empty path returns the validated defaults. Decoding is
// strict: unknown fields fail immediately so a typo never silently scores
// with default tables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read dqsi config: %w", err)
		}

		// Decoding into the pre-populated default value merges overrides:
		// fields present in YAML replace defaults, absent fields keep them.
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("decode dqsi config: %w", err)
		}
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validate dqsi config: %w", err)
	}

	return cfg, nil
}

// Hash returns the SHA256 of the canonical JSON form of the configuration.
// The hash is embedded in every result and persisted assessment so a score
// can always be traced back to the exact tables that produced it.
func Hash(cfg *Config) (string, error) {
	jsonBytes, err := json.Marshal(cfg)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}
