package policy

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML policy file on top of the defaults.
// Fields missing from the file keep their default value.
// KnownFields(true): 오타/미사용 필드는 즉시 실패
func Load(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy file: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML policy bytes on top of the defaults and validates them
func Parse(data []byte) (*Policy, error) {
	p := Default()

	if len(bytes.TrimSpace(data)) > 0 {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(p); err != nil {
			return nil, fmt.Errorf("decode policy: %w", err)
		}
	}

	if err := Validate(p); err != nil {
		return nil, err
	}

	return p, nil
}

// LoadOrDefault loads path, or returns the defaults when path is empty
func LoadOrDefault(path string) (*Policy, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// Resolve loads path (or the defaults), applies the configured suffixes
// and validates the result. Suffixes from config win over the file.
func Resolve(path string, suffixes []string) (*Policy, error) {
	p, err := LoadOrDefault(path)
	if err != nil {
		return nil, err
	}
	p = p.WithSuffixes(suffixes)
	if err := Validate(p); err != nil {
		return nil, fmt.Errorf("invalid policy: %w", err)
	}
	return p, nil
}

// Hash generates a SHA256 hash of the policy (canonical JSON).
// Struct fields keep the JSON order stable, so equal policies hash equal.
func Hash(p *Policy) (string, error) {
	jsonBytes, err := json.Marshal(p)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}

// MustHash is Hash for policies that were already validated
func MustHash(p *Policy) string {
	h, err := Hash(p)
	if err != nil {
		return ""
	}
	return h
}
