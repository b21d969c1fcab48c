package storage

import (
	"encoding/json"
	"fmt"
)

// storedRecord mirrors Result but keeps the variations raw, since records
// written before schema version 1 kept a single string there.
type storedRecord struct {
	Result
	GeneratedImages json.RawMessage `json:"generatedImageBase64"`
}

// DecodeResult reads a stored payload, migrating older shapes to the current schema.
func DecodeResult(payload []byte) (*Result, error) {
	var rec storedRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}

	result := rec.Result
	images, err := normalizeImages(rec.GeneratedImages)
	if err != nil {
		return nil, fmt.Errorf("decode result %s: %w", result.ID, err)
	}
	result.GeneratedImages = images

	if err := migrateResult(&result); err != nil {
		return nil, err
	}
	result.Normalize()
	return &result, nil
}

// EncodeResult stamps the current schema version and marshals the record.
func EncodeResult(result Result) ([]byte, error) {
	result.SchemaVersion = CurrentSchemaVersion
	result.Normalize()
	payload, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return payload, nil
}

var migrations = map[int]func(*Result) error{
	// Version 0 records predate the variations list and the version stamp.
	0: func(r *Result) error {
		r.SchemaVersion = 1
		return nil
	},
}

func migrateResult(r *Result) error {
	for r.SchemaVersion < CurrentSchemaVersion {
		step, ok := migrations[r.SchemaVersion]
		if !ok {
			return fmt.Errorf("no migration from schema version %d", r.SchemaVersion)
		}
		if err := step(r); err != nil {
			return fmt.Errorf("migrate from version %d: %w", r.SchemaVersion, err)
		}
	}
	return nil
}

// normalizeImages accepts either a single data URI or a list of them.
func normalizeImages(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return []string{}, nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}

	var single string
	if err := json.Unmarshal(raw, &single); err != nil {
		return nil, fmt.Errorf("generated images: %w", err)
	}
	if single == "" {
		return []string{}, nil
	}
	return []string{single}, nil
}
