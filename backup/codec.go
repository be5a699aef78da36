package backup

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Encode renders snap as two-space indented JSON followed by a newline.
// Identical snapshots encode to identical bytes.
func Encode(snap Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(snap); err != nil {
		return nil, fmt.Errorf("encode backup: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses raw file content. The version tag is checked before the rest
// of the document is decoded.
func Decode(data []byte) (Snapshot, error) {
	var probe struct {
		Version any `json:"version"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	version, ok := probe.Version.(float64)
	if !ok || version != float64(int(version)) || !Supported(int(version)) {
		return Snapshot{}, fmt.Errorf("%w: version %v", ErrUnsupportedVersion, probe.Version)
	}

	// The outer Version shadows Snapshot.Version, so integral literals such
	// as 2.0 decode here and are copied back once accepted.
	var doc struct {
		Snapshot
		Version any `json:"version"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	snap := doc.Snapshot
	snap.Version = int(version)
	return snap, nil
}
