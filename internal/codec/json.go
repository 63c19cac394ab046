package codec

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/noah-isme/course-admin-store/internal/models"
)

// JSONCodec handles JSON snapshots.
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

// Encode writes the snapshot as compact JSON.
func (c *JSONCodec) Encode(snap *models.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(snap); err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses a JSON snapshot.
func (c *JSONCodec) Decode(data []byte) (*models.Snapshot, error) {
	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return &snap, nil
}
