package codec

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/noah-isme/course-admin-store/internal/models"
)

// YAMLCodec handles YAML snapshots, mostly for human-inspectable stores.
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// Encode writes the snapshot as YAML.
func (c *YAMLCodec) Encode(snap *models.Snapshot) ([]byte, error) {
	data, err := yaml.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to encode YAML: %w", err)
	}
	return data, nil
}

// Decode parses a YAML snapshot.
func (c *YAMLCodec) Decode(data []byte) (*models.Snapshot, error) {
	var snap models.Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &snap, nil
}
