package codec

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/noah-isme/course-admin-store/internal/models"
)

// ErrUnknownFormat is returned for unsupported codec names.
var ErrUnknownFormat = errors.New("unknown snapshot format")

// Codec converts full store snapshots to and from bytes.
type Codec interface {
	Encode(snap *models.Snapshot) ([]byte, error)
	Decode(data []byte) (*models.Snapshot, error)
	Format() string
}

// ForName returns the codec registered under name ("json" or "yaml").
func ForName(name string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "json":
		return NewJSONCodec(), nil
	case "yaml", "yml":
		return NewYAMLCodec(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// Detect picks the codec able to read data. JSON documents always open with
// an object; anything else is treated as YAML.
func Detect(data []byte) Codec {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		return NewJSONCodec()
	}
	return NewYAMLCodec()
}
