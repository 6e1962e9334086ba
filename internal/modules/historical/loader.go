package historical

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aristath/hindsight/pkg/embedded"
	"github.com/vmihailenco/msgpack/v5"
)

// Format is an on-disk dataset encoding
type Format string

const (
	FormatJSON    Format = "json"
	FormatMsgpack Format = "msgpack"
)

// FormatFromPath picks the encoding from the file extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".msgpack", ".mpk":
		return FormatMsgpack, nil
	}
	return "", fmt.Errorf("unsupported dataset extension %q", filepath.Ext(path))
}

// Decode parses a dataset in the given encoding
func Decode(data []byte, format Format) (*Dataset, error) {
	var raw map[string]map[string]float64

	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to decode JSON dataset: %w", err)
		}
	case FormatMsgpack:
		if err := msgpack.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to decode msgpack dataset: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported dataset format %q", format)
	}

	return New(raw)
}

// Encode serializes a dataset in the given encoding
func Encode(d *Dataset, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.Marshal(d.Raw())
	case FormatMsgpack:
		return msgpack.Marshal(d.Raw())
	}
	return nil, fmt.Errorf("unsupported dataset format %q", format)
}

// LoadFile reads a .json or .msgpack dataset
func LoadFile(path string) (*Dataset, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}

	return Decode(data, format)
}

// LoadEmbedded parses the dataset bundled with the binary
func LoadEmbedded() (*Dataset, error) {
	return Decode(embedded.HistoricalData, FormatJSON)
}

// Load reads path when set and falls back to the embedded dataset otherwise
func Load(path string) (*Dataset, error) {
	if path == "" {
		return LoadEmbedded()
	}
	return LoadFile(path)
}
