// Package seed loads the initial report collection from YAML fixtures.
package seed

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/couchcryptid/drone-emergency-dashboard/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var defaultFixture []byte

// File is the on-disk layout of a seed fixture.
type File struct {
	Reports []domain.RawReport `yaml:"reports"`
}

// Default returns the embedded demo collection.
func Default() ([]domain.EmergencyReport, error) {
	return Parse(defaultFixture)
}

// Load reads the fixture at path, or the embedded one when path is empty.
func Load(path string) ([]domain.EmergencyReport, error) {
	if path == "" {
		return Default()
	}
	b, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	reports, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("seed file %s: %w", path, err)
	}
	return reports, nil
}

// Parse decodes a YAML fixture and validates every record.
func Parse(data []byte) ([]domain.EmergencyReport, error) {
	raws, err := Decode(data)
	if err != nil {
		return nil, err
	}

	reports := make([]domain.EmergencyReport, 0, len(raws))
	for i, raw := range raws {
		r, err := domain.ParseReport(raw)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		reports = append(reports, r)
	}
	return reports, nil
}

// Decode returns the unvalidated records of a YAML fixture.
func Decode(data []byte) ([]domain.RawReport, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	return f.Reports, nil
}

// ReadFile returns the raw fixture bytes at path, or the embedded fixture
// when path is empty.
func ReadFile(path string) ([]byte, error) {
	if path == "" {
		return defaultFixture, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return b, nil
}

// Marshal encodes raw reports in the fixture layout.
func Marshal(reports []domain.RawReport) ([]byte, error) {
	out, err := yaml.Marshal(File{Reports: reports})
	if err != nil {
		return nil, fmt.Errorf("encode seed: %w", err)
	}
	return out, nil
}
