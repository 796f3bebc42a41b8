package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default_cards.yaml
var defaultCards []byte

type catalogFile struct {
	Cards []Card `yaml:"cards"`
}

// LoadFile reads a YAML catalog of the form:
//
//	cards:
//	  - id: 1
//	    name: Opener
//	    batting: 80
//	    bowling: 20
//	    runs: 6
func LoadFile(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return s, nil
}

// Parse decodes a YAML catalog document.
func Parse(data []byte) (*Static, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog YAML: %w", err)
	}
	if len(f.Cards) == 0 {
		return nil, fmt.Errorf("catalog has no cards")
	}
	return NewStatic(f.Cards)
}

// Default returns the built-in catalog shipped with the binary.
func Default() *Static {
	s, err := Parse(defaultCards)
	if err != nil {
		panic("built-in catalog is invalid: " + err.Error())
	}
	return s
}
