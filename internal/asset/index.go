package asset

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// MaxNameLength is the longest key accepted by the storage.
const MaxNameLength = 28

type Descriptor struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Index is the name to dimensions mapping produced when assets are flashed.
type Index map[string]Descriptor

func LoadIndex(data []byte) (Index, error) {
	index := Index{}
	if err := yaml.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("asset: unable to interpret index: %w", err)
	}
	for name := range index {
		if err := CheckName(name); err != nil {
			return nil, err
		}
	}
	return index, nil
}

func (idx Index) Marshal() ([]byte, error) {
	return yaml.Marshal(idx)
}

func (idx Index) Add(name string, desc Descriptor) error {
	if err := CheckName(name); err != nil {
		return err
	}
	idx[name] = desc
	return nil
}

// Merge returns a copy of idx overlaid with other.
func (idx Index) Merge(other Index) Index {
	merged := make(Index, len(idx)+len(other))
	for name, desc := range idx {
		merged[name] = desc
	}
	for name, desc := range other {
		merged[name] = desc
	}
	return merged
}

// CheckName rejects names the storages cannot hold as a single key. Names are
// file names for DirStorage so path separators and dot names are refused.
func CheckName(name string) error {
	if name == "" || len(name) > MaxNameLength ||
		name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrBadName, name)
	}
	return nil
}
