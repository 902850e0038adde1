package skills

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
)

// Entry is one top-level directory of a skills root
type Entry struct {
	Dir        string      `json:"dir"`
	Path       string      `json:"path"`
	Descriptor *Descriptor `json:"descriptor,omitempty"`
	Err        error       `json:"-"`
}

// Scan lists the directories directly under root, sorted by name, with their
// parsed descriptors. A missing or broken descriptor is recorded on the entry.
func Scan(root, descriptorName string) ([]Entry, error) {
	if descriptorName == "" {
		descriptorName = DescriptorFileName
	}

	dirEntries, err := os.ReadDir(root)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read skills directory %s", root)
	}

	var entries []Entry
	for _, de := range dirEntries {
		path := filepath.Join(root, de.Name())
		if info, err := os.Stat(path); err != nil || !info.IsDir() {
			continue
		}

		entry := Entry{Dir: de.Name(), Path: path}
		entry.Descriptor, entry.Err = LoadDescriptor(filepath.Join(path, descriptorName))
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Dir < entries[j].Dir })
	return entries, nil
}
