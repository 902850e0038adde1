// Package skills reads skill directories: folders bundling a SKILL.md
// descriptor with YAML frontmatter and optional helper files. It is used for
// inspection only; migration treats skill directories as opaque.
package skills

import (
	"bytes"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"
)

// DescriptorFileName is the conventional descriptor file of a skill directory
const DescriptorFileName = "SKILL.md"

// Descriptor is the parsed frontmatter of a descriptor file
type Descriptor struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadDescriptor parses the descriptor file at path. Both name and
// description are required in the frontmatter.
func LoadDescriptor(path string) (*Descriptor, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read descriptor")
	}
	return ParseDescriptor(content)
}

// ParseDescriptor parses descriptor content
func ParseDescriptor(content []byte) (*Descriptor, error) {
	md := goldmark.New(goldmark.WithExtensions(meta.Meta))
	pctx := parser.NewContext()

	var buf bytes.Buffer
	if err := md.Convert(content, &buf, parser.WithContext(pctx)); err != nil {
		return nil, errors.Wrap(err, "failed to parse markdown")
	}

	metaData, err := meta.TryGet(pctx)
	if err != nil {
		return nil, errors.Wrap(err, "invalid frontmatter")
	}
	if len(metaData) == 0 {
		return nil, errors.New("missing frontmatter")
	}

	name, _ := metaData["name"].(string)
	description, _ := metaData["description"].(string)
	if name == "" {
		return nil, errors.New("name is required in frontmatter")
	}
	if description == "" {
		return nil, errors.New("description is required in frontmatter")
	}

	return &Descriptor{
		Name:        name,
		Description: strings.TrimSpace(description),
	}, nil
}
