// Package skillfile parses SKILL.md documents: a YAML front-matter block
// declaring name and description, followed by a markdown body.
package skillfile

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"

	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"
)

// FileName is the fixed filename convention for skill documents.
const FileName = "SKILL.md"

var (
	ErrMissingFrontMatter = errors.New("missing front matter")
	ErrMissingName        = errors.New("skill name is required in front matter")
	ErrMissingDescription = errors.New("skill description is required in front matter")
)

// Document is a parsed skill document. Content is the full raw text
// including front matter; Metadata holds every front-matter key other than
// name and description.
type Document struct {
	Name        string
	Description string
	Content     string
	Metadata    map[string]any
}

// Parse extracts front matter from raw document content. Documents without
// the required name and description fields are rejected.
func Parse(content []byte) (*Document, error) {
	md := goldmark.New(goldmark.WithExtensions(meta.Meta))

	var buf bytes.Buffer
	pctx := parser.NewContext()
	if err := md.Convert(content, &buf, parser.WithContext(pctx)); err != nil {
		return nil, err
	}

	metaData := meta.Get(pctx)
	if metaData == nil {
		return nil, ErrMissingFrontMatter
	}

	name, _ := metaData["name"].(string)
	description, _ := metaData["description"].(string)
	if name == "" {
		return nil, ErrMissingName
	}
	if description == "" {
		return nil, ErrMissingDescription
	}

	extra := make(map[string]any)
	for key, value := range metaData {
		if key != "name" && key != "description" {
			extra[key] = value
		}
	}
	if len(extra) == 0 {
		extra = nil
	}

	return &Document{
		Name:        name,
		Description: description,
		Content:     string(content),
		Metadata:    extra,
	}, nil
}

// Load reads and parses the SKILL.md inside dir.
func Load(dir string) (*Document, error) {
	content, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		return nil, err
	}
	return Parse(content)
}

// NestedString looks up a string value under the optional nested "metadata"
// mapping, used by providers for host-specific install-name overrides.
// The YAML decoder yields nested maps with interface{} keys, so both map
// shapes are handled.
func (d *Document) NestedString(key string) string {
	switch nested := d.Metadata["metadata"].(type) {
	case map[string]any:
		value, _ := nested[key].(string)
		return value
	case map[any]any:
		value, _ := nested[key].(string)
		return value
	}
	return ""
}
