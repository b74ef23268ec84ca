// Package docs embeds the documentation topics shown by `opc topic`.
package docs

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"
)

//go:embed *.md
var files embed.FS

// Index is the topic listing every other one.
const Index = "readme"

// Topic returns the markdown of the named topic.
func Topic(name string) (string, error) {
	content, err := files.ReadFile(strings.ToLower(name) + ".md")
	if err != nil {
		return "", fmt.Errorf("no topic %q, see `opc topic` for the list", name)
	}
	return string(content), nil
}

// Topics concatenates the named topics. "*" stands for all of them but the index.
func Topics(names ...string) (string, error) {
	var b strings.Builder
	for _, name := range names {
		expanded := []string{name}
		if name == "*" {
			var err error
			if expanded, err = Names(); err != nil {
				return "", err
			}
		}
		for _, n := range expanded {
			content, err := Topic(n)
			if err != nil {
				return "", err
			}
			b.WriteString(content)
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}

// Names returns the sorted topic names, the index excluded.
func Names() ([]string, error) {
	matches, err := fs.Glob(files, "*.md")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, m := range matches {
		if n := strings.TrimSuffix(path.Base(m), ".md"); n != Index {
			names = append(names, n)
		}
	}
	slices.Sort(names)
	return names, nil
}
