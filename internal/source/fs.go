// Package source loads documents from a directory tree or a git
// repository.
package source

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/stagehand/internal/artifact"
	"git.home.luguber.info/inful/stagehand/internal/document"
)

// LoadDir walks a directory tree and produces one document per regular
// file. The document key is the slash-separated relative path and the
// format tag is the filename extension. Hidden directories and the
// artifact store directory are skipped.
func LoadDir(dir string, opts ...document.Option) ([]*document.Document, error) {
	var docs []*document.Document

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != dir && (strings.HasPrefix(name, ".") || name == "node_modules") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") {
			return nil
		}

		// #nosec G304 - path comes from walking the configured source dir
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}

		key := filepath.ToSlash(rel)
		docs = append(docs, document.New(key, filepath.Ext(name), artifact.FromText(string(content)), opts...))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk source directory: %w", err)
	}
	return docs, nil
}
