package source

import (
	"fmt"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"git.home.luguber.info/inful/stagehand/internal/artifact"
	"git.home.luguber.info/inful/stagehand/internal/document"
)

// LoadGit produces one document per file in the HEAD tree of a local
// repository. The commit hash is folded into the document key, so the
// same path at a different commit is a different document (and so its
// stage fingerprints differ through the changed content).
func LoadGit(repoPath string, opts ...document.Option) ([]*document.Document, error) {
	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		return nil, fmt.Errorf("open repository %s: %w", repoPath, err)
	}

	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("resolve HEAD: %w", err)
	}
	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return nil, fmt.Errorf("load HEAD commit: %w", err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("load HEAD tree: %w", err)
	}

	short := head.Hash().String()[:8]
	var docs []*document.Document
	err = tree.Files().ForEach(func(f *object.File) error {
		content, err := f.Contents()
		if err != nil {
			return fmt.Errorf("read %s: %w", f.Name, err)
		}
		key := fmt.Sprintf("%s@%s", f.Name, short)
		docs = append(docs, document.New(key, filepath.Ext(f.Name), artifact.FromText(content), opts...))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterate HEAD tree: %w", err)
	}
	return docs, nil
}
