package service

import (
	"bitwise74/drive-api/internal/model"
	"bitwise74/drive-api/internal/repository"
	"context"
	"errors"
	"fmt"
)

// maxTreeDepth bounds every walk over parent pointers
const maxTreeDepth = 256

// Crumb is one step of a breadcrumb trail
type Crumb struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// ancestry returns the chain from the top most ancestor (or from stopAt, if
// it is found on the way) down to f, f included. found reports whether
// stopAt was reached. A stopAt of 0 walks up to the root.
func ancestry(ctx context.Context, files repository.Files, f *model.File, stopAt uint) (chain []model.File, found bool, err error) {
	chain = []model.File{*f}
	if stopAt != 0 && f.ID == stopAt {
		return chain, true, nil
	}

	cur := f
	for range maxTreeDepth {
		if cur.ParentID == nil {
			return reverse(chain), false, nil
		}

		parent, err := files.ByID(ctx, *cur.ParentID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return reverse(chain), false, nil
			}
			return nil, false, fmt.Errorf("failed to load parent folder, %w", err)
		}

		if parent.UserID != f.UserID {
			return reverse(chain), false, nil
		}

		chain = append(chain, *parent)
		if stopAt != 0 && parent.ID == stopAt {
			return reverse(chain), true, nil
		}

		cur = parent
	}

	return nil, false, fmt.Errorf("folder tree deeper than %d levels at file %d", maxTreeDepth, f.ID)
}

func reverse(files []model.File) []model.File {
	for i, j := 0, len(files)-1; i < j; i, j = i+1, j-1 {
		files[i], files[j] = files[j], files[i]
	}

	return files
}

func crumbs(chain []model.File) []Crumb {
	out := make([]Crumb, len(chain))
	for i, f := range chain {
		out[i] = Crumb{ID: f.ID, Name: f.Name}
	}

	return out
}

// subtree collects root and all of its descendants, breadth first
func subtree(ctx context.Context, files repository.Files, root *model.File) ([]model.File, error) {
	out := []model.File{*root}
	seen := map[uint]bool{root.ID: true}

	for i := 0; i < len(out); i++ {
		if !out[i].IsFolder {
			continue
		}

		id := out[i].ID
		children, err := files.Children(ctx, root.UserID, &id)
		if err != nil {
			return nil, fmt.Errorf("failed to list folder %d, %w", id, err)
		}

		for _, c := range children {
			if seen[c.ID] {
				continue
			}
			seen[c.ID] = true
			out = append(out, c)
		}
	}

	return out, nil
}
