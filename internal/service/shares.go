package service

import (
	"bitwise74/drive-api/internal/model"
	"bitwise74/drive-api/internal/repository"
	"bitwise74/drive-api/internal/storage"
	"bitwise74/drive-api/pkg/security"
	"context"
	"errors"
	"fmt"
	"time"
)

// Shares turns files and folders into public links and serves them to
// anonymous visitors
type Shares struct {
	store     *repository.Store
	blobs     storage.Storage
	argon     *security.ArgonHash
	publicURL string
}

func NewShares(store *repository.Store, blobs storage.Storage, argon *security.ArgonHash, publicURL string) *Shares {
	return &Shares{store: store, blobs: blobs, argon: argon, publicURL: publicURL}
}

type ShareInput struct {
	ShareType           model.ShareType
	IsPasswordProtected bool
	Password            string
}

type ShareResult struct {
	File  model.File `json:"file"`
	Token string     `json:"token"`
	URL   string     `json:"url"`
}

// PublicInfo is everything an anonymous visitor may learn about a share
type PublicInfo struct {
	Name                string          `json:"name"`
	MimeType            string          `json:"mimeType"`
	Size                int64           `json:"size"`
	IsPasswordProtected bool            `json:"isPasswordProtected"`
	ShareType           model.ShareType `json:"shareType"`
	IsFolder            bool            `json:"isFolder"`
	CreatedAt           time.Time       `json:"createdAt"`
}

// PublicEntry is a row of a browsed folder
type PublicEntry struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	MimeType  string    `json:"mimeType"`
	Size      int64     `json:"size"`
	IsFolder  bool      `json:"isFolder"`
	CreatedAt time.Time `json:"createdAt"`
}

type BrowseResult struct {
	Folder      PublicEntry   `json:"folder"`
	Children    []PublicEntry `json:"children"`
	Breadcrumbs []Crumb       `json:"breadcrumbs"`
}

func publicEntry(f *model.File) PublicEntry {
	return PublicEntry{
		ID:        f.ID,
		Name:      f.Name,
		MimeType:  f.MimeType,
		Size:      f.Size,
		IsFolder:  f.IsFolder,
		CreatedAt: f.CreatedAt,
	}
}

func (s *Shares) owned(ctx context.Context, userID string, id uint) (*model.File, error) {
	f, err := s.store.Files().ByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load file, %w", err)
	}

	if f.UserID != userID {
		return nil, ErrForbidden
	}

	return f, nil
}

// URL returns the address visitors open for a share
func (s *Shares) URL(t model.ShareType, token string) string {
	switch t {
	case model.ShareDirect:
		return s.publicURL + "/api/public/download/" + token
	case model.ShareBrowse:
		return s.publicURL + "/browse/" + token
	}

	return s.publicURL + "/shared/" + token
}

// Share publishes a file or folder. Sharing again replaces the token, so
// links handed out before stop working.
func (s *Shares) Share(ctx context.Context, userID string, id uint, in ShareInput) (*ShareResult, error) {
	if !in.ShareType.Valid() {
		return nil, Validation("invalid share type, expected one of direct, page or browse")
	}

	f, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	switch {
	case in.ShareType == model.ShareBrowse && !f.IsFolder:
		return nil, Validation("only folders can be shared for browsing")
	case in.ShareType != model.ShareBrowse && f.IsFolder:
		return nil, Validation("folders can only be shared for browsing")
	case in.IsPasswordProtected && in.ShareType == model.ShareDirect:
		return nil, Validation("direct links can't be password protected")
	case in.IsPasswordProtected && in.Password == "":
		return nil, Validation("a password is required for password protected shares")
	case len(in.Password) > 255:
		return nil, Validation("password is too long")
	}

	token, err := security.NewPublicToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate share token, %w", err)
	}

	var password *string
	if in.IsPasswordProtected {
		hash, err := s.argon.GenerateFromPassword(in.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash share password, %w", err)
		}
		password = &hash
	}

	err = s.store.Files().Update(ctx, f.ID, map[string]any{
		"is_public":             true,
		"public_token":          token,
		"share_type":            in.ShareType,
		"is_password_protected": in.IsPasswordProtected,
		"share_password":        password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to share file, %w", err)
	}

	f, err = s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	return &ShareResult{
		File:  *f,
		Token: token,
		URL:   s.URL(in.ShareType, token),
	}, nil
}

// Unshare revokes the public link of a file
func (s *Shares) Unshare(ctx context.Context, userID string, id uint) (*model.File, error) {
	f, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	err = s.store.Files().Update(ctx, f.ID, map[string]any{
		"is_public":             false,
		"public_token":          nil,
		"share_type":            nil,
		"is_password_protected": false,
		"share_password":        nil,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to unshare file, %w", err)
	}

	return s.owned(ctx, userID, id)
}

func (s *Shares) byToken(ctx context.Context, token string) (*model.File, error) {
	if len(token) != security.PublicTokenSize {
		return nil, ErrNotFound
	}

	f, err := s.store.Files().ByPublicToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to look up share, %w", err)
	}

	if f.ShareType == nil {
		return nil, ErrNotFound
	}

	return f, nil
}

func (s *Shares) checkPassword(f *model.File, password string) error {
	if !f.IsPasswordProtected {
		return nil
	}

	if password == "" {
		return ErrPasswordRequired
	}

	if f.SharePassword == nil {
		return ErrInvalidPassword
	}

	ok, err := s.argon.VerifyPasswd(password, *f.SharePassword)
	if err != nil {
		return fmt.Errorf("failed to verify share password, %w", err)
	}

	if !ok {
		return ErrInvalidPassword
	}

	return nil
}

func (s *Shares) Info(ctx context.Context, token string) (*PublicInfo, error) {
	f, err := s.byToken(ctx, token)
	if err != nil {
		return nil, err
	}

	return &PublicInfo{
		Name:                f.Name,
		MimeType:            f.MimeType,
		Size:                f.Size,
		IsPasswordProtected: f.IsPasswordProtected,
		ShareType:           *f.ShareType,
		IsFolder:            f.IsFolder,
		CreatedAt:           f.CreatedAt,
	}, nil
}

// Download streams a shared file
func (s *Shares) Download(ctx context.Context, token, password string) (*Blob, error) {
	f, err := s.byToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if f.IsFolder {
		return nil, ErrIsAFolder
	}

	if err := s.checkPassword(f, password); err != nil {
		return nil, err
	}

	return openBlob(ctx, s.blobs, f)
}

// browsable loads a browse share and checks its password
func (s *Shares) browsable(ctx context.Context, token, password string) (*model.File, error) {
	root, err := s.byToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if !root.IsFolder || *root.ShareType != model.ShareBrowse {
		return nil, ErrNotBrowsable
	}

	if err := s.checkPassword(root, password); err != nil {
		return nil, err
	}

	return root, nil
}

// inside loads id and returns the path from root to it. Rows outside of the
// shared folder are reported as not found.
func (s *Shares) inside(ctx context.Context, root *model.File, id uint) ([]model.File, error) {
	f, err := s.store.Files().ByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load file, %w", err)
	}

	if f.UserID != root.UserID {
		return nil, ErrNotFound
	}

	chain, found, err := ancestry(ctx, s.store.Files(), f, root.ID)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, ErrNotFound
	}

	return chain, nil
}

// Browse lists a shared folder, or the sub folder folderID inside of it
func (s *Shares) Browse(ctx context.Context, token, password string, folderID *uint) (*BrowseResult, error) {
	root, err := s.browsable(ctx, token, password)
	if err != nil {
		return nil, err
	}

	chain := []model.File{*root}
	if folderID != nil && *folderID != root.ID {
		chain, err = s.inside(ctx, root, *folderID)
		if err != nil {
			return nil, err
		}
	}

	current := chain[len(chain)-1]
	if !current.IsFolder {
		return nil, ErrNotFound
	}

	children, err := s.store.Files().Children(ctx, root.UserID, &current.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list shared folder, %w", err)
	}

	entries := make([]PublicEntry, len(children))
	for i := range children {
		entries[i] = publicEntry(&children[i])
	}

	return &BrowseResult{
		Folder:      publicEntry(&current),
		Children:    entries,
		Breadcrumbs: crumbs(chain),
	}, nil
}

// DownloadFromFolder streams a file that lives somewhere inside a shared folder
func (s *Shares) DownloadFromFolder(ctx context.Context, token string, fileID uint, password string) (*Blob, error) {
	root, err := s.browsable(ctx, token, password)
	if err != nil {
		return nil, err
	}

	chain, err := s.inside(ctx, root, fileID)
	if err != nil {
		return nil, err
	}

	f := chain[len(chain)-1]
	if f.IsFolder {
		return nil, ErrIsAFolder
	}

	return openBlob(ctx, s.blobs, &f)
}
