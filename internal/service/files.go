package service

import (
	"bitwise74/drive-api/internal/model"
	"bitwise74/drive-api/internal/repository"
	"bitwise74/drive-api/internal/storage"
	"bitwise74/drive-api/pkg/validators"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// sniffLen is how much of every upload is buffered for MIME detection
const sniffLen = 3072

// Files manages the file tree of each user. Every method is scoped to the
// user it's called for.
type Files struct {
	store    *repository.Store
	blobs    storage.Storage
	settings *Settings
}

func NewFiles(store *repository.Store, blobs storage.Storage, settings *Settings) *Files {
	return &Files{store: store, blobs: blobs, settings: settings}
}

// FileDetails is a single file together with the path leading to it
type FileDetails struct {
	File        model.File `json:"file"`
	Breadcrumbs []Crumb    `json:"breadcrumbs"`
}

// Upload describes one file of a multipart upload
type Upload struct {
	Name        string
	Size        int64
	ContentType string
	Open        func() (io.ReadCloser, error)
}

// Blob is an opened file ready to be streamed to a client
type Blob struct {
	Name     string
	MimeType string
	Size     int64
	Body     io.ReadCloser
}

// owned loads a file and checks that userID owns it
func (s *Files) owned(ctx context.Context, userID string, id uint) (*model.File, error) {
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

func (s *Files) checkParent(ctx context.Context, userID string, parentID *uint) error {
	if parentID == nil {
		return nil
	}

	p, err := s.store.Files().ByID(ctx, *parentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrParentNotFound
		}
		return fmt.Errorf("failed to load parent folder, %w", err)
	}

	if p.UserID != userID {
		return ErrForbidden
	}

	if !p.IsFolder {
		return ErrNotAFolder
	}

	return nil
}

// List returns the children of parentID (nil is the root). A non-empty
// search matches names across the whole tree instead.
func (s *Files) List(ctx context.Context, userID string, parentID *uint, search string) ([]model.File, error) {
	if err := s.checkParent(ctx, userID, parentID); err != nil {
		return nil, err
	}

	var (
		files []model.File
		err   error
	)

	if search = strings.TrimSpace(search); search != "" {
		files, err = s.store.Files().Search(ctx, userID, search)
	} else {
		files, err = s.store.Files().Children(ctx, userID, parentID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list files, %w", err)
	}

	if files == nil {
		files = []model.File{}
	}

	return files, nil
}

func (s *Files) Get(ctx context.Context, userID string, id uint) (*FileDetails, error) {
	f, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	chain, _, err := ancestry(ctx, s.store.Files(), f, 0)
	if err != nil {
		return nil, err
	}

	return &FileDetails{File: *f, Breadcrumbs: crumbs(chain)}, nil
}

func (s *Files) CreateFolder(ctx context.Context, userID, name string, parentID *uint) (*model.File, error) {
	name = strings.TrimSpace(name)
	if err := validators.FileNameValidator(name); err != nil {
		return nil, Validation(err.Error())
	}

	if err := s.checkParent(ctx, userID, parentID); err != nil {
		return nil, err
	}

	taken, err := s.store.Files().FolderNameTaken(ctx, userID, parentID, name, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to check folder name, %w", err)
	}

	if taken {
		return nil, ErrDuplicateName
	}

	f := &model.File{
		Name:     name,
		IsFolder: true,
		UserID:   userID,
		ParentID: parentID,
	}

	if err := s.store.Files().Create(ctx, f); err != nil {
		return nil, fmt.Errorf("failed to create folder, %w", err)
	}

	return f, nil
}

// Upload stores every file under parentID. Nothing is written if the batch
// doesn't fit in the quota of the user.
func (s *Files) Upload(ctx context.Context, userID string, parentID *uint, uploads []Upload) ([]model.File, error) {
	if len(uploads) == 0 {
		return nil, Validation("no files provided")
	}

	if err := s.checkParent(ctx, userID, parentID); err != nil {
		return nil, err
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, u := range uploads {
		if err := validators.FileNameValidator(u.Name); err != nil {
			return nil, Validation(err.Error())
		}

		if u.Size < 0 {
			return nil, Validation("invalid file size")
		}

		if u.Size > settings.MaxUploadSize {
			return nil, ErrFileTooLarge
		}

		total += u.Size
	}

	user, err := s.store.Users().ByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("failed to load user, %w", err)
	}

	if user.UsedSpace+total > user.Quota {
		return nil, ErrQuotaExceeded
	}

	rows := make([]*model.File, 0, len(uploads))
	for _, u := range uploads {
		f, err := s.writeBlob(ctx, userID, parentID, u)
		if err != nil {
			s.removeBlobs(ctx, rows)
			return nil, err
		}

		rows = append(rows, f)
	}

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Files().CreateMany(ctx, rows); err != nil {
			return err
		}
		return tx.Users().AddUsedSpace(ctx, userID, total)
	})
	if err != nil {
		s.removeBlobs(ctx, rows)
		return nil, fmt.Errorf("failed to save uploaded files, %w", err)
	}

	out := make([]model.File, len(rows))
	for i, f := range rows {
		out[i] = *f
	}

	return out, nil
}

func (s *Files) writeBlob(ctx context.Context, userID string, parentID *uint, u Upload) (*model.File, error) {
	rc, err := u.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file, %w", err)
	}
	defer rc.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(rc, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("failed to read uploaded file, %w", err)
	}
	head = head[:n]

	mime := mimetype.Detect(head).String()
	if mime == "application/octet-stream" && u.ContentType != "" {
		mime = u.ContentType
	}

	key := uuid.NewString()
	body := io.MultiReader(bytes.NewReader(head), rc)

	if err := s.blobs.Put(ctx, key, body, u.Size, mime); err != nil {
		return nil, fmt.Errorf("failed to store uploaded file, %w", err)
	}

	return &model.File{
		Name:        u.Name,
		StoragePath: key,
		MimeType:    mime,
		Size:        u.Size,
		UserID:      userID,
		ParentID:    parentID,
	}, nil
}

func (s *Files) removeBlobs(ctx context.Context, files []*model.File) {
	for _, f := range files {
		if err := s.blobs.Delete(ctx, f.StoragePath); err != nil && !errors.Is(err, storage.ErrNotExist) {
			zap.L().Error("Failed to remove orphaned blob", zap.Error(err), zap.String("key", f.StoragePath))
		}
	}
}

func (s *Files) Rename(ctx context.Context, userID string, id uint, name string) (*model.File, error) {
	name = strings.TrimSpace(name)
	if err := validators.FileNameValidator(name); err != nil {
		return nil, Validation(err.Error())
	}

	f, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if f.IsFolder {
		taken, err := s.store.Files().FolderNameTaken(ctx, userID, f.ParentID, name, f.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check folder name, %w", err)
		}

		if taken {
			return nil, ErrDuplicateName
		}
	}

	if err := s.store.Files().Update(ctx, f.ID, map[string]any{"name": name}); err != nil {
		return nil, fmt.Errorf("failed to rename file, %w", err)
	}

	return s.owned(ctx, userID, id)
}

// Delete removes a file, or a folder with everything inside it. Blobs are
// removed after the rows are gone, a blob that fails to delete is only logged.
func (s *Files) Delete(ctx context.Context, userID string, id uint) error {
	f, err := s.owned(ctx, userID, id)
	if err != nil {
		return err
	}

	files, err := subtree(ctx, s.store.Files(), f)
	if err != nil {
		return err
	}

	return deleteFiles(ctx, s.store, s.blobs, userID, files)
}

func deleteFiles(ctx context.Context, store *repository.Store, blobs storage.Storage, userID string, files []model.File) error {
	var (
		ids   = make([]uint, 0, len(files))
		keys  []string
		freed int64
	)

	for _, f := range files {
		ids = append(ids, f.ID)
		if !f.IsFolder {
			freed += f.Size
			if f.StoragePath != "" {
				keys = append(keys, f.StoragePath)
			}
		}
	}

	err := store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Files().DeleteByIDs(ctx, ids); err != nil {
			return err
		}
		return tx.Users().AddUsedSpace(ctx, userID, -freed)
	})
	if err != nil {
		return fmt.Errorf("failed to delete files, %w", err)
	}

	for _, key := range keys {
		if err := blobs.Delete(ctx, key); err != nil {
			if errors.Is(err, storage.ErrNotExist) {
				zap.L().Warn("Blob already missing", zap.String("key", key))
				continue
			}
			zap.L().Error("Failed to delete blob", zap.Error(err), zap.String("key", key))
		}
	}

	return nil
}

func (s *Files) Download(ctx context.Context, userID string, id uint) (*Blob, error) {
	f, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	return openBlob(ctx, s.blobs, f)
}

func openBlob(ctx context.Context, blobs storage.Storage, f *model.File) (*Blob, error) {
	if f.IsFolder {
		return nil, ErrIsAFolder
	}

	if f.StoragePath == "" {
		return nil, ErrNotFoundOnDisk
	}

	// Content-Length is taken from the blob itself, the row may be stale
	size, err := blobs.Stat(ctx, f.StoragePath)
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return nil, ErrNotFoundOnDisk
		}
		return nil, fmt.Errorf("failed to stat blob, %w", err)
	}

	if size != f.Size {
		zap.L().Warn("Blob size differs from file row", zap.Uint("fileID", f.ID), zap.Int64("rowSize", f.Size), zap.Int64("blobSize", size))
	}

	rc, err := blobs.Open(ctx, f.StoragePath)
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return nil, ErrNotFoundOnDisk
		}
		return nil, fmt.Errorf("failed to open blob, %w", err)
	}

	mime := f.MimeType
	if mime == "" {
		mime = "application/octet-stream"
	}

	return &Blob{
		Name:     f.Name,
		MimeType: mime,
		Size:     size,
		Body:     rc,
	}, nil
}
