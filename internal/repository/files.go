package repository

import (
	"bitwise74/drive-api/internal/model"
	"context"
	"strings"

	"gorm.io/gorm"
)

type Files interface {
	Create(ctx context.Context, f *model.File) error
	CreateMany(ctx context.Context, files []*model.File) error
	ByID(ctx context.Context, id uint) (*model.File, error)
	ByPublicToken(ctx context.Context, token string) (*model.File, error)
	// Children lists the rows directly under parentID for a user. A nil
	// parentID lists the root. Folders come first, then by name.
	Children(ctx context.Context, userID string, parentID *uint) ([]model.File, error)
	// Search matches name case-insensitively against the whole tree of a user
	Search(ctx context.Context, userID, query string) ([]model.File, error)
	ByUser(ctx context.Context, userID string) ([]model.File, error)
	// FolderNameTaken reports whether a folder called name already exists under
	// parentID for a user, ignoring the row with id exclude.
	FolderNameTaken(ctx context.Context, userID string, parentID *uint, name string, exclude uint) (bool, error)
	Update(ctx context.Context, id uint, fields map[string]any) error
	DeleteByIDs(ctx context.Context, ids []uint) error
}

type fileRepo struct {
	db *gorm.DB
}

const childOrder = "is_folder DESC, name ASC, id ASC"

func (r *fileRepo) Create(ctx context.Context, f *model.File) error {
	return translate(r.db.WithContext(ctx).Create(f).Error)
}

func (r *fileRepo) CreateMany(ctx context.Context, files []*model.File) error {
	if len(files) == 0 {
		return nil
	}

	return translate(r.db.WithContext(ctx).Create(files).Error)
}

func (r *fileRepo) ByID(ctx context.Context, id uint) (*model.File, error) {
	var f model.File
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&f).Error; err != nil {
		return nil, translate(err)
	}

	return &f, nil
}

func (r *fileRepo) ByPublicToken(ctx context.Context, token string) (*model.File, error) {
	var f model.File
	err := r.db.WithContext(ctx).
		Where("public_token = ? AND is_public = ?", token, true).
		First(&f).Error
	if err != nil {
		return nil, translate(err)
	}

	return &f, nil
}

func (r *fileRepo) Children(ctx context.Context, userID string, parentID *uint) ([]model.File, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if parentID == nil {
		q = q.Where("parent_id IS NULL")
	} else {
		q = q.Where("parent_id = ?", *parentID)
	}

	var files []model.File
	err := q.Order(childOrder).Find(&files).Error

	return files, translate(err)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *fileRepo) Search(ctx context.Context, userID, query string) ([]model.File, error) {
	pattern := "%" + likeEscaper.Replace(strings.ToLower(query)) + "%"

	var files []model.File
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND LOWER(name) LIKE ? ESCAPE '\\'", userID, pattern).
		Order(childOrder).
		Find(&files).Error

	return files, translate(err)
}

func (r *fileRepo) ByUser(ctx context.Context, userID string) ([]model.File, error) {
	var files []model.File
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&files).Error

	return files, translate(err)
}

func (r *fileRepo) FolderNameTaken(ctx context.Context, userID string, parentID *uint, name string, exclude uint) (bool, error) {
	q := r.db.WithContext(ctx).
		Model(&model.File{}).
		Where("user_id = ? AND is_folder = ? AND name = ? AND id <> ?", userID, true, name, exclude)
	if parentID == nil {
		q = q.Where("parent_id IS NULL")
	} else {
		q = q.Where("parent_id = ?", *parentID)
	}

	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, translate(err)
	}

	return n > 0, nil
}

func (r *fileRepo) Update(ctx context.Context, id uint, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&model.File{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return translate(res.Error)
	}

	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *fileRepo) DeleteByIDs(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}

	return translate(r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&model.File{}).Error)
}
