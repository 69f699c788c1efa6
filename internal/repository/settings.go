package repository

import (
	"bitwise74/drive-api/internal/model"
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Settings interface {
	All(ctx context.Context) (map[string]string, error)
	// Set upserts every key in values
	Set(ctx context.Context, values map[string]string) error
}

type settingRepo struct {
	db *gorm.DB
}

func (r *settingRepo) All(ctx context.Context) (map[string]string, error) {
	var rows []model.Setting
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, translate(err)
	}

	out := make(map[string]string, len(rows))
	for _, s := range rows {
		out[s.Key] = s.Value
	}

	return out, nil
}

func (r *settingRepo) Set(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}

	rows := make([]model.Setting, 0, len(values))
	for k, v := range values {
		rows = append(rows, model.Setting{Key: k, Value: v})
	}

	return translate(r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&rows).Error)
}
