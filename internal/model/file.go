// Package model defines database models
package model

import "time"

// ShareType is the access mode of a public token
type ShareType string

const (
	ShareDirect ShareType = "direct"
	SharePage   ShareType = "page"
	ShareBrowse ShareType = "browse"
)

func (s ShareType) Valid() bool {
	switch s {
	case ShareDirect, SharePage, ShareBrowse:
		return true
	}

	return false
}

// File is either a stored blob or, when IsFolder is set, a folder. Folders have
// no StoragePath and always have a size of 0.
type File struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"not null" json:"name"`
	StoragePath string `json:"-"` // Blob key, unrelated to Name
	MimeType    string `json:"mimeType"`
	Size        int64  `gorm:"not null;default:0" json:"size"`
	IsFolder    bool   `gorm:"not null;default:false" json:"isFolder"`
	UserID      string `gorm:"not null;index" json:"userId"`
	ParentID    *uint  `gorm:"index" json:"parentId"`

	IsPublic            bool       `gorm:"not null;default:false" json:"isPublic"`
	PublicToken         *string    `gorm:"uniqueIndex" json:"publicToken"`
	ShareType           *ShareType `json:"shareType"`
	IsPasswordProtected bool       `gorm:"not null;default:false" json:"isPasswordProtected"`
	SharePassword       *string    `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
