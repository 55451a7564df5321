package service

import (
	"strings"

	"github.com/molelog/internal/db"
	"gorm.io/gorm"
)

// TagService wraps tag related operations.
type TagService struct {
	db *gorm.DB
}

// NewTagService creates a TagService instance.
func NewTagService(gdb *gorm.DB) *TagService {
	return &TagService{db: gdb}
}

// ListActive returns active tags, newest first. 下线的标签不出现在任何默认列表。
func (s *TagService) ListActive() ([]db.Tag, error) {
	var tags []db.Tag
	if err := s.db.
		Where("is_active = ?", true).
		Order("created_at DESC, updated_at DESC").
		Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// Create inserts a new tag. Names are not required to be unique; the original
// data model tolerates duplicates and so do we.
func (s *TagService) Create(name string) (*db.Tag, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, &FieldError{Field: "tag_name", Message: "tag name is required"}
	}

	tag := db.Tag{Base: db.Base{IsActive: true}, Name: trimmed}
	if err := s.db.Create(&tag).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}
