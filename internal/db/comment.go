package db

import "github.com/google/uuid"

// Comment 定义了文章评论模型。评论归属于唯一一篇文章，文章被物理删除时级联删除。
type Comment struct {
	Base
	ArticleID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name      string    `gorm:"size:255;not null;default:unknown"`
	Body      string    `gorm:"type:text;not null"`
}
