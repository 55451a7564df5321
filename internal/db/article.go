package db

import "time"

// Article 定义了文章模型
type Article struct {
	Base
	Title           string `gorm:"size:255;uniqueIndex;not null"`
	Slug            string `gorm:"size:255;uniqueIndex;not null"`
	Description     string `gorm:"type:text"`
	Content         string `gorm:"type:text"`
	Keywords        string `gorm:"size:255"`
	CoverURL        string
	VideoURL        string
	PublishAt       *time.Time `gorm:"index"`
	AuthorID        uint       `gorm:"not null"`
	Author          Operator
	Tags            []Tag      `gorm:"many2many:article_tags;"`
	RelatedArticles []*Article `gorm:"many2many:article_related;"`
	Comments        []Comment  `gorm:"constraint:OnDelete:CASCADE;"`
}

// IsPublished 表示文章当前是否对匿名访客可见。
// 已发布 = is_active 为真，且 publish_at 非空并早于等于当前时间。
func (a *Article) IsPublished() bool {
	return a.IsActive && a.PublishAt != nil && !a.PublishAt.After(time.Now())
}
