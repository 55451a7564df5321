package db

// Tag 定义了标签模型。名称不要求全局唯一，重名标签由运营者自行清理。
type Tag struct {
	Base
	Name     string    `gorm:"size:100;not null"`
	Articles []Article `gorm:"many2many:article_tags;"`
}
