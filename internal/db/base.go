package db

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base 定义了所有内容模型共用的字段：UUID 主键、审计时间戳与软删除标记
type Base struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	IsActive  bool `gorm:"not null;default:true"`
}

// BeforeCreate 在创建前生成不可猜测的 UUID 主键
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
