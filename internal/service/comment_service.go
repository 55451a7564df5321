package service

import (
	"strings"

	"github.com/google/uuid"
	"github.com/molelog/internal/db"
	"gorm.io/gorm"
)

// VerifyPhrase 是评论提交的人机验证口令：固定的共享短语，不是加密凭据。
// 提交者需要把「分子」写成平假名。
const VerifyPhrase = "ぶんし"

// CommentService wraps comment persistence for the intake flow.
type CommentService struct {
	db *gorm.DB
}

// CommentInput carries the submitted comment form fields.
type CommentInput struct {
	Name   string
	Body   string
	Verify string
}

// NewCommentService creates a CommentService instance.
func NewCommentService(gdb *gorm.DB) *CommentService {
	return &CommentService{db: gdb}
}

// Validate checks the form fields and the verification phrase without touching
// storage. handler 在解析文章之前先跑这里，保证校验失败时不产生任何写入。
func (s *CommentService) Validate(input CommentInput) error {
	if strings.TrimSpace(input.Body) == "" {
		return &FieldError{Field: "comment", Message: "comment body is required"}
	}
	if input.Verify != VerifyPhrase {
		return ErrVerifyMismatch
	}
	return nil
}

// CreateForArticle validates the form fields and the verification phrase and
// persists a comment attached to article.
func (s *CommentService) CreateForArticle(article *db.Article, input CommentInput) (*db.Comment, error) {
	if err := s.Validate(input); err != nil {
		return nil, err
	}

	body := strings.TrimSpace(input.Body)
	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = "unknown"
	}

	comment := db.Comment{
		Base:      db.Base{IsActive: true},
		ArticleID: article.ID,
		Name:      name,
		Body:      body,
	}
	if err := s.db.Create(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListForArticle returns the active comments of an article in chronological
// order for display.
func (s *CommentService) ListForArticle(articleID uuid.UUID) ([]db.Comment, error) {
	var comments []db.Comment
	if err := s.db.
		Where("article_id = ? AND is_active = ?", articleID, true).
		Order("created_at ASC, id ASC").
		Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}
