package service

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/molelog/internal/db"
	"gorm.io/gorm"
)

// ArticleService wraps article related database operations and owns the
// visibility rules deciding which articles each viewer may see.
type ArticleService struct {
	db *gorm.DB
}

// ArticleFilter describes filters for listing articles.
// Search 为 nil 表示「未提供搜索词」，与空字符串是两种不同的状态。
type ArticleFilter struct {
	Search             *string
	TagNames           []string
	IncludeUnpublished bool
	Page               int
	PerPage            int
}

// ArticleListResult aggregates paginated list data.
type ArticleListResult struct {
	Articles   []db.Article
	Total      int64
	TotalPages int
	Page       int
	PerPage    int
}

// ArticleInput represents fields accepted when creating or updating an article.
type ArticleInput struct {
	Title       string
	Description string
	Content     string
	Keywords    string
	CoverURL    string
	VideoURL    string
	PublishAt   *time.Time
	TagIDs      []uuid.UUID
	RelatedIDs  []uuid.UUID
}

const (
	// DefaultPerPage 是列表页的分页大小
	DefaultPerPage = 20

	defaultKeywords = "プログラミング"
)

// listOrder 定义列表的稳定排序链。sqlite 中 NULL 小于任何非 NULL 值，
// 因此没有发布时间的文章在 DESC 排序下沉到末尾。
const listOrder = "articles.publish_at DESC, articles.created_at DESC, articles.updated_at DESC"

// NewArticleService creates an ArticleService instance.
func NewArticleService(gdb *gorm.DB) *ArticleService {
	return &ArticleService{db: gdb}
}

func (s *ArticleService) activeScope() *gorm.DB {
	return s.db.Model(&db.Article{}).Where("articles.is_active = ?", true)
}

func (s *ArticleService) publishedScope(now time.Time) *gorm.DB {
	return s.activeScope().Where("articles.publish_at IS NOT NULL AND articles.publish_at <= ?", now)
}

// applySearch narrows query to rows whose title or description contains term,
// case-insensitively. 分组是显式的：可见性约束在外层 AND，文本匹配的 OR 只
// 作用于两个字段之间，未发布或已下线的行不会借 OR 泄漏进结果。
func applySearch(query *gorm.DB, term string) *gorm.DB {
	pattern := "%" + strings.ToLower(term) + "%"
	return query.Where("(LOWER(articles.title) LIKE ? OR LOWER(articles.description) LIKE ?)", pattern, pattern)
}

// conjoinedTagSubquery returns a subquery selecting ids of articles carrying
// every one of the given tag names (case-insensitive exact match per name).
// Returns nil when no usable names remain after trimming.
func (s *ArticleService) conjoinedTagSubquery(names []string) *gorm.DB {
	seen := make(map[string]struct{}, len(names))
	lowered := make([]string, 0, len(names))
	for _, name := range names {
		trimmed := strings.ToLower(strings.TrimSpace(name))
		if trimmed == "" {
			continue
		}
		if _, dup := seen[trimmed]; dup {
			continue
		}
		seen[trimmed] = struct{}{}
		lowered = append(lowered, trimmed)
	}

	if len(lowered) == 0 {
		return nil
	}

	return s.db.Model(&db.Article{}).
		Select("articles.id").
		Joins("JOIN article_tags ON article_tags.article_id = articles.id").
		Joins("JOIN tags ON tags.id = article_tags.tag_id").
		Where("LOWER(tags.name) IN ?", lowered).
		Group("articles.id").
		Having("COUNT(DISTINCT LOWER(tags.name)) = ?", len(lowered))
}

// ListActive returns every active article regardless of publish state,
// ordered by the listing chain. 供已登录运营者视图使用。
func (s *ArticleService) ListActive() ([]db.Article, error) {
	var articles []db.Article
	if err := s.activeScope().
		Preload("Tags").
		Order(listOrder).
		Find(&articles).Error; err != nil {
		return nil, err
	}
	return articles, nil
}

// ListPublished returns active articles whose publish time has passed.
// 供匿名访客视图使用。
func (s *ArticleService) ListPublished() ([]db.Article, error) {
	var articles []db.Article
	if err := s.publishedScope(time.Now()).
		Preload("Tags").
		Order(listOrder).
		Find(&articles).Error; err != nil {
		return nil, err
	}
	return articles, nil
}

// Search returns published articles whose title or description contains query.
// A nil query means no search was supplied and yields an empty result set,
// not the full listing. 空字符串会命中所有已发布文章（LIKE '%%'）。
func (s *ArticleService) Search(query *string) ([]db.Article, error) {
	if query == nil {
		return []db.Article{}, nil
	}

	var articles []db.Article
	if err := applySearch(s.publishedScope(time.Now()), *query).
		Preload("Tags").
		Order(listOrder).
		Find(&articles).Error; err != nil {
		return nil, err
	}
	return articles, nil
}

// FilterByTags returns active articles carrying all of the given tag names.
func (s *ArticleService) FilterByTags(names []string) ([]db.Article, error) {
	sub := s.conjoinedTagSubquery(names)
	if sub == nil {
		return []db.Article{}, nil
	}

	var articles []db.Article
	if err := s.activeScope().
		Where("articles.id IN (?)", sub).
		Preload("Tags").
		Order(listOrder).
		Find(&articles).Error; err != nil {
		return nil, err
	}
	return articles, nil
}

// List is the combined entrypoint used by the listing handler: it intersects
// the optional search clause and the optional conjoined tag clause over the
// visibility scope matching the viewer, with pagination.
func (s *ArticleService) List(filter ArticleFilter) (*ArticleListResult, error) {
	result := &ArticleListResult{Page: filter.Page, PerPage: filter.PerPage}
	if result.Page <= 0 {
		result.Page = 1
	}
	if result.PerPage <= 0 {
		result.PerPage = DefaultPerPage
	}

	base := func() *gorm.DB {
		var query *gorm.DB
		if filter.IncludeUnpublished {
			query = s.activeScope()
		} else {
			query = s.publishedScope(time.Now())
		}
		if filter.Search != nil {
			query = applySearch(query, *filter.Search)
		}
		if sub := s.conjoinedTagSubquery(filter.TagNames); sub != nil {
			query = query.Where("articles.id IN (?)", sub)
		}
		return query
	}

	if err := base().Count(&result.Total).Error; err != nil {
		return nil, err
	}

	offset := (result.Page - 1) * result.PerPage

	var articles []db.Article
	if err := base().
		Preload("Tags").
		Preload("Author").
		Order(listOrder).
		Limit(result.PerPage).
		Offset(offset).
		Find(&articles).Error; err != nil {
		return nil, err
	}

	if result.Total == 0 {
		result.TotalPages = 1
	} else {
		result.TotalPages = int((result.Total + int64(result.PerPage) - 1) / int64(result.PerPage))
	}

	result.Articles = articles
	return result, nil
}

// GetBySlug fetches an article by its canonical slug with associations preloaded.
func (s *ArticleService) GetBySlug(slug string) (*db.Article, error) {
	var article db.Article
	if err := s.db.
		Preload("Tags").
		Preload("Author").
		Preload("RelatedArticles").
		First(&article, "articles.slug = ?", slug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}
	return &article, nil
}

// Get fetches an article by id.
func (s *ArticleService) Get(id uuid.UUID) (*db.Article, error) {
	var article db.Article
	if err := s.db.
		Preload("Tags").
		Preload("RelatedArticles").
		First(&article, "articles.id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}
	return &article, nil
}

// Create persists a new article owned by authorID. Title and the slug derived
// from it must be unique among all articles, active or not; the unique indexes
// back the pre-checks against concurrent writers.
func (s *ArticleService) Create(authorID uint, input ArticleInput) (*db.Article, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, &FieldError{Field: "title", Message: "title is required"}
	}

	slug, err := s.uniqueSlug(title, uuid.Nil)
	if err != nil {
		return nil, err
	}

	keywords := strings.TrimSpace(input.Keywords)
	if keywords == "" {
		keywords = defaultKeywords
	}

	article := db.Article{
		Base:        db.Base{IsActive: true},
		Title:       title,
		Slug:        slug,
		Description: strings.TrimSpace(input.Description),
		Content:     input.Content,
		Keywords:    keywords,
		CoverURL:    strings.TrimSpace(input.CoverURL),
		VideoURL:    strings.TrimSpace(input.VideoURL),
		PublishAt:   input.PublishAt,
		AuthorID:    authorID,
	}

	return s.saveWithAssociations(&article, input.TagIDs, input.RelatedIDs)
}

// Update applies updates to an existing article. The author never changes.
// Renaming the title re-derives the slug, so callers must redirect using the
// returned article's slug.
func (s *ArticleService) Update(id uuid.UUID, input ArticleInput) (*db.Article, error) {
	var existing db.Article
	if err := s.db.First(&existing, "articles.id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, &FieldError{Field: "title", Message: "title is required"}
	}

	slug, err := s.uniqueSlug(title, existing.ID)
	if err != nil {
		return nil, err
	}

	keywords := strings.TrimSpace(input.Keywords)
	if keywords == "" {
		keywords = defaultKeywords
	}

	existing.Title = title
	existing.Slug = slug
	existing.Description = strings.TrimSpace(input.Description)
	existing.Content = input.Content
	existing.Keywords = keywords
	existing.CoverURL = strings.TrimSpace(input.CoverURL)
	existing.VideoURL = strings.TrimSpace(input.VideoURL)
	existing.PublishAt = input.PublishAt

	return s.saveWithAssociations(&existing, input.TagIDs, input.RelatedIDs)
}

// SoftDelete retires an article. The row stays in storage; a second call on
// an already retired article is not an error.
func (s *ArticleService) SoftDelete(id uuid.UUID) error {
	var existing db.Article
	if err := s.db.First(&existing, "articles.id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrArticleNotFound
		}
		return err
	}

	if !existing.IsActive {
		return nil
	}

	return s.db.Model(&existing).Update("is_active", false).Error
}

// uniqueSlug derives the slug for title and verifies neither the title nor the
// slug collides with another article. excludeID 在编辑时排除记录自身。
func (s *ArticleService) uniqueSlug(title string, excludeID uuid.UUID) (string, error) {
	slug := Slugify(title)
	if slug == "" {
		return "", &FieldError{Field: "title", Message: "title must contain letters or digits"}
	}

	titleQuery := s.db.Model(&db.Article{}).Where("articles.title = ?", title)
	slugQuery := s.db.Model(&db.Article{}).Where("articles.slug = ?", slug)
	if excludeID != uuid.Nil {
		titleQuery = titleQuery.Where("articles.id <> ?", excludeID)
		slugQuery = slugQuery.Where("articles.id <> ?", excludeID)
	}

	var count int64
	if err := titleQuery.Count(&count).Error; err != nil {
		return "", err
	}
	if count > 0 {
		return "", &FieldError{Field: "title", Message: "an article with this title already exists"}
	}

	if err := slugQuery.Count(&count).Error; err != nil {
		return "", err
	}
	if count > 0 {
		return "", &FieldError{Field: "title", Message: "an article with an equivalent slug already exists"}
	}

	return slug, nil
}

func (s *ArticleService) saveWithAssociations(article *db.Article, tagIDs, relatedIDs []uuid.UUID) (*db.Article, error) {
	return article, s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(article).Error; err != nil {
			return err
		}

		var tags []db.Tag
		if len(tagIDs) > 0 {
			if err := tx.Where("id IN ?", tagIDs).Find(&tags).Error; err != nil {
				return err
			}
			if len(tags) != len(tagIDs) {
				return ErrTagNotFound
			}
		}
		if err := tx.Model(article).Association("Tags").Replace(tags); err != nil {
			return err
		}

		var related []*db.Article
		if len(relatedIDs) > 0 {
			if err := tx.Where("id IN ?", relatedIDs).Find(&related).Error; err != nil {
				return err
			}
			if len(related) != len(relatedIDs) {
				return ErrArticleNotFound
			}
		}
		if err := tx.Model(article).Association("RelatedArticles").Replace(related); err != nil {
			return err
		}

		return tx.Preload("Tags").Preload("RelatedArticles").First(article, "articles.id = ?", article.ID).Error
	})
}
