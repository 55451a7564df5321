package handler

import (
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/molelog/internal/db"
	"github.com/molelog/internal/logger"
	"github.com/molelog/internal/service"
	"go.uber.org/zap"
)

// commentView 是评论在详情页的渲染形态
type commentView struct {
	Name      string
	Body      template.HTML
	CreatedAt time.Time
}

// ShowHome renders the article listing with free-text search and conjoined
// tag filters. 登录运营者能看到未发布的草稿，匿名访客只能看到已发布文章。
func (a *API) ShowHome(c *gin.Context) {
	filter := service.ArticleFilter{
		TagNames:           c.QueryArray("tags"),
		IncludeUnpublished: IsAuthenticated(c),
		Page:               parsePositiveInt(c.DefaultQuery("page", "1"), 1),
		PerPage:            service.DefaultPerPage,
	}

	// 「未提供搜索词」与「搜索词为空串」是两种状态，这里只在参数出现时才设置
	if search, ok := c.GetQuery("search"); ok {
		filter.Search = &search
	}

	result, err := a.articles.List(filter)
	if err != nil {
		logger.Error("failed to list articles", zap.Error(err))
		c.HTML(http.StatusInternalServerError, "article_home.html", gin.H{
			"title":         "記事一覧",
			"error":         "記事を取得できませんでした",
			"articles":      []db.Article{},
			"page":          1,
			"totalPages":    1,
			"total":         int64(0),
			"search":        "",
			"selectedTags":  []string{},
			"tagOptions":    []db.Tag{},
			"flashes":       []Flash{},
			"authenticated": IsAuthenticated(c),
			"year":          time.Now().Year(),
		})
		return
	}

	tagOptions, err := a.tags.ListActive()
	if err != nil {
		logger.Error("failed to list tags", zap.Error(err))
	}

	search := ""
	if filter.Search != nil {
		search = *filter.Search
	}

	c.HTML(http.StatusOK, "article_home.html", gin.H{
		"title":         "記事一覧",
		"articles":      result.Articles,
		"page":          result.Page,
		"totalPages":    result.TotalPages,
		"total":         result.Total,
		"search":        search,
		"selectedTags":  filter.TagNames,
		"tagOptions":    tagOptions,
		"flashes":       takeFlashes(c),
		"authenticated": IsAuthenticated(c),
		"year":          time.Now().Year(),
	})
}

// ShowDetail renders a single article. 下线的文章对所有人都是 404；
// 未发布的文章只有登录运营者可以打开，匿名访客拿到 403。
func (a *API) ShowDetail(c *gin.Context) {
	slug := c.Param("slug")

	article, err := a.articles.GetBySlug(slug)
	if err != nil {
		if errors.Is(err, service.ErrArticleNotFound) {
			c.String(http.StatusNotFound, "article not found")
			return
		}
		logger.Error("failed to load article", zap.String("slug", slug), zap.Error(err))
		c.String(http.StatusInternalServerError, "internal error")
		return
	}

	if !article.IsActive {
		c.String(http.StatusNotFound, "article not found")
		return
	}

	if !article.IsPublished() && !IsAuthenticated(c) {
		c.String(http.StatusForbidden, "article is not published")
		return
	}

	comments, err := a.comments.ListForArticle(article.ID)
	if err != nil {
		logger.Error("failed to list comments", zap.String("slug", slug), zap.Error(err))
	}

	commentViews := make([]commentView, 0, len(comments))
	for _, comment := range comments {
		commentViews = append(commentViews, commentView{
			Name:      comment.Name,
			Body:      renderMarkdown(comment.Body),
			CreatedAt: comment.CreatedAt,
		})
	}

	related := a.visibleRelated(article, IsAuthenticated(c))

	c.HTML(http.StatusOK, "article_detail.html", gin.H{
		"title":         article.Title,
		"article":       article,
		"content":       renderMarkdown(article.Content),
		"comments":      commentViews,
		"related":       related,
		"flashes":       takeFlashes(c),
		"authenticated": IsAuthenticated(c),
		"year":          time.Now().Year(),
	})
}

// visibleRelated 过滤关联文章：对访客只保留已发布，对运营者保留所有在线文章
func (a *API) visibleRelated(article *db.Article, authenticated bool) []*db.Article {
	related := make([]*db.Article, 0, len(article.RelatedArticles))
	for _, item := range article.RelatedArticles {
		if !item.IsActive {
			continue
		}
		if !authenticated && !item.IsPublished() {
			continue
		}
		related = append(related, item)
	}
	return related
}
