package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/molelog/internal/db"
	"github.com/molelog/internal/logger"
	"github.com/molelog/internal/service"
	"go.uber.org/zap"
)

// bindArticleForm 将表单字段装配为服务层输入
func bindArticleForm(c *gin.Context) (service.ArticleInput, error) {
	input := service.ArticleInput{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Content:     c.PostForm("content"),
		Keywords:    c.PostForm("keywords"),
		CoverURL:    c.PostForm("cover_url"),
		VideoURL:    c.PostForm("video_url"),
	}

	if raw := strings.TrimSpace(c.PostForm("publish_at")); raw != "" {
		parsed, err := parsePublishAt(raw)
		if err != nil {
			return input, &service.FieldError{Field: "publish_at", Message: "invalid publish time"}
		}
		input.PublishAt = &parsed
	}

	tagIDs, err := parseUUIDList(c.PostFormArray("tags"))
	if err != nil {
		return input, &service.FieldError{Field: "tags", Message: "invalid tag selection"}
	}
	input.TagIDs = tagIDs

	relatedIDs, err := parseUUIDList(c.PostFormArray("related"))
	if err != nil {
		return input, &service.FieldError{Field: "related", Message: "invalid related article selection"}
	}
	input.RelatedIDs = relatedIDs

	return input, nil
}

func (a *API) renderArticleForm(c *gin.Context, status int, action string, article *db.Article, input service.ArticleInput, errorMessage string) {
	tagOptions, err := a.tags.ListActive()
	if err != nil {
		logger.Error("failed to list tags", zap.Error(err))
	}

	relatedOptions, err := a.articles.ListActive()
	if err != nil {
		logger.Error("failed to list related candidates", zap.Error(err))
	}

	c.HTML(status, "article_form.html", gin.H{
		"title":          "記事の編集",
		"action":         action,
		"article":        article,
		"input":          input,
		"tagOptions":     tagOptions,
		"relatedOptions": relatedOptions,
		"error":          errorMessage,
		"authenticated":  true,
	})
}

// ShowArticleNew 渲染新建文章表单
func (a *API) ShowArticleNew(c *gin.Context) {
	a.renderArticleForm(c, http.StatusOK, "/new/", nil, service.ArticleInput{}, "")
}

// CreateArticle 处理新建文章的表单提交。字段级错误内联回显，不抛 500。
func (a *API) CreateArticle(c *gin.Context) {
	input, err := bindArticleForm(c)
	if err != nil {
		fieldErr, _ := service.AsFieldError(err)
		a.renderArticleForm(c, http.StatusBadRequest, "/new/", nil, input, fieldErr.Message)
		return
	}

	article, err := a.articles.Create(CurrentOperatorID(c), input)
	if err != nil {
		if fieldErr, ok := service.AsFieldError(err); ok {
			a.renderArticleForm(c, http.StatusBadRequest, "/new/", nil, input, fieldErr.Message)
			return
		}
		if errors.Is(err, service.ErrTagNotFound) || errors.Is(err, service.ErrArticleNotFound) {
			a.renderArticleForm(c, http.StatusBadRequest, "/new/", nil, input, "selected tag or related article no longer exists")
			return
		}
		logger.Error("failed to create article", zap.Error(err))
		c.String(http.StatusInternalServerError, "internal error")
		return
	}

	addFlash(c, flashSuccess, "記事を作成しました :)")
	c.Redirect(http.StatusFound, "/"+article.Slug+"/")
}

// ShowArticleEdit 渲染编辑表单
func (a *API) ShowArticleEdit(c *gin.Context) {
	article, ok := a.articleFromSlug(c)
	if !ok {
		return
	}

	input := service.ArticleInput{
		Title:       article.Title,
		Description: article.Description,
		Content:     article.Content,
		Keywords:    article.Keywords,
		CoverURL:    article.CoverURL,
		VideoURL:    article.VideoURL,
		PublishAt:   article.PublishAt,
	}
	for _, tag := range article.Tags {
		input.TagIDs = append(input.TagIDs, tag.ID)
	}
	for _, rel := range article.RelatedArticles {
		input.RelatedIDs = append(input.RelatedIDs, rel.ID)
	}

	a.renderArticleForm(c, http.StatusOK, "/"+article.Slug+"/edit/", article, input, "")
}

// UpdateArticle 处理更新提交。标题变化会派生新 slug，成功后跳到规范地址。
func (a *API) UpdateArticle(c *gin.Context) {
	article, ok := a.articleFromSlug(c)
	if !ok {
		return
	}

	action := "/" + article.Slug + "/edit/"

	input, err := bindArticleForm(c)
	if err != nil {
		fieldErr, _ := service.AsFieldError(err)
		a.renderArticleForm(c, http.StatusBadRequest, action, article, input, fieldErr.Message)
		return
	}

	updated, err := a.articles.Update(article.ID, input)
	if err != nil {
		if fieldErr, ok := service.AsFieldError(err); ok {
			a.renderArticleForm(c, http.StatusBadRequest, action, article, input, fieldErr.Message)
			return
		}
		if errors.Is(err, service.ErrTagNotFound) || errors.Is(err, service.ErrArticleNotFound) {
			a.renderArticleForm(c, http.StatusBadRequest, action, article, input, "selected tag or related article no longer exists")
			return
		}
		logger.Error("failed to update article", zap.String("slug", article.Slug), zap.Error(err))
		c.String(http.StatusInternalServerError, "internal error")
		return
	}

	addFlash(c, flashSuccess, "記事を更新しました :)")
	c.Redirect(http.StatusFound, "/"+updated.Slug+"/")
}

// DeleteArticle 将文章下线（软删除）。行保留在存储里，这条路径永不物理删除。
func (a *API) DeleteArticle(c *gin.Context) {
	article, ok := a.articleFromSlug(c)
	if !ok {
		return
	}

	if err := a.articles.SoftDelete(article.ID); err != nil {
		logger.Error("failed to retire article", zap.String("slug", article.Slug), zap.Error(err))
		c.String(http.StatusInternalServerError, "internal error")
		return
	}

	addFlash(c, flashSuccess, "記事を削除しました")
	c.Redirect(http.StatusFound, "/")
}

func (a *API) articleFromSlug(c *gin.Context) (*db.Article, bool) {
	article, err := a.articles.GetBySlug(c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrArticleNotFound) {
			c.String(http.StatusNotFound, "article not found")
			return nil, false
		}
		logger.Error("failed to load article", zap.Error(err))
		c.String(http.StatusInternalServerError, "internal error")
		return nil, false
	}
	return article, true
}
