package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/molelog/internal/db"
	"github.com/molelog/internal/logger"
	"github.com/molelog/internal/service"
	"go.uber.org/zap"
)

// CreateComment 实现评论提交的单次状态转移：
// 校验表单 → 校验口令 → 解析文章 → 落库 → best-effort 邮件通知 → 重定向。
// 任何一步失败都不会留下部分状态。
func (a *API) CreateComment(c *gin.Context) {
	slug := strings.TrimSpace(c.PostForm("article_slug"))
	if slug == "" {
		addFlash(c, flashError, "問題が発生しました。もう一度お試しください :(")
		c.Redirect(http.StatusFound, "/")
		return
	}

	detailPath := "/" + slug + "/"

	input := service.CommentInput{
		Name:   c.PostForm("name"),
		Body:   c.PostForm("comment"),
		Verify: c.PostForm("verify"),
	}

	// 字段与口令校验先于文章解析：表单坏掉时回到详情页，而不是 404
	if err := a.comments.Validate(input); err != nil {
		if errors.Is(err, service.ErrVerifyMismatch) {
			addFlash(c, flashError, "認証が通りませんでした。もう一度お試しください :(")
		} else {
			addFlash(c, flashError, "コメントを残すことができませんでした :(")
		}
		c.Redirect(http.StatusFound, detailPath)
		return
	}

	article, err := a.articles.GetBySlug(slug)
	if err != nil {
		if errors.Is(err, service.ErrArticleNotFound) {
			c.String(http.StatusNotFound, "article not found")
			return
		}
		logger.Error("failed to load article for comment", zap.String("slug", slug), zap.Error(err))
		c.String(http.StatusInternalServerError, "internal error")
		return
	}

	comment, err := a.comments.CreateForArticle(article, input)
	if err != nil {
		logger.Error("failed to persist comment", zap.String("slug", slug), zap.Error(err))
		addFlash(c, flashError, "コメントを残すことができませんでした :(")
		c.Redirect(http.StatusFound, detailPath)
		return
	}

	a.notifyCommentCreated(article, comment)

	addFlash(c, flashSuccess, "コメントを残しました :)")
	c.Redirect(http.StatusFound, detailPath)
}

// notifyCommentCreated 以 best-effort 方式给站点运营者发通知邮件。
// 此时评论已经落库，发送失败只记日志，绝不回滚也不影响响应。
func (a *API) notifyCommentCreated(article *db.Article, comment *db.Comment) {
	if a.mail == nil || len(a.mailTo) == 0 {
		return
	}

	subject := "You have a new comment"
	body := fmt.Sprintf("新しいコメントが届きました。\n\n記事: %s\n名前: %s\n\n%s\n",
		article.Title, comment.Name, comment.Body)

	if err := a.mail.Send(subject, body, a.mailFrom, a.mailTo); err != nil {
		logger.Error("failed to send comment notification",
			zap.String("article", article.Slug), zap.Error(err))
	}
}
