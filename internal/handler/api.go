package handler

import (
	"github.com/molelog/internal/mailer"
	"github.com/molelog/internal/service"
	"github.com/molelog/internal/storage"
	"gorm.io/gorm"
)

// Options carries the collaborators the handlers depend on besides the database.
type Options struct {
	Images         storage.ImageStore
	Mail           mailer.Sender
	MailFrom       string
	MailTo         []string
	MaxUploadBytes int64
}

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db        *gorm.DB
	articles  *service.ArticleService
	tags      *service.TagService
	comments  *service.CommentService
	images    storage.ImageStore
	mail      mailer.Sender
	mailFrom  string
	mailTo    []string
	maxUpload int64
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, opts Options) *API {
	maxUpload := opts.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = 5 << 20
	}

	return &API{
		db:        gdb,
		articles:  service.NewArticleService(gdb),
		tags:      service.NewTagService(gdb),
		comments:  service.NewCommentService(gdb),
		images:    opts.Images,
		mail:      opts.Mail,
		mailFrom:  opts.MailFrom,
		mailTo:    opts.MailTo,
		maxUpload: maxUpload,
	}
}

// DB exposes the underlying gorm instance.
func (a *API) DB() *gorm.DB {
	return a.db
}
