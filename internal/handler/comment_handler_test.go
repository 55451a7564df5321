package handler

import (
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/molelog/internal/db"
	"github.com/molelog/internal/service"
)

func seedArticle(t *testing.T, api *API, title string) *db.Article {
	t.Helper()
	article, err := api.articles.Create(1, service.ArticleInput{Title: title})
	if err != nil {
		t.Fatalf("seed article %q: %v", title, err)
	}
	return article
}

func countComments(t *testing.T, api *API) int64 {
	t.Helper()
	var count int64
	if err := api.DB().Model(&db.Comment{}).Count(&count).Error; err != nil {
		t.Fatalf("count comments: %v", err)
	}
	return count
}

func TestCreateCommentHappyPath(t *testing.T) {
	mail := &fakeSender{}
	api, cleanup := setupAPI(t, Options{Mail: mail, MailFrom: "blog@example.com", MailTo: []string{"owner@example.com"}})
	defer cleanup()

	article := seedArticle(t, api, "Commented Article")
	r := newTestEngine(api)

	form := url.Values{
		"article_slug": {article.Slug},
		"name":         {"reader"},
		"comment":      {"great read"},
		"verify":       {"ぶんし"},
	}
	w := postForm(r, "/comments/new/", form, nil)

	if w.Code != http.StatusFound {
		t.Fatalf("expected redirect, got %d: %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Location"); got != "/"+article.Slug+"/" {
		t.Fatalf("expected redirect to the article, got %q", got)
	}
	if countComments(t, api) != 1 {
		t.Fatalf("expected the comment to be persisted")
	}
	if mail.calls != 1 {
		t.Fatalf("expected one notification mail, got %d", mail.calls)
	}
}

func TestCreateCommentWrongVerifyPhrase(t *testing.T) {
	api, cleanup := setupAPI(t, Options{})
	defer cleanup()

	article := seedArticle(t, api, "Guarded Article")
	r := newTestEngine(api)

	// 漢字表記では通らない
	form := url.Values{
		"article_slug": {article.Slug},
		"comment":      {"great read"},
		"verify":       {"分子"},
	}
	w := postForm(r, "/comments/new/", form, nil)

	if w.Code != http.StatusFound {
		t.Fatalf("expected redirect back to the article, got %d", w.Code)
	}
	if got := w.Header().Get("Location"); got != "/"+article.Slug+"/" {
		t.Fatalf("expected redirect to the article, got %q", got)
	}
	if countComments(t, api) != 0 {
		t.Fatalf("a rejected comment must not be persisted")
	}
}

func TestCreateCommentMissingSlugRedirectsHome(t *testing.T) {
	api, cleanup := setupAPI(t, Options{})
	defer cleanup()

	r := newTestEngine(api)
	form := url.Values{"comment": {"hello"}, "verify": {"ぶんし"}}
	w := postForm(r, "/comments/new/", form, nil)

	if w.Code != http.StatusFound || w.Header().Get("Location") != "/" {
		t.Fatalf("expected redirect to /, got %d %q", w.Code, w.Header().Get("Location"))
	}
}

// 表单无效时先回显到详情页，即便 slug 根本不存在也不暴露 404
func TestCreateCommentInvalidFormBeforeArticleLookup(t *testing.T) {
	api, cleanup := setupAPI(t, Options{})
	defer cleanup()

	r := newTestEngine(api)
	form := url.Values{
		"article_slug": {"no-such-article"},
		"comment":      {""},
		"verify":       {"ぶんし"},
	}
	w := postForm(r, "/comments/new/", form, nil)

	if w.Code != http.StatusFound {
		t.Fatalf("expected redirect, got %d", w.Code)
	}
	if got := w.Header().Get("Location"); got != "/no-such-article/" {
		t.Fatalf("expected redirect to the detail path, got %q", got)
	}
}

func TestCreateCommentUnknownArticle(t *testing.T) {
	api, cleanup := setupAPI(t, Options{})
	defer cleanup()

	r := newTestEngine(api)
	form := url.Values{
		"article_slug": {"no-such-article"},
		"comment":      {"hello"},
		"verify":       {"ぶんし"},
	}
	w := postForm(r, "/comments/new/", form, nil)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for an unknown article, got %d", w.Code)
	}
	if countComments(t, api) != 0 {
		t.Fatalf("no comment row may exist for an unknown article")
	}
}

func TestCreateCommentMailFailureDoesNotBlock(t *testing.T) {
	mail := &fakeSender{err: errors.New("smtp down")}
	api, cleanup := setupAPI(t, Options{Mail: mail, MailFrom: "blog@example.com", MailTo: []string{"owner@example.com"}})
	defer cleanup()

	article := seedArticle(t, api, "Resilient Article")
	r := newTestEngine(api)

	form := url.Values{
		"article_slug": {article.Slug},
		"comment":      {"still works"},
		"verify":       {"ぶんし"},
	}
	w := postForm(r, "/comments/new/", form, nil)

	if w.Code != http.StatusFound {
		t.Fatalf("mail failure must not fail the request, got %d", w.Code)
	}
	if countComments(t, api) != 1 {
		t.Fatalf("the comment must be persisted despite the mail failure")
	}
	if mail.calls != 1 {
		t.Fatalf("the mailer must still have been attempted")
	}
}
