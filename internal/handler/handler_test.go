package handler

import (
	"fmt"
	"html/template"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/molelog/internal/db"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	testOperatorName     = "admin"
	testOperatorPassword = "pass"
)

type fakeSender struct {
	calls    int
	subjects []string
	err      error
}

func (f *fakeSender) Send(subject, body, from string, to []string) error {
	f.calls++
	f.subjects = append(f.subjects, subject)
	return f.err
}

type fakeImageStore struct {
	paths []string
	err   error
}

func (f *fakeImageStore) Save(r io.Reader, path string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	f.paths = append(f.paths, path)
	return "/static/upload/" + path, nil
}

// setupAPI 建一个进程内 sqlite 库，迁移全部模型并播种一个运营者账号。
// Login 处理器读全局 db.DB，这里一并指过去。
func setupAPI(t *testing.T, opts Options) (*API, func()) {
	t.Helper()

	dsn := fmt.Sprintf("file:handler-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	if err := gdb.AutoMigrate(&db.Operator{}, &db.Article{}, &db.Tag{}, &db.Comment{}); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(testOperatorPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	operator := db.Operator{Username: testOperatorName, Password: string(hash)}
	if err := gdb.Create(&operator).Error; err != nil {
		t.Fatalf("failed to seed operator: %v", err)
	}

	db.DB = gdb

	api := NewAPI(gdb, opts)
	return api, func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	}
}

// newTestEngine 注册与生产路由表相同的路由，但用内联模板替换磁盘上的模板文件
func newTestEngine(api *API) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	store := cookie.NewStore([]byte("test-secret"))
	r.Use(sessions.Sessions("molelog_session", store))

	tmpl := template.Must(template.New("login.html").Parse(`login:{{with .error}}{{.}}{{end}}`))
	template.Must(tmpl.New("article_home.html").Parse(
		`home:{{range .articles}}[{{.Title}}]{{end}}:flashes={{range .flashes}}({{.Kind}}|{{.Message}}){{end}}`))
	template.Must(tmpl.New("article_detail.html").Parse(
		`detail:{{.title}}:comments={{len .comments}}:flashes={{range .flashes}}({{.Kind}}|{{.Message}}){{end}}`))
	template.Must(tmpl.New("article_form.html").Parse(`form:{{with .error}}{{.}}{{end}}`))
	r.SetHTMLTemplate(tmpl)

	r.GET("/login", ShowLoginPage)
	r.POST("/login", Login)
	r.GET("/logout", Logout)

	r.GET("/", api.ShowHome)
	r.POST("/comments/new/", api.CreateComment)

	auth := r.Group("/", MaskWriteAsNotFound())
	auth.GET("/new/", api.ShowArticleNew)
	auth.POST("/new/", api.CreateArticle)
	auth.GET("/:slug/edit/", api.ShowArticleEdit)
	auth.POST("/:slug/edit/", api.UpdateArticle)
	auth.POST("/:slug/delete/", api.DeleteArticle)
	auth.POST("/tags/create/ajax/", api.CreateTagAjax)
	auth.POST("/api/uploader/", api.UploadMarkdownImage)

	r.GET("/:slug/", api.ShowDetail)
	return r
}

// loginCookies 用播种的运营者账号登录，返回会话 cookie
func loginCookies(t *testing.T, r *gin.Engine) []*http.Cookie {
	t.Helper()

	form := url.Values{"username": {testOperatorName}, "password": {testOperatorPassword}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusFound {
		t.Fatalf("login failed with status %d: %s", w.Code, w.Body.String())
	}
	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatalf("login did not set a session cookie")
	}
	return cookies
}

func postForm(r *gin.Engine, path string, form url.Values, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func getPath(r *gin.Engine, path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
