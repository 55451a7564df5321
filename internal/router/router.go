package router

import (
	"html/template"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/molelog/internal/config"
	"github.com/molelog/internal/handler"
)

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, cfg config.AppConfig) *gin.Engine {
	r := gin.Default()

	// 配置会话中间件
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions("molelog_session", store))

	// 加载模板并添加自定义函数
	r.SetFuncMap(template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"sub": func(a, b int) int {
			return a - b
		},
		"gt": func(a, b int) bool {
			return a > b
		},
		"lt": func(a, b int) bool {
			return a < b
		},
	})
	r.LoadHTMLGlob(cfg.TemplateGlob)

	// 静态文件服务
	r.Static("/static", "./web/static")

	r.GET("/login", handler.ShowLoginPage)
	r.POST("/login", handler.Login)
	r.GET("/logout", handler.Logout)

	r.GET("/", api.ShowHome)
	r.POST("/comments/new/", api.CreateComment)

	// 写端点对匿名访客伪装成 404
	auth := r.Group("")
	auth.Use(handler.MaskWriteAsNotFound())
	{
		auth.GET("/new/", api.ShowArticleNew)
		auth.POST("/new/", api.CreateArticle)
		auth.GET("/:slug/edit/", api.ShowArticleEdit)
		auth.POST("/:slug/edit/", api.UpdateArticle)
		auth.POST("/:slug/delete/", api.DeleteArticle)
		auth.POST("/tags/create/ajax/", api.CreateTagAjax)
		auth.POST("/api/uploader/", api.UploadMarkdownImage)
	}

	r.GET("/:slug/", api.ShowDetail)

	return r
}
