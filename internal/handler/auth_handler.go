package handler

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/molelog/internal/db"
	"golang.org/x/crypto/bcrypt"
)

const (
	sessionOperatorIDKey = "operator_id"
	sessionUsernameKey   = "username"
)

// ShowLoginPage 渲染登录页面
func ShowLoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{
		"title": "ログイン",
	})
}

// Login 处理运营者登录请求
func Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	// 查找运营者账号
	var operator db.Operator
	if err := db.DB.Where("username = ?", username).First(&operator).Error; err != nil {
		c.HTML(http.StatusUnauthorized, "login.html", gin.H{"title": "ログイン", "error": "ユーザー名またはパスワードが正しくありません"})
		return
	}

	// 验证密码
	if err := bcrypt.CompareHashAndPassword([]byte(operator.Password), []byte(password)); err != nil {
		c.HTML(http.StatusUnauthorized, "login.html", gin.H{"title": "ログイン", "error": "ユーザー名またはパスワードが正しくありません"})
		return
	}

	// 设置会话
	session := sessions.Default(c)
	session.Set(sessionOperatorIDKey, operator.ID)
	session.Set(sessionUsernameKey, operator.Username)
	if err := session.Save(); err != nil {
		c.HTML(http.StatusInternalServerError, "login.html", gin.H{"title": "ログイン", "error": "セッションの保存に失敗しました"})
		return
	}

	c.Redirect(http.StatusFound, "/")
}

// Logout 处理运营者登出
func Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()
	c.Redirect(http.StatusFound, "/")
}

// IsAuthenticated 判断当前请求是否来自已登录运营者
func IsAuthenticated(c *gin.Context) bool {
	session := sessions.Default(c)
	return session.Get(sessionOperatorIDKey) != nil
}

// CurrentOperatorID returns the logged-in operator's id, or 0 when anonymous.
func CurrentOperatorID(c *gin.Context) uint {
	session := sessions.Default(c)
	if id, ok := session.Get(sessionOperatorIDKey).(uint); ok {
		return id
	}
	return 0
}

// MaskWriteAsNotFound 保护写端点的中间件：匿名访问一律返回 404，
// 而不是 403 或跳转登录，不暴露写端点的存在。
func MaskWriteAsNotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAuthenticated(c) {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		c.Next()
	}
}
