package handler

import (
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	flashSuccess = "success"
	flashError   = "error"
)

// Flash 是一条跨重定向传递的用户提示
type Flash struct {
	Kind    string
	Message string
}

func addFlash(c *gin.Context, kind, message string) {
	session := sessions.Default(c)
	session.AddFlash(kind + "|" + message)
	_ = session.Save()
}

// takeFlashes 取出并清空当前会话中的全部提示
func takeFlashes(c *gin.Context) []Flash {
	session := sessions.Default(c)
	raw := session.Flashes()
	if len(raw) > 0 {
		_ = session.Save()
	}

	flashes := make([]Flash, 0, len(raw))
	for _, item := range raw {
		text, ok := item.(string)
		if !ok {
			continue
		}
		kind, message, found := strings.Cut(text, "|")
		if !found {
			kind, message = flashError, text
		}
		flashes = append(flashes, Flash{Kind: kind, Message: message})
	}
	return flashes
}
