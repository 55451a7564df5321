package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/molelog/internal/logger"
	"github.com/molelog/internal/service"
	"go.uber.org/zap"
)

// CreateTagAjax 即席创建标签并返回 {id, name}。仅限已登录运营者。
func (a *API) CreateTagAjax(c *gin.Context) {
	tag, err := a.tags.Create(c.PostForm("tag_name"))
	if err != nil {
		if fieldErr, ok := service.AsFieldError(err); ok {
			respondError(c, http.StatusBadRequest, fieldErr.Message)
			return
		}
		logger.Error("failed to create tag", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "failed to create tag")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":   tag.ID,
		"name": tag.Name,
	})
}
