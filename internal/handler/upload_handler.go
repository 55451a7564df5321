package handler

import (
	"fmt"
	"image"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	// 上传探测支持的光栅格式解码器
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/molelog/internal/logger"
	"go.uber.org/zap"
)

// allowedImageTypes 是 markdown 图片上传的 Content-Type 白名单
var allowedImageTypes = map[string]struct{}{
	"image/png":   {},
	"image/jpg":   {},
	"image/jpeg":  {},
	"image/pjpeg": {},
	"image/gif":   {},
	"image/webp":  {},
}

// UploadMarkdownImage 处理 markdown 编辑器的图片上传。
// 图片保存在按文章分目录的路径下，返回 {status, link, name}。
func (a *API) UploadMarkdownImage(c *gin.Context) {
	title := strings.TrimSpace(c.PostForm("title"))
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"status": http.StatusBadRequest, "error": "invalid request"})
		return
	}

	file, err := c.FormFile("markdown-image-upload")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": http.StatusBadRequest, "error": "invalid request"})
		return
	}

	contentType := file.Header.Get("Content-Type")
	if _, ok := allowedImageTypes[contentType]; !ok {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"status": http.StatusMethodNotAllowed, "error": "Bad image format."})
		return
	}

	if file.Size > a.maxUpload {
		toMB := float64(a.maxUpload) / (1 << 20)
		c.JSON(http.StatusMethodNotAllowed, gin.H{
			"status": http.StatusMethodNotAllowed,
			"error":  fmt.Sprintf("Maximum image file is %.0f MB.", toMB),
		})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": http.StatusInternalServerError, "error": "failed to read image"})
		return
	}
	defer src.Close()

	// 解码探测：Content-Type 声称的格式必须真的解得出尺寸
	if _, _, err := image.DecodeConfig(src); err != nil {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"status": http.StatusMethodNotAllowed, "error": "Bad image format."})
		return
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": http.StatusInternalServerError, "error": "failed to read image"})
		return
	}

	name := strings.ReplaceAll(filepath.Base(file.Filename), " ", "-")
	name = fmt.Sprintf("%s-%s", strings.ReplaceAll(uuid.New().String(), "-", "")[:10], name)
	path := fmt.Sprintf("article/%s/markdown/%s", title, name)

	link, err := a.images.Save(src, path)
	if err != nil {
		logger.Error("failed to store markdown image", zap.String("path", path), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"status": http.StatusInternalServerError, "error": "failed to store image"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": http.StatusOK,
		"link":   link,
		"name":   name,
	})
}
