package api

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/dutchcoders/go-clamd"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"

	"portify/internal/api/middleware"
)

// ObjectStorage is the slice of the media store the upload path needs.
type ObjectStorage interface {
	UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (*minio.UploadInfo, error)
	PublicURL(objectKey string) string
}

var imageMIMEWhitelist = []string{"image/png", "image/jpeg", "image/webp", "image/gif"}

// AssetHandler uploads profile pictures, logos and banners to the media
// store and hands back the stable public URL the profile embeds.
type AssetHandler struct {
	Storage          ObjectStorage
	Logger           *slog.Logger
	ClamdAddr        string
	MaxBytes         int64
	Redis            redisRateCounter
	MaxUploadsPerDay int
}

// NewAssetHandler returns an AssetHandler instance.
func NewAssetHandler(storage ObjectStorage, logger *slog.Logger, clamdAddr string, maxBytes int64, redisClient redisRateCounter, maxUploadsPerDay int) *AssetHandler {
	return &AssetHandler{
		Storage:          storage,
		Logger:           logger,
		ClamdAddr:        clamdAddr,
		MaxBytes:         maxBytes,
		Redis:            redisClient,
		MaxUploadsPerDay: maxUploadsPerDay,
	}
}

// UploadAsset handles an authenticated image upload, scanning it before it
// is stored when a clamd address is configured.
func (h *AssetHandler) UploadAsset(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "missing file")
		return
	}

	if h.MaxBytes > 0 && file.Size > h.MaxBytes {
		BadRequest(c, fmt.Sprintf("file exceeds %d bytes", h.MaxBytes))
		return
	}

	contentType := file.Header.Get("Content-Type")
	if !mimeAllowed(contentType) {
		BadRequest(c, "unsupported file type")
		return
	}

	if h.Redis != nil && h.MaxUploadsPerDay > 0 {
		key := "assets:uploads:" + userID + ":" + time.Now().UTC().Format("2006-01-02")
		count, err := incrWithTTL(c.Request.Context(), h.Redis, key, 24*time.Hour)
		if err == nil && count > int64(h.MaxUploadsPerDay) {
			Forbidden(c, "daily upload limit reached")
			return
		}
	}

	if h.ClamdAddr != "" {
		clean, err := h.scanUpload(file)
		if err != nil {
			h.Logger.Error("scan file", slog.String("error", err.Error()))
			Internal(c, "failed to scan file")
			return
		}
		if !clean {
			BadRequest(c, "malicious file detected")
			return
		}
	}

	fileReader, err := file.Open()
	if err != nil {
		Internal(c, "failed to open file")
		return
	}
	defer fileReader.Close()

	ext := strings.ToLower(path.Ext(file.Filename))
	if ext == "" {
		ext = ".png"
	}
	objectKey := fmt.Sprintf("media/%s/%s%s", userID, uuid.NewString(), ext)

	if _, err := h.Storage.UploadFile(c.Request.Context(), objectKey, fileReader, file.Size, contentType); err != nil {
		h.Logger.Error("upload file", slog.String("error", err.Error()))
		Internal(c, "failed to upload file")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"objectKey": objectKey,
		"url":       h.Storage.PublicURL(objectKey),
	})
}

func (h *AssetHandler) scanUpload(file *multipart.FileHeader) (bool, error) {
	fileReader, err := file.Open()
	if err != nil {
		return false, err
	}

	clamdClient := clamd.NewClamd(h.ClamdAddr)
	abortChan := make(chan bool)
	scanChan, err := clamdClient.ScanStream(fileReader, abortChan)
	fileReader.Close()
	if err != nil {
		return false, err
	}
	defer close(abortChan)

	for result := range scanChan {
		if result.Status != clamd.RES_OK {
			return false, nil
		}
	}
	return true, nil
}

func mimeAllowed(contentType string) bool {
	for _, allowed := range imageMIMEWhitelist {
		if strings.EqualFold(contentType, allowed) {
			return true
		}
	}
	return false
}
