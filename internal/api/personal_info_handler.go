package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dutchcoders/go-clamd"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"cvbuilder/internal/api/middleware"
	"cvbuilder/internal/database"
	"cvbuilder/internal/profile"
	"cvbuilder/internal/storage"
)

const (
	maxPhotoBytes  = 5 << 20
	photoURLExpiry = 15 * time.Minute
)

// photoExtensions 是允许的头像类型（按内容嗅探，不信任客户端声明）。
var photoExtensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/webp": "webp",
}

var errMalicious = errors.New("malicious file detected")

// Scanner 扫描上传内容；返回 errMalicious 表示命中病毒特征。
type Scanner interface {
	Scan(r io.Reader) error
}

// ClamdScanner 通过 clamd 的 INSTREAM 扫描。
type ClamdScanner struct {
	Addr string
}

func (s ClamdScanner) Scan(r io.Reader) error {
	abort := make(chan bool)
	defer close(abort)
	results, err := clamd.NewClamd(s.Addr).ScanStream(r, abort)
	if err != nil {
		return fmt.Errorf("scan stream: %w", err)
	}
	for result := range results {
		switch result.Status {
		case clamd.RES_OK:
		case clamd.RES_FOUND:
			return errMalicious
		default:
			return fmt.Errorf("clamd: %s", result.Description)
		}
	}
	return nil
}

// PersonalInfoHandler 负责个人信息与头像。
type PersonalInfoHandler struct {
	profiles *profile.Service
	storage  ObjectStore
	scanner  Scanner
}

// NewPersonalInfoHandler 构造处理器；scanner 为 nil 时跳过病毒扫描。
func NewPersonalInfoHandler(profiles *profile.Service, store ObjectStore, scanner Scanner) *PersonalInfoHandler {
	return &PersonalInfoHandler{profiles: profiles, storage: store, scanner: scanner}
}

// Get 返回个人信息。
func (h *PersonalInfoHandler) Get(c *gin.Context) {
	userID, profileID, ok := ownerAndProfile(c)
	if !ok {
		return
	}
	pi, err := h.profiles.PersonalInfo(c.Request.Context(), userID, profileID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pi)
}

// Upsert 创建或部分更新个人信息；请求体中未出现的字段保持原值。
func (h *PersonalInfoHandler) Upsert(c *gin.Context) {
	userID, profileID, ok := ownerAndProfile(c)
	if !ok {
		return
	}
	body, ok := readBody(c)
	if !ok {
		return
	}
	pi, err := h.profiles.UpsertPersonalInfo(c.Request.Context(), userID, profileID, func(pi *database.PersonalInfo) error {
		return decodeOnto(body, pi)
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pi)
}

// Completion 返回个人信息十个字段的填写比例。
func (h *PersonalInfoHandler) Completion(c *gin.Context) {
	userID, profileID, ok := ownerAndProfile(c)
	if !ok {
		return
	}
	pct, err := h.profiles.PersonalInfoCompletion(c.Request.Context(), userID, profileID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"percentage": pct})
}

// UploadPhoto 接收头像：限制大小、嗅探类型、可选病毒扫描，然后写入 MinIO。
func (h *PersonalInfoHandler) UploadPhoto(c *gin.Context) {
	userID, profileID, ok := ownerAndProfile(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	logger := middleware.LoggerFromContext(c)

	// 先确认归属，避免替他人上传无主对象。
	if _, err := h.profiles.Get(ctx, userID, profileID); err != nil {
		respondError(c, err)
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "missing file")
		return
	}
	if file.Size > maxPhotoBytes {
		Error(c, http.StatusRequestEntityTooLarge, "file too large")
		return
	}
	f, err := file.Open()
	if err != nil {
		Internal(c, "failed to open file")
		return
	}
	data, err := io.ReadAll(io.LimitReader(f, maxPhotoBytes+1))
	f.Close()
	if err != nil {
		Internal(c, "failed to read file")
		return
	}
	if len(data) > maxPhotoBytes {
		Error(c, http.StatusRequestEntityTooLarge, "file too large")
		return
	}

	contentType := http.DetectContentType(data)
	ext, allowed := photoExtensions[contentType]
	if !allowed {
		BadRequest(c, "unsupported image type")
		return
	}

	if h.scanner != nil {
		if err := h.scanner.Scan(bytes.NewReader(data)); err != nil {
			if errors.Is(err, errMalicious) {
				BadRequest(c, errMalicious.Error())
				return
			}
			logger.Error("scan file failed", slog.Any("error", err))
			Internal(c, "failed to scan file")
			return
		}
	}

	objectKey := storage.PhotoKey(userID, uuid.NewString(), ext)
	if _, err := h.storage.UploadFile(ctx, objectKey, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		logger.Error("upload photo failed", slog.Any("error", err))
		Internal(c, "failed to upload file")
		return
	}

	previous, err := h.profiles.SetPhotoKey(ctx, userID, profileID, objectKey)
	if err != nil {
		_ = h.storage.DeleteObject(ctx, objectKey)
		respondError(c, err)
		return
	}
	if previous != "" && previous != objectKey {
		if err := h.storage.DeleteObject(ctx, previous); err != nil {
			logger.Warn("delete previous photo failed", slog.String("key", previous), slog.Any("error", err))
		}
	}

	c.JSON(http.StatusCreated, gin.H{"objectKey": objectKey})
}

// PhotoURL 返回头像的临时预签名 URL。
func (h *PersonalInfoHandler) PhotoURL(c *gin.Context) {
	userID, profileID, ok := ownerAndProfile(c)
	if !ok {
		return
	}
	pi, err := h.profiles.PersonalInfo(c.Request.Context(), userID, profileID)
	if err != nil {
		respondError(c, err)
		return
	}
	if pi.PhotoKey == "" || !storage.OwnsKey(userID, pi.PhotoKey) {
		NotFound(c, "photo not found")
		return
	}
	url, err := h.storage.GeneratePresignedURL(c.Request.Context(), pi.PhotoKey, photoURLExpiry)
	if err != nil {
		middleware.LoggerFromContext(c).Error("generate presigned url failed", slog.Any("error", err))
		Internal(c, "failed to generate url")
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url, "expiresIn": int(photoURLExpiry.Seconds())})
}

func readBody(c *gin.Context) ([]byte, bool) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		BadRequest(c, "invalid request body")
		return nil, false
	}
	if len(bytes.TrimSpace(body)) == 0 {
		body = []byte("{}")
	}
	return body, true
}

// decodeOnto 把 JSON 覆盖到已有实体上，实现 PATCH 语义。
func decodeOnto(body []byte, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(dst); err != nil {
		msg := strings.TrimPrefix(err.Error(), "json: ")
		return &profile.ValidationError{Field: "body", Message: msg}
	}
	return nil
}
