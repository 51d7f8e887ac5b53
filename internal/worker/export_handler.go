package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/minio/minio-go/v7"

	"cvbuilder/internal/database"
	"cvbuilder/internal/errcode"
	"cvbuilder/internal/export"
	"cvbuilder/internal/metrics"
	"cvbuilder/internal/profile"
	"cvbuilder/internal/storage"
	"cvbuilder/internal/tasks"
)

// Exporter 生成简历 PDF，不记为下载。
type Exporter interface {
	Build(ctx context.Context, userID, profileID uint) (*export.Result, error)
}

// Uploader 存储生成的文档。
type Uploader interface {
	UploadFile(ctx context.Context, objectName string, reader io.Reader, objectSize int64, contentType string) (*minio.UploadInfo, error)
}

// ExportRecorder 记录一次归档导出并保存其对象 key。
type ExportRecorder interface {
	RecordArchivedExport(ctx context.Context, profileID uint, key string) (*database.Profile, error)
}

// ExportTaskHandler 负责消费后台导出任务：生成 PDF、归档到对象存储并通知前端。
type ExportTaskHandler struct {
	exporter  Exporter
	uploader  Uploader
	profiles  ExportRecorder
	publisher Publisher
	logger    *slog.Logger
	// isFinal 判断当前是否为最后一次尝试，仅最后一次失败才通知前端。
	isFinal func(context.Context) bool
}

// NewExportTaskHandler 创建任务处理器。
func NewExportTaskHandler(
	exporter Exporter,
	uploader Uploader,
	profiles ExportRecorder,
	publisher Publisher,
	logger *slog.Logger,
) *ExportTaskHandler {
	return &ExportTaskHandler{
		exporter:  exporter,
		uploader:  uploader,
		profiles:  profiles,
		publisher: publisher,
		logger:    logger,
		isFinal:   isFinalAsynqAttempt,
	}
}

// ProcessTask 实现 asynq.Handler。
func (h *ExportTaskHandler) ProcessTask(ctx context.Context, t *asynq.Task) (retErr error) {
	log := h.logger

	var payload tasks.ProfileExportPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		log.Error("unmarshal task payload failed", slog.Any("error", err))
		return fmt.Errorf("%w: %w", asynq.SkipRetry, err)
	}

	log = log.With(
		slog.String("correlation_id", payload.CorrelationID),
		slog.Uint64("profile_id", uint64(payload.ProfileID)),
		slog.Uint64("user_id", uint64(payload.UserID)),
	)
	log.Info("starting profile export task")

	defer func() {
		if retErr == nil || !h.isFinal(ctx) {
			return
		}
		code := errcode.SystemError
		if errors.Is(retErr, export.ErrPDFGeneration) {
			code = errcode.PDFGenerationFailed
		}
		log.Error("profile export gave up", slog.Int("error_code", code), slog.Any("error", retErr))
		notify := ExportNotifyMessage{
			Status:        "error",
			ProfileID:     payload.ProfileID,
			CorrelationID: payload.CorrelationID,
			ErrorCode:     code,
			ErrorMessage:  errcode.Message(code),
		}
		if err := publishNotify(ctx, h.publisher, payload.UserID, notify); err != nil {
			log.Error("publish export error notification failed", slog.Any("error", err))
		}
	}()

	// 先归档再计数：任何一步失败都不会增加下载次数，重试也不会重复计数。
	res, err := h.exporter.Build(ctx, payload.UserID, payload.ProfileID)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			log.Warn("profile not found, skipping task")
			return nil
		}
		log.Error("export profile failed", slog.Any("error", err))
		return err
	}

	objectKey := storage.ExportKey(payload.UserID, payload.ProfileID, res.FileName)
	if _, err := h.uploader.UploadFile(ctx, objectKey, bytes.NewReader(res.PDF), int64(len(res.PDF)), "application/pdf"); err != nil {
		log.Error("upload pdf to minio failed", slog.Any("error", err))
		return err
	}
	if _, err := h.profiles.RecordArchivedExport(ctx, payload.ProfileID, objectKey); err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			log.Warn("profile deleted during export, dropping task", slog.String("object_key", objectKey))
			return nil
		}
		log.Error("record archived export failed", slog.Any("error", err))
		return err
	}
	metrics.CountDocument("async")

	notify := ExportNotifyMessage{
		Status:        "completed",
		ProfileID:     payload.ProfileID,
		CorrelationID: payload.CorrelationID,
		ErrorCode:     errcode.OK,
		FileName:      res.FileName,
		ObjectKey:     objectKey,
	}
	if err := publishNotify(ctx, h.publisher, payload.UserID, notify); err != nil {
		// 文档已归档，通知丢失不能触发第二次导出。
		log.Error("publish redis notification failed", slog.Any("error", err))
	}

	log.Info("profile export task completed", slog.String("object_key", objectKey))
	return nil
}

func isFinalAsynqAttempt(ctx context.Context) bool {
	retryCount, ok1 := asynq.GetRetryCount(ctx)
	maxRetry, ok2 := asynq.GetMaxRetry(ctx)
	if !ok1 || !ok2 {
		return false
	}
	return retryCount >= maxRetry
}
