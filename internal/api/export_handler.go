package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"slices"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"cvbuilder/internal/api/middleware"
	"cvbuilder/internal/export"
	"cvbuilder/internal/profile"
	"cvbuilder/internal/storage"
	"cvbuilder/internal/tasks"
)

const exportLinkExpiry = 10 * time.Minute

// TaskEnqueuer 是 asynq.Client 的入队能力。
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// ExportHandler 负责同步导出、预览、导出前检查、异步导出与归档下载。
type ExportHandler struct {
	exporter *export.Exporter
	profiles *profile.Service
	storage  ObjectStore
	queue    TaskEnqueuer
}

func NewExportHandler(exporter *export.Exporter, profiles *profile.Service, store ObjectStore, queue TaskEnqueuer) *ExportHandler {
	return &ExportHandler{exporter: exporter, profiles: profiles, storage: store, queue: queue}
}

// Export 生成 PDF 并以附件形式返回；只有成功时才累加下载次数。
func (h *ExportHandler) Export(c *gin.Context) {
	userID, profileID, ok := ownerAndProfile(c)
	if !ok {
		return
	}
	res, err := h.exporter.Export(c.Request.Context(), userID, profileID)
	if err != nil {
		respondError(c, err)
		return
	}
	writePDF(c, res, "attachment")
}

// Preview 生成同样的 PDF，但内联展示且不计数。
func (h *ExportHandler) Preview(c *gin.Context) {
	userID, profileID, ok := ownerAndProfile(c)
	if !ok {
		return
	}
	res, err := h.exporter.Preview(c.Request.Context(), userID, profileID)
	if err != nil {
		respondError(c, err)
		return
	}
	writePDF(c, res, "inline")
}

func writePDF(c *gin.Context, res *export.Result, disposition string) {
	c.Header("Content-Disposition", fmt.Sprintf(`%s; filename="%s"`, disposition, res.FileName))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "application/pdf", res.PDF)
}

// Validate 执行导出前的轻量检查，不调用渲染器。
func (h *ExportHandler) Validate(c *gin.Context) {
	userID, profileID, ok := ownerAndProfile(c)
	if !ok {
		return
	}
	p, err := h.profiles.GetFull(c.Request.Context(), userID, profileID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, export.ValidateForExport(p))
}

// ExportAsync 将导出任务入队并立即返回 202，结果通过 WebSocket 推送。
func (h *ExportHandler) ExportAsync(c *gin.Context) {
	userID, profileID, ok := ownerAndProfile(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if _, err := h.profiles.Get(ctx, userID, profileID); err != nil {
		respondError(c, err)
		return
	}

	correlationID := middleware.GetCorrelationID(c)
	task, err := tasks.NewProfileExportTask(userID, profileID, correlationID)
	if err != nil {
		Internal(c, "failed to create task")
		return
	}
	info, err := h.queue.EnqueueContext(ctx, task)
	if err != nil {
		middleware.LoggerFromContext(c).Error("enqueue export failed", slog.Any("error", err))
		Internal(c, "failed to enqueue export")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message":        "export request accepted",
		"task_id":        info.ID,
		"correlation_id": correlationID,
	})
}

// Link 返回最近一次归档导出的预签名下载链接。
func (h *ExportHandler) Link(c *gin.Context) {
	userID, profileID, ok := ownerAndProfile(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	p, err := h.profiles.Get(ctx, userID, profileID)
	if err != nil {
		respondError(c, err)
		return
	}
	if p.LastExportKey == "" || !storage.OwnsKey(userID, p.LastExportKey) {
		Conflict(c, "no archived export yet")
		return
	}

	url, err := h.storage.GeneratePresignedURLWithParams(ctx, p.LastExportKey, exportLinkExpiry, map[string]string{
		"response-content-disposition": fmt.Sprintf(`attachment; filename="%s"`, path.Base(p.LastExportKey)),
	})
	if err != nil {
		middleware.LoggerFromContext(c).Error("generate export url failed", slog.Any("error", err))
		Internal(c, "failed to generate url")
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url, "expiresIn": int(exportLinkExpiry.Seconds())})
}

// History 列出该简历的归档 PDF，最新的在前。
func (h *ExportHandler) History(c *gin.Context) {
	userID, profileID, ok := ownerAndProfile(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if _, err := h.profiles.Get(ctx, userID, profileID); err != nil {
		respondError(c, err)
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		limit = 20
	}
	limit = min(limit, 100)

	objects, err := h.storage.ListObjects(ctx, storage.ExportPrefix(userID, profileID), limit)
	if err != nil {
		middleware.LoggerFromContext(c).Error("list exports failed", slog.Any("error", err))
		Internal(c, "failed to list exports")
		return
	}
	slices.SortFunc(objects, func(a, b storage.ObjectMeta) int {
		return b.LastModified.Compare(a.LastModified)
	})

	items := make([]gin.H, 0, len(objects))
	for _, obj := range objects {
		items = append(items, gin.H{
			"objectKey":    obj.Key,
			"fileName":     path.Base(obj.Key),
			"size":         obj.Size,
			"lastModified": obj.LastModified,
		})
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
