package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cvbuilder/internal/database"
	"cvbuilder/internal/database/dbtest"
	"cvbuilder/internal/errcode"
	"cvbuilder/internal/export"
	"cvbuilder/internal/profile"
	"cvbuilder/internal/tasks"
)

type fakeExporter struct {
	res *export.Result
	err error
}

func (f fakeExporter) Build(context.Context, uint, uint) (*export.Result, error) {
	return f.res, f.err
}

type fakeUploader struct {
	keys   []string
	bodies [][]byte
	err    error
}

func (f *fakeUploader) UploadFile(_ context.Context, objectName string, reader io.Reader, _ int64, _ string) (*minio.UploadInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	f.keys = append(f.keys, objectName)
	f.bodies = append(f.bodies, body)
	return &minio.UploadInfo{Key: objectName}, nil
}

type fakeRecorder struct {
	keys map[uint]string
}

func (f *fakeRecorder) RecordArchivedExport(_ context.Context, profileID uint, key string) (*database.Profile, error) {
	f.keys[profileID] = key
	return &database.Profile{ID: profileID, LastExportKey: key}, nil
}

type fakeGenerator struct {
	err error
}

func (g fakeGenerator) Generate(context.Context, string) ([]byte, error) {
	if g.err != nil {
		return nil, g.err
	}
	return []byte("%PDF-1.7"), nil
}

func (fakeGenerator) Engine() string { return "fake" }

// newExportFixture 基于内存数据库组装真实的导出器。
func newExportFixture(t *testing.T, gen fakeGenerator) (*profile.Service, *export.Exporter, *asynq.Task, uint) {
	t.Helper()
	db := dbtest.New(t)
	userID := dbtest.SeedUser(t, db, "owner@example.com")
	svc := profile.NewService(db)
	p, err := svc.Create(context.Background(), userID, profile.CreateInput{Name: "Backend Engineer"})
	require.NoError(t, err)
	task, err := tasks.NewProfileExportTask(userID, p.ID, "req-db")
	require.NoError(t, err)
	return svc, export.New(svc, gen), task, p.ID
}

type fakePublisher struct {
	channels []string
	messages [][]byte
}

func (f *fakePublisher) Publish(_ context.Context, channel string, message any) *redis.IntCmd {
	f.channels = append(f.channels, channel)
	f.messages = append(f.messages, message.([]byte))
	return redis.NewIntResult(1, nil)
}

func newTask(t *testing.T) *asynq.Task {
	t.Helper()
	task, err := tasks.NewProfileExportTask(7, 42, "req-1")
	require.NoError(t, err)
	return task
}

func TestExportTask_UploadsAndNotifies(t *testing.T) {
	up := &fakeUploader{}
	rec := &fakeRecorder{keys: map[uint]string{}}
	pub := &fakePublisher{}
	h := NewExportTaskHandler(
		fakeExporter{res: &export.Result{PDF: []byte("%PDF"), FileName: "CV-ada-1.pdf"}},
		up, rec, pub, slog.New(slog.DiscardHandler),
	)

	require.NoError(t, h.ProcessTask(context.Background(), newTask(t)))

	assert.Equal(t, []string{"exports/7/42/CV-ada-1.pdf"}, up.keys)
	assert.Equal(t, []byte("%PDF"), up.bodies[0])
	assert.Equal(t, "exports/7/42/CV-ada-1.pdf", rec.keys[42])

	require.Equal(t, []string{"user_notify:7"}, pub.channels)
	var msg ExportNotifyMessage
	require.NoError(t, json.Unmarshal(pub.messages[0], &msg))
	assert.Equal(t, "completed", msg.Status)
	assert.Equal(t, uint(42), msg.ProfileID)
	assert.Equal(t, "req-1", msg.CorrelationID)
	assert.Equal(t, errcode.OK, msg.ErrorCode)
	assert.Equal(t, "CV-ada-1.pdf", msg.FileName)
}

func TestExportTask_MissingProfileIsDropped(t *testing.T) {
	up := &fakeUploader{}
	pub := &fakePublisher{}
	h := NewExportTaskHandler(fakeExporter{err: profile.ErrNotFound}, up, &fakeRecorder{keys: map[uint]string{}}, pub, slog.New(slog.DiscardHandler))

	require.NoError(t, h.ProcessTask(context.Background(), newTask(t)))
	assert.Empty(t, up.keys)
	assert.Empty(t, pub.channels)
}

func TestExportTask_GenerationFailureIsRetried(t *testing.T) {
	up := &fakeUploader{}
	pub := &fakePublisher{}
	failure := errors.Join(export.ErrPDFGeneration, errors.New("chrome exited"))
	h := NewExportTaskHandler(fakeExporter{err: failure}, up, &fakeRecorder{keys: map[uint]string{}}, pub, slog.New(slog.DiscardHandler))

	err := h.ProcessTask(context.Background(), newTask(t))
	require.ErrorIs(t, err, export.ErrPDFGeneration)
	assert.Empty(t, up.keys)
	// 非最后一次尝试，尚不发送失败通知。
	assert.Empty(t, pub.channels)
}

func TestExportTask_FailedUploadsNeverCountDownloads(t *testing.T) {
	svc, exporter, task, profileID := newExportFixture(t, fakeGenerator{})
	pub := &fakePublisher{}
	h := NewExportTaskHandler(exporter, &fakeUploader{err: errors.New("minio unavailable")}, svc, pub, slog.New(slog.DiscardHandler))

	// 首次执行加上 MaxRetry 次重试。
	for range tasks.ExportMaxRetry + 1 {
		require.Error(t, h.ProcessTask(context.Background(), task))
	}

	var stored database.Profile
	require.NoError(t, svc.DB().First(&stored, profileID).Error)
	assert.Zero(t, stored.DownloadCount)
	assert.Nil(t, stored.LastExportedAt)
	assert.Empty(t, stored.LastExportKey)
}

func TestExportTask_ArchivedExportCountedOnce(t *testing.T) {
	svc, exporter, task, profileID := newExportFixture(t, fakeGenerator{})
	up := &fakeUploader{}
	h := NewExportTaskHandler(exporter, up, svc, &fakePublisher{}, slog.New(slog.DiscardHandler))

	require.NoError(t, h.ProcessTask(context.Background(), task))

	var stored database.Profile
	require.NoError(t, svc.DB().First(&stored, profileID).Error)
	assert.Equal(t, 1, stored.DownloadCount)
	require.Len(t, up.keys, 1)
	assert.Equal(t, up.keys[0], stored.LastExportKey)
}

func TestExportTask_FinalFailureHidesCause(t *testing.T) {
	pub := &fakePublisher{}
	failure := fmt.Errorf("%w: %w", export.ErrPDFGeneration, errors.New("launch chromium: exec: /usr/bin/chromium: not found"))
	h := NewExportTaskHandler(fakeExporter{err: failure}, &fakeUploader{}, &fakeRecorder{keys: map[uint]string{}}, pub, slog.New(slog.DiscardHandler))
	h.isFinal = func(context.Context) bool { return true }

	require.ErrorIs(t, h.ProcessTask(context.Background(), newTask(t)), export.ErrPDFGeneration)

	require.Equal(t, []string{"user_notify:7"}, pub.channels)
	assert.False(t, strings.Contains(string(pub.messages[0]), "chromium"))
	var msg ExportNotifyMessage
	require.NoError(t, json.Unmarshal(pub.messages[0], &msg))
	assert.Equal(t, "error", msg.Status)
	assert.Equal(t, errcode.PDFGenerationFailed, msg.ErrorCode)
	assert.Equal(t, "PDF generation failed", msg.ErrorMessage)
}

func TestExportTask_FinalSystemFailureUsesGenericMessage(t *testing.T) {
	pub := &fakePublisher{}
	h := NewExportTaskHandler(
		fakeExporter{res: &export.Result{PDF: []byte("%PDF"), FileName: "CV-ada-1.pdf"}},
		&fakeUploader{err: errors.New("dial tcp 10.0.0.5:9000: connection refused")},
		&fakeRecorder{keys: map[uint]string{}}, pub, slog.New(slog.DiscardHandler),
	)
	h.isFinal = func(context.Context) bool { return true }

	require.Error(t, h.ProcessTask(context.Background(), newTask(t)))

	var msg ExportNotifyMessage
	require.Len(t, pub.messages, 1)
	require.NoError(t, json.Unmarshal(pub.messages[0], &msg))
	assert.Equal(t, errcode.SystemError, msg.ErrorCode)
	assert.Equal(t, "internal error", msg.ErrorMessage)
}
