package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// 任务类型常量，确保队列生产者与消费者一致。
const (
	TypeProfileExport = "profile:export"
)

// ExportMaxRetry 导出失败的重试上限，只在最后一次尝试失败时
// 通知用户。
const ExportMaxRetry = 3

// ProfileExportPayload 描述后台导出 PDF 所需的最小信息。
type ProfileExportPayload struct {
	ProfileID     uint   `json:"profile_id"`
	UserID        uint   `json:"user_id"`
	CorrelationID string `json:"correlation_id"`
}

// NewProfileExportTask 构造一个新的简历导出任务。
func NewProfileExportTask(userID, profileID uint, correlationID string) (*asynq.Task, error) {
	payload, err := json.Marshal(ProfileExportPayload{
		ProfileID:     profileID,
		UserID:        userID,
		CorrelationID: correlationID,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeProfileExport, payload, asynq.MaxRetry(ExportMaxRetry)), nil
}
