package metrics

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
)

func TestTaskOutcome(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "success", TaskOutcome(ctx, nil))
	assert.Equal(t, "skipped", TaskOutcome(ctx, fmt.Errorf("bad payload: %w", asynq.SkipRetry)))
	// 没有重试元数据时按可重试处理。
	assert.Equal(t, "retry", TaskOutcome(ctx, errors.New("boom")))
}
