package tasks

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProfileExportTask(t *testing.T) {
	task, err := NewProfileExportTask(7, 42, "req-1")
	require.NoError(t, err)
	assert.Equal(t, TypeProfileExport, task.Type())

	var p ProfileExportPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &p))
	assert.Equal(t, ProfileExportPayload{ProfileID: 42, UserID: 7, CorrelationID: "req-1"}, p)
}
