package queue

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteEvent(t *testing.T) {
	course := uint64(4)
	body, err := json.Marshal(NotificationCreatedEvent{
		SenderID:     1,
		CourseID:     &course,
		Scope:        "approved",
		RecipientIDs: []uint64{2, 3},
		Message:      "exam moved",
		CreatedAt:    time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	var sb strings.Builder
	require.NoError(t, writeEvent(&sb, body))
	line := sb.String()
	assert.Contains(t, line, "[2025-03-03T08:00:00Z]")
	assert.Contains(t, line, "course_id=4")
	assert.Contains(t, line, "recipients=[2,3]")
	assert.Contains(t, line, `message="exam moved"`)
	assert.True(t, strings.HasSuffix(line, "\n"))
}

func TestWriteEventRejectsGarbage(t *testing.T) {
	var sb strings.Builder
	assert.Error(t, writeEvent(&sb, []byte("{")))
	assert.Empty(t, sb.String())
}

func TestConsumerHandleAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "notifications.log")
	c := NewConsumer("amqp://unused", path, log.New("test"))
	body, _ := json.Marshal(NotificationCreatedEvent{SenderID: 1, RecipientIDs: []uint64{2}, Message: "a"})

	require.NoError(t, c.handle(body))
	require.NoError(t, c.handle(body))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "\n"))
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	require.NoError(t, r.PublishNotificationCreated(context.Background(), NotificationCreatedEvent{Message: "x"}))
	r.Fail = errors.New("down")
	assert.Error(t, r.PublishNotificationCreated(context.Background(), NotificationCreatedEvent{Message: "y"}))
	require.Len(t, r.Events(), 1)
	assert.Equal(t, "x", r.Events()[0].Message)
}
