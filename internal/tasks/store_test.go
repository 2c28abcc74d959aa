package tasks

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clipperai/models"
)

func TestCreateAndGet(t *testing.T) {
	s := NewStore()
	id := s.Create()
	require.NotEmpty(t, id)

	task, ok := s.Get(id)
	require.True(t, ok)
	assert.Equal(t, id, task.ID)
	assert.Equal(t, models.StatusStarting, task.Status)
	assert.Equal(t, float64(0), task.Progress)
	assert.Equal(t, "Initializing...", task.Message)
}

func TestGetUnknown(t *testing.T) {
	s := NewStore()
	_, ok := s.Get("nope")
	assert.False(t, ok)
}

func TestProgressIsMonotonic(t *testing.T) {
	s := NewStore()
	id := s.Create()

	s.SetProgress(id, 50, "halfway")
	s.SetProgress(id, 30, "stale update")

	task, _ := s.Get(id)
	assert.Equal(t, float64(50), task.Progress)
	// The message still moves; only progress is pinned.
	assert.Equal(t, "stale update", task.Message)
}

func TestStageTransition(t *testing.T) {
	s := NewStore()
	id := s.Create()

	s.SetStage(id, models.StatusDownloading, 0, "Starting download...")
	s.SetProgress(id, 12, "Downloading... 12.0%")
	s.SetStage(id, models.StatusTranscribing, 35, "Preparing for transcription...")

	task, _ := s.Get(id)
	assert.Equal(t, models.StatusTranscribing, task.Status)
	assert.Equal(t, float64(35), task.Progress)
}

func TestTerminalTasksRejectWrites(t *testing.T) {
	s := NewStore()
	id := s.Create()

	s.Fail(id, "something broke")
	s.SetProgress(id, 90, "zombie update")
	s.SetStage(id, models.StatusClipping, 85, "zombie stage")
	s.Complete(id, &models.ClipResult{})

	task, _ := s.Get(id)
	assert.Equal(t, models.StatusError, task.Status)
	assert.Equal(t, "something broke", task.Message)
	assert.Nil(t, task.Result)
}

func TestComplete(t *testing.T) {
	s := NewStore()
	id := s.Create()

	result := &models.ClipResult{VideoTitle: "demo"}
	s.Complete(id, result)

	task, _ := s.Get(id)
	assert.Equal(t, models.StatusCompleted, task.Status)
	assert.Equal(t, float64(100), task.Progress)
	require.NotNil(t, task.Result)
	assert.Equal(t, "demo", task.Result.VideoTitle)
}

func TestEvictTerminalBefore(t *testing.T) {
	s := NewStore()
	done := s.Create()
	running := s.Create()
	s.Complete(done, &models.ClipResult{})

	n := s.EvictTerminalBefore(time.Now().Add(time.Second))
	assert.Equal(t, 1, n)

	_, ok := s.Get(done)
	assert.False(t, ok)
	_, ok = s.Get(running)
	assert.True(t, ok, "non-terminal tasks are never evicted")
	assert.Equal(t, 1, s.Len())
}

func TestEvictRespectsRetention(t *testing.T) {
	s := NewStore()
	done := s.Create()
	s.Fail(done, "boom")

	// A terminal task inside the retention window stays queryable.
	n := s.EvictTerminalBefore(time.Now().Add(-time.Hour))
	assert.Equal(t, 0, n)
	_, ok := s.Get(done)
	assert.True(t, ok)
}

func TestConcurrentAccess(t *testing.T) {
	s := NewStore()
	id := s.Create()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			s.SetProgress(id, float64(n), fmt.Sprintf("update %d", n))
		}(i)
		go func() {
			defer wg.Done()
			task, ok := s.Get(id)
			assert.True(t, ok)
			assert.Equal(t, id, task.ID)
		}()
	}
	wg.Wait()

	task, _ := s.Get(id)
	assert.Equal(t, float64(19), task.Progress)
}
