package board

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/St1cky1/taskboard/internal/entity"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listSink struct {
	mu    sync.Mutex
	lists [][]entity.Task
	notes []Notification
}

func (s *listSink) onList(tasks []entity.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists = append(s.lists, tasks)
}

func (s *listSink) onNotify(n Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = append(s.notes, n)
}

func (s *listSink) last() []entity.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.lists) == 0 {
		return nil
	}
	return s.lists[len(s.lists)-1]
}

func (s *listSink) notifications() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Notification(nil), s.notes...)
}

func newTestStore(api TaskAPI) (*Store, *listSink, *test.Hook) {
	logger, hook := test.NewNullLogger()
	store := NewStore(api, logger)
	sink := &listSink{}
	store.Subscribe(sink.onList)
	store.OnNotification(sink.onNotify)
	return store, sink, hook
}

func TestStoreLoadPublishes(t *testing.T) {
	api := newFakeAPI(task("1", "A", entity.StatusTodo))
	store, sink, _ := newTestStore(api)

	require.NoError(t, store.Load(context.Background()))
	assert.Equal(t, []entity.Task{task("1", "A", entity.StatusTodo)}, sink.last())
	assert.Equal(t, sink.last(), store.Tasks())
}

func TestStoreMutationsRefetch(t *testing.T) {
	api := newFakeAPI(task("1", "A", entity.StatusTodo))
	store, sink, _ := newTestStore(api)

	store.Create("B", entity.StatusDone)
	store.Wait()
	require.Len(t, sink.last(), 2)

	store.Update(entity.UpdateTaskRequest{ID: "1", Status: statusPtr(entity.StatusInProgress)})
	store.Wait()
	for _, tk := range sink.last() {
		if tk.ID == "1" {
			assert.Equal(t, entity.StatusInProgress, tk.Status)
		}
	}

	store.Delete("1")
	store.Wait()
	require.Len(t, sink.last(), 1)
	assert.Equal(t, 3, api.listCount())
	assert.Empty(t, sink.notifications())
}

func TestStoreFailureNotifiesWithoutRetry(t *testing.T) {
	api := newFakeAPI(task("1", "A", entity.StatusTodo))
	api.failUpdate = errRemote
	store, sink, hook := newTestStore(api)

	store.Update(entity.UpdateTaskRequest{ID: "1", Status: statusPtr(entity.StatusDone)})
	store.Wait()

	notes := sink.notifications()
	require.Len(t, notes, 1)
	assert.Equal(t, OpUpdate, notes[0].Op)
	assert.Equal(t, "1", notes[0].TaskID)
	assert.Equal(t, "failed to update task", notes[0].Message)
	assert.Equal(t, errRemote.Error(), notes[0].Error)

	assert.Len(t, api.recordedUpdates(), 1)
	assert.Equal(t, 0, api.listCount())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

func TestStoreFailureMessages(t *testing.T) {
	api := newFakeAPI()
	api.failCreate = errRemote
	api.failDelete = errRemote
	api.failList = errRemote
	store, sink, _ := newTestStore(api)

	store.Create("x", entity.StatusTodo)
	store.Wait()
	store.Delete("9")
	store.Wait()
	assert.Error(t, store.Load(context.Background()))

	var messages []string
	for _, n := range sink.notifications() {
		messages = append(messages, n.Message)
	}
	assert.Equal(t, []string{"failed to create task", "failed to delete task", "failed to load tasks"}, messages)
}

func TestStoreDiscardsStaleFetch(t *testing.T) {
	api := newFakeAPI(task("1", "old", entity.StatusTodo))
	firstStarted := make(chan struct{})
	releaseFirst := make(chan struct{})
	api.listHook = func(call int) {
		if call == 1 {
			close(firstStarted)
			<-releaseFirst
		}
	}
	store, sink, _ := newTestStore(api)

	store.Refetch()
	<-firstStarted

	// вторая выборка видит уже новое состояние и применяется первой
	api.mu.Lock()
	api.tasks = []entity.Task{task("1", "new", entity.StatusDone)}
	api.mu.Unlock()
	store.Refetch()
	require.Eventually(t, func() bool { return len(sink.last()) == 1 && sink.last()[0].Title == "new" },
		time.Second, 5*time.Millisecond)

	close(releaseFirst)
	store.Wait()

	assert.Equal(t, "new", store.Tasks()[0].Title)
	assert.Equal(t, "new", sink.last()[0].Title)
}
