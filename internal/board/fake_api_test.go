package board

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/St1cky1/taskboard/internal/entity"
)

type createCall struct {
	Title  string
	Status entity.TaskStatus
}

// fakeAPI - потокобезопасный TaskAPI в памяти
type fakeAPI struct {
	mu        sync.Mutex
	tasks     []entity.Task
	creates   []createCall
	updates   []entity.UpdateTaskRequest
	deletes   []string
	listCalls int
	nextID    int

	failCreate error
	failUpdate error
	failDelete error
	failList   error
	// listHook вызывается вне мьютекса с номером вызова List
	listHook func(call int)
}

func newFakeAPI(tasks ...entity.Task) *fakeAPI {
	return &fakeAPI{tasks: tasks, nextID: 100}
}

func (f *fakeAPI) List(ctx context.Context) ([]entity.Task, error) {
	f.mu.Lock()
	f.listCalls++
	call := f.listCalls
	hook := f.listHook
	err := f.failList
	out := make([]entity.Task, len(f.tasks))
	copy(out, f.tasks)
	f.mu.Unlock()

	// снимок состояния сделан до хука, как у медленного сервера
	if hook != nil {
		hook(call)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (f *fakeAPI) Create(ctx context.Context, title string, status entity.TaskStatus) (*entity.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates = append(f.creates, createCall{Title: title, Status: status})
	if f.failCreate != nil {
		return nil, f.failCreate
	}
	f.nextID++
	task := entity.Task{ID: strconv.Itoa(f.nextID), Title: title, Status: status}
	f.tasks = append([]entity.Task{task}, f.tasks...)
	return &task, nil
}

func (f *fakeAPI) Update(ctx context.Context, req entity.UpdateTaskRequest) (*entity.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, req)
	if f.failUpdate != nil {
		return nil, f.failUpdate
	}
	for i := range f.tasks {
		if f.tasks[i].ID == req.ID {
			if req.Title != nil {
				f.tasks[i].Title = *req.Title
			}
			if req.Status != nil {
				f.tasks[i].Status = *req.Status
			}
			task := f.tasks[i]
			return &task, nil
		}
	}
	return nil, entity.ErrTaskNotFound
}

func (f *fakeAPI) Delete(ctx context.Context, taskID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, taskID)
	if f.failDelete != nil {
		return f.failDelete
	}
	for i := range f.tasks {
		if f.tasks[i].ID == taskID {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return entity.ErrTaskNotFound
}

func (f *fakeAPI) recordedUpdates() []entity.UpdateTaskRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]entity.UpdateTaskRequest, len(f.updates))
	copy(out, f.updates)
	return out
}

func (f *fakeAPI) listCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

var errRemote = errors.New("connection refused")

// recorder - синхронный StatusUpdater и Mutator для тестов движка и форм
type recorder struct {
	mu      sync.Mutex
	creates []createCall
	updates []entity.UpdateTaskRequest
	deletes []string
}

func (r *recorder) Create(title string, status entity.TaskStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates = append(r.creates, createCall{Title: title, Status: status})
}

func (r *recorder) Update(req entity.UpdateTaskRequest) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, req)
}

func (r *recorder) Delete(taskID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deletes = append(r.deletes, taskID)
}

func task(id, title string, status entity.TaskStatus) entity.Task {
	return entity.Task{ID: id, Title: title, Status: status}
}

func statusPtr(s entity.TaskStatus) *entity.TaskStatus { return &s }
