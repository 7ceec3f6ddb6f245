package api_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/tasker-api/internal/api"
	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/mocks"
	"github.com/phrazzld/tasker-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type taskFixture struct {
	handler *api.TaskHandler
	users   *mocks.MockUserStore
	tasks   *mocks.MockTaskStore
}

func newTaskFixture(t *testing.T) *taskFixture {
	t.Helper()

	f := &taskFixture{users: mocks.NewMockUserStore(), tasks: mocks.NewMockTaskStore()}
	svc, err := service.NewTaskService(f.tasks, f.users, nil)
	require.NoError(t, err)
	f.handler = api.NewTaskHandler(svc)
	return f
}

func (f *taskFixture) create(t *testing.T, caller domain.Identity, req api.CreateTaskRequest) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	f.handler.CreateTask(rec, asCaller(newRequest(t, http.MethodPost, "/api/v1/tasks", req), caller))
	return rec
}

func (f *taskFixture) mustCreate(t *testing.T, caller domain.Identity, title, priority string) domain.Task {
	t.Helper()
	rec := f.create(t, caller, api.CreateTaskRequest{
		Title: title, Description: "about " + title, DueDate: "2026-12-31", Priority: priority,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var task domain.Task
	decodeData(t, decodeEnvelope(t, rec), &task)
	return task
}

func TestTaskHandler_Create(t *testing.T) {
	t.Parallel()

	f := newTaskFixture(t)
	alice := addUser(t, f.users, "Alice", "alice@example.com")

	t.Run("defaults and owner snapshot", func(t *testing.T) {
		rec := f.create(t, alice, api.CreateTaskRequest{
			Title: "  Write report ", Description: "Quarterly", DueDate: "2026-12-31",
		})

		require.Equal(t, http.StatusCreated, rec.Code)
		env := decodeEnvelope(t, rec)
		assert.Equal(t, "New Task created successfully!", env.Message)

		var task domain.Task
		decodeData(t, env, &task)
		assert.Equal(t, "Write report", task.Title)
		assert.Equal(t, domain.PriorityMedium, task.Priority)
		assert.Equal(t, domain.StatusPending, task.Status)
		assert.Equal(t, alice.UserID, task.Owner.ID)
		assert.Equal(t, "Alice", task.Owner.Name)
	})

	t.Run("priority is case insensitive", func(t *testing.T) {
		task := f.mustCreate(t, alice, "Ship", "HIGH")
		assert.Equal(t, domain.PriorityHigh, task.Priority)
	})

	t.Run("missing fields", func(t *testing.T) {
		rec := f.create(t, alice, api.CreateTaskRequest{})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		env := decodeEnvelope(t, rec)
		assert.Equal(t, api.MsgValidationFailed, env.Message)
		assert.Contains(t, env.Errors, "title")
		assert.Contains(t, env.Errors, "description")
		assert.Contains(t, env.Errors, "dueDate")
	})

	t.Run("bad priority and date", func(t *testing.T) {
		rec := f.create(t, alice, api.CreateTaskRequest{
			Title: "x", Description: "y", DueDate: "someday", Priority: "urgent",
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		env := decodeEnvelope(t, rec)
		assert.Contains(t, env.Errors, "priority")
		assert.Contains(t, env.Errors, "dueDate")
	})

	t.Run("caller without account", func(t *testing.T) {
		ghost := domain.Identity{UserID: uuid.New(), Email: "ghost@example.com"}
		rec := f.create(t, ghost, api.CreateTaskRequest{Title: "x", Description: "y", DueDate: "2026-01-01"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("no identity", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.handler.CreateTask(rec, newRequest(t, http.MethodPost, "/api/v1/tasks", api.CreateTaskRequest{}))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, api.MsgUnauthorized, decodeEnvelope(t, rec).Message)
	})
}

func TestTaskHandler_List(t *testing.T) {
	t.Parallel()

	f := newTaskFixture(t)
	alice := addUser(t, f.users, "Alice", "alice@example.com")
	bob := addUser(t, f.users, "Bob", "bob@example.com")
	for _, p := range []string{"low", "high", "high", "medium"} {
		f.mustCreate(t, alice, "alice "+p, p)
	}
	f.mustCreate(t, bob, "bob high", "high")

	list := func(t *testing.T, query string) (*httptest.ResponseRecorder, service.TaskList) {
		t.Helper()
		rec := httptest.NewRecorder()
		f.handler.ListTasks(rec, asCaller(newRequest(t, http.MethodGet, "/api/v1/tasks"+query, nil), alice))
		var out service.TaskList
		if rec.Code == http.StatusOK {
			decodeData(t, decodeEnvelope(t, rec), &out)
		}
		return rec, out
	}

	t.Run("only own tasks", func(t *testing.T) {
		rec, out := list(t, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, out.Tasks, 4)
		assert.Equal(t, domain.Pagination{Total: 4, Page: 1, Limit: domain.DefaultLimit, TotalPages: 1}, out.Pagination)
		for _, task := range out.Tasks {
			assert.Equal(t, alice.UserID, task.Owner.ID)
		}
	})

	t.Run("filter and paginate", func(t *testing.T) {
		rec, out := list(t, "?priority=HIGH&page=2&limit=1")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, out.Tasks, 1)
		assert.Equal(t, domain.Pagination{Total: 2, Page: 2, Limit: 1, TotalPages: 2}, out.Pagination)
	})

	t.Run("page past end is empty", func(t *testing.T) {
		rec, out := list(t, "?page=9")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotNil(t, out.Tasks)
		assert.Empty(t, out.Tasks)
		assert.Contains(t, rec.Body.String(), `"tasks":[]`)
	})

	t.Run("invalid filters", func(t *testing.T) {
		rec, _ := list(t, "?priority=urgent")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, api.MsgInvalidPriority, decodeEnvelope(t, rec).Message)

		rec, _ = list(t, "?status=archived")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, api.MsgInvalidStatus, decodeEnvelope(t, rec).Message)
	})
}

func TestTaskHandler_GetUpdateDelete(t *testing.T) {
	t.Parallel()

	f := newTaskFixture(t)
	alice := addUser(t, f.users, "Alice", "alice@example.com")
	bob := addUser(t, f.users, "Bob", "bob@example.com")
	task := f.mustCreate(t, alice, "Plan", "low")

	get := func(caller domain.Identity, id string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := withURLParam(asCaller(newRequest(t, http.MethodGet, "/api/v1/tasks/"+id, nil), caller), "id", id)
		f.handler.GetTask(rec, req)
		return rec
	}
	update := func(caller domain.Identity, id string, body any) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := withURLParam(asCaller(newRequest(t, http.MethodPut, "/api/v1/tasks/"+id, body), caller), "id", id)
		f.handler.UpdateTask(rec, req)
		return rec
	}
	remove := func(caller domain.Identity, id string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := withURLParam(asCaller(newRequest(t, http.MethodDelete, "/api/v1/tasks/"+id, nil), caller), "id", id)
		f.handler.DeleteTask(rec, req)
		return rec
	}

	t.Run("get", func(t *testing.T) {
		rec := get(alice, task.ID.String())
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Single Task retrieved successfully!", decodeEnvelope(t, rec).Message)

		rec = get(bob, task.ID.String())
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, api.MsgTaskForbidden, decodeEnvelope(t, rec).Message)

		rec = get(alice, uuid.NewString())
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, api.MsgTaskNotFound, decodeEnvelope(t, rec).Message)

		rec = get(alice, "not-a-uuid")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, api.MsgInvalidTaskID, decodeEnvelope(t, rec).Message)
	})

	t.Run("update", func(t *testing.T) {
		rec := update(bob, task.ID.String(), map[string]string{"status": "completed"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, api.MsgUpdateNotAllowed, decodeEnvelope(t, rec).Message)

		rec = update(alice, task.ID.String(), map[string]string{"status": "COMPLETED", "title": "Plan v2"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		env := decodeEnvelope(t, rec)
		assert.Equal(t, "Single Task updated successfully!", env.Message)

		var updated domain.Task
		decodeData(t, env, &updated)
		assert.Equal(t, "Plan v2", updated.Title)
		assert.Equal(t, domain.StatusCompleted, updated.Status)
		assert.Equal(t, domain.PriorityLow, updated.Priority)
		assert.Equal(t, alice.UserID, updated.Owner.ID)

		rec = update(alice, task.ID.String(), map[string]string{"status": "archived"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decodeEnvelope(t, rec).Errors, "status")

		rec = update(alice, uuid.NewString(), map[string]string{"title": "x"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("delete", func(t *testing.T) {
		rec := remove(bob, task.ID.String())
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, api.MsgDeleteNotAllowed, decodeEnvelope(t, rec).Message)
		assert.Equal(t, 1, f.tasks.Count())

		rec = remove(alice, task.ID.String())
		require.Equal(t, http.StatusOK, rec.Code)
		env := decodeEnvelope(t, rec)
		assert.Equal(t, "Single Task deleted successfully!", env.Message)
		assert.Equal(t, "null", string(env.Data))
		assert.Zero(t, f.tasks.Count())

		rec = remove(alice, task.ID.String())
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
