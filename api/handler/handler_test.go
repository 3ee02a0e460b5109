package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/fasthttp/router"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/fastygo/taskguard/domain"
	"github.com/fastygo/taskguard/internal/audit"
	"github.com/fastygo/taskguard/internal/infrastructure/monitor"
	"github.com/fastygo/taskguard/internal/middleware"
	"github.com/fastygo/taskguard/pkg/httpcontext"
	"github.com/fastygo/taskguard/repository/memory"
	auditUC "github.com/fastygo/taskguard/usecase/auditlog"
	profileUC "github.com/fastygo/taskguard/usecase/profile"
	taskUC "github.com/fastygo/taskguard/usecase/task"
)

const (
	testSecret = "handler-secret"
	testIssuer = "taskguard"
)

var (
	admin    = domain.User{ID: "10", Email: "admin@demo.com", Name: "Admin", Role: domain.RoleAdmin, OrganizationID: "1"}
	itOwner  = domain.User{ID: "20", Email: "owner@it.com", Name: "IT Owner", Role: domain.RoleOwner, OrganizationID: "2"}
	itViewer = domain.User{ID: "21", Email: "viewer@it.com", Name: "IT Viewer", Role: domain.RoleViewer, OrganizationID: "2"}
	hrOwner  = domain.User{ID: "30", Email: "owner@hr.com", Name: "HR Owner", Role: domain.RoleOwner, OrganizationID: "3"}

	// No name on record.
	itContractor = domain.User{ID: "22", Email: "contractor@it.com", Role: domain.RoleViewer, OrganizationID: "2"}
)

type staticStatus monitor.Status

func (s staticStatus) GetStatus() monitor.Status { return monitor.Status(s) }

type api struct {
	handler fasthttp.RequestHandler
	log     *audit.Log
	store   *memory.TaskStore
}

func newAPI(t *testing.T) *api {
	t.Helper()
	dir := memory.NewDirectory()
	dir.AddOrganization(domain.Organization{ID: "1", Name: "Head Office"})
	dir.AddOrganization(domain.Organization{ID: "2", Name: "IT", ParentID: "1"})
	dir.AddOrganization(domain.Organization{ID: "3", Name: "HR", ParentID: "1"})
	for _, u := range []domain.User{admin, itOwner, itViewer, hrOwner, itContractor} {
		dir.AddUser(u)
	}

	log := audit.NewLog(audit.DefaultCapacity, nil)
	store := memory.NewTaskStore()
	adapter := httpcontext.NewAdapter(time.Second)
	tasks := NewTaskHandler(taskUC.New(store, dir, log, nil), adapter, nil)
	audits := NewAuditHandler(auditUC.New(log, nil, nil), adapter, nil)
	profiles := NewProfileHandler(profileUC.New(dir, nil), adapter, nil)
	health := NewHealthHandler(staticStatus{PostgreSQL: true, Redis: true}, adapter, nil)

	auth := middleware.JWTAuth(testSecret, testIssuer, nil)
	r := router.New()
	r.GET("/health", health.Check)
	r.GET("/api/v1/profile", auth(profiles.GetProfile))
	r.GET("/api/v1/audit-log", auth(audits.GetAuditLog))
	r.GET("/api/v1/tasks", auth(tasks.GetTasks))
	r.POST("/api/v1/tasks", auth(tasks.CreateTask))
	r.PUT("/api/v1/tasks/{id}", auth(tasks.UpdateTask))
	r.PATCH("/api/v1/tasks/{id}/status", auth(tasks.UpdateTaskStatus))
	r.DELETE("/api/v1/tasks/{id}", auth(tasks.DeleteTask))

	return &api{handler: r.Handler, log: log, store: store}
}

func tokenFor(t *testing.T, u domain.User) string {
	t.Helper()
	claims := middleware.ActorClaims{
		Email: u.Email,
		Role:  u.Role.String(),
		OrgID: u.OrganizationID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			Issuer:    testIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

type response struct {
	Status string          `json:"status"`
	Code   string          `json:"code"`
	Data   json.RawMessage `json:"data"`
	Error  string          `json:"error"`
	Meta   struct {
		Count int `json:"count"`
	} `json:"meta"`
}

func (a *api) do(t *testing.T, method, path string, as *domain.User, body string) (int, response) {
	t.Helper()
	var ctx fasthttp.RequestCtx
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(path)
	if as != nil {
		ctx.Request.Header.Set("Authorization", "Bearer "+tokenFor(t, *as))
	}
	if body != "" {
		ctx.Request.Header.SetContentType("application/json")
		ctx.Request.SetBodyString(body)
	}
	a.handler(&ctx)

	var resp response
	if raw := ctx.Response.Body(); len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &resp))
	}
	return ctx.Response.StatusCode(), resp
}

func (a *api) create(t *testing.T, as domain.User, body string) domain.Task {
	t.Helper()
	status, resp := a.do(t, fasthttp.MethodPost, "/api/v1/tasks", &as, body)
	require.Equal(t, http.StatusCreated, status, resp.Error)
	var task domain.Task
	require.NoError(t, json.Unmarshal(resp.Data, &task))
	return task
}

func TestRequiresToken(t *testing.T) {
	a := newAPI(t)
	status, resp := a.do(t, fasthttp.MethodGet, "/api/v1/tasks", nil, "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", resp.Code)
}

func TestCreateAndList(t *testing.T) {
	a := newAPI(t)
	created := a.create(t, itOwner, `{"title":"Patch servers","category":"ops","assigneeId":"21"}`)
	assert.Equal(t, domain.StatusOpen, created.Status)
	assert.Equal(t, "2", created.OrganizationID)
	assert.Equal(t, "21", created.AssigneeID)

	status, resp := a.do(t, fasthttp.MethodGet, "/api/v1/tasks", &itViewer, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, resp.Meta.Count)

	status, resp = a.do(t, fasthttp.MethodGet, "/api/v1/tasks", &hrOwner, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 0, resp.Meta.Count)
}

func TestListIncludesCreatorAndAssignee(t *testing.T) {
	a := newAPI(t)
	a.create(t, itOwner, `{"title":"Patch servers","assigneeId":"22"}`)
	_, err := a.store.Save(context.Background(), &domain.Task{
		Title: "Left behind", Status: domain.StatusOpen, OrganizationID: "2", CreatedByID: "99", AssigneeID: "98",
	})
	require.NoError(t, err)

	status, resp := a.do(t, fasthttp.MethodGet, "/api/v1/tasks", &itOwner, "")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 2, resp.Meta.Count)

	var items []struct {
		Title     string          `json:"title"`
		CreatedBy *domain.UserRef `json:"createdBy"`
		Assignee  *domain.UserRef `json:"assignee"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &items))

	require.NotNil(t, items[0].CreatedBy)
	assert.Equal(t, domain.UserRef{ID: "20", Name: "IT Owner", Email: "owner@it.com"}, *items[0].CreatedBy)
	require.NotNil(t, items[0].Assignee)
	assert.Equal(t, domain.UserRef{ID: "22", Name: "contractor@it.com", Email: "contractor@it.com"}, *items[0].Assignee)

	assert.Equal(t, "Left behind", items[1].Title)
	assert.Nil(t, items[1].CreatedBy)
	assert.Nil(t, items[1].Assignee)
}

func TestListEmptyIsArray(t *testing.T) {
	a := newAPI(t)
	status, resp := a.do(t, fasthttp.MethodGet, "/api/v1/tasks", &hrOwner, "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, string(resp.Data))
}

func TestCreateErrors(t *testing.T) {
	a := newAPI(t)

	status, resp := a.do(t, fasthttp.MethodPost, "/api/v1/tasks", &itViewer, `{"title":"x"}`)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "VIEWER cannot create tasks", resp.Error)

	status, resp = a.do(t, fasthttp.MethodPost, "/api/v1/tasks", &itOwner, `{"title":"x","assigneeId":"30"}`)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Cannot assign tasks outside your organization", resp.Error)

	status, resp = a.do(t, fasthttp.MethodPost, "/api/v1/tasks", &itOwner, `{"title":"x","assigneeId":"404"}`)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Assignee not found", resp.Error)

	status, _ = a.do(t, fasthttp.MethodPost, "/api/v1/tasks", &itOwner, `{not json`)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestUpdateClearsAndKeepsFields(t *testing.T) {
	a := newAPI(t)
	created := a.create(t, itOwner, `{"title":"Audit","description":"quarterly","category":"finance","assigneeId":"21"}`)

	status, resp := a.do(t, fasthttp.MethodPut, "/api/v1/tasks/"+created.ID, &itOwner, `{"description":null,"assigneeId":null}`)
	require.Equal(t, http.StatusOK, status, resp.Error)
	var updated domain.Task
	require.NoError(t, json.Unmarshal(resp.Data, &updated))
	assert.Empty(t, updated.Description)
	assert.Empty(t, updated.AssigneeID)
	assert.Equal(t, "finance", updated.Category)
	assert.Equal(t, "Audit", updated.Title)

	status, resp = a.do(t, fasthttp.MethodPut, "/api/v1/tasks/"+created.ID, &hrOwner, `{"title":"mine now"}`)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Owners can only update tasks in their organization or tasks assigned to them", resp.Error)
}

func TestUpdateStatus(t *testing.T) {
	a := newAPI(t)
	created := a.create(t, itOwner, `{"title":"Deploy","assigneeId":"21"}`)

	status, resp := a.do(t, fasthttp.MethodPatch, "/api/v1/tasks/"+created.ID+"/status", &itViewer, `{"status":"IN_PROGRESS"}`)
	require.Equal(t, http.StatusOK, status, resp.Error)

	status, resp = a.do(t, fasthttp.MethodPatch, "/api/v1/tasks/"+created.ID+"/status", &hrOwner, `{"status":"DONE"}`)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "You cannot update tasks in another organization", resp.Error)

	status, _ = a.do(t, fasthttp.MethodPatch, "/api/v1/tasks/"+created.ID+"/status", &itOwner, `{"status":"BLOCKED"}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, resp = a.do(t, fasthttp.MethodPatch, "/api/v1/tasks/missing/status", &admin, `{"status":"DONE"}`)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Task not found", resp.Error)
}

func TestDeleteAndAuditLog(t *testing.T) {
	a := newAPI(t)
	created := a.create(t, itOwner, `{"title":"Cleanup"}`)

	status, resp := a.do(t, fasthttp.MethodDelete, "/api/v1/tasks/"+created.ID, &hrOwner, "")
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "You cannot delete this task", resp.Error)

	status, _ = a.do(t, fasthttp.MethodDelete, "/api/v1/tasks/"+created.ID, &admin, "")
	assert.Equal(t, http.StatusNoContent, status)

	status, resp = a.do(t, fasthttp.MethodGet, "/api/v1/audit-log", &itOwner, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 2, resp.Meta.Count)
	var events []domain.AuditEvent
	require.NoError(t, json.Unmarshal(resp.Data, &events))
	assert.Equal(t, domain.ActionDeleteTask, events[0].Action)
	assert.Equal(t, "admin@demo.com", events[0].ActorEmail)

	status, resp = a.do(t, fasthttp.MethodGet, "/api/v1/audit-log", &itViewer, "")
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Only ADMIN or OWNER can view audit log", resp.Error)
}

func TestProfile(t *testing.T) {
	a := newAPI(t)
	status, resp := a.do(t, fasthttp.MethodGet, "/api/v1/profile", &itViewer, "")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(resp.Data), `"IT Viewer"`)
	assert.Contains(t, string(resp.Data), `"IT"`)
}

func TestHealth(t *testing.T) {
	a := newAPI(t)
	status, resp := a.do(t, fasthttp.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "success", resp.Status)

	down := NewHealthHandler(staticStatus{Redis: true}, nil, nil)
	var ctx fasthttp.RequestCtx
	down.Check(&ctx)
	assert.Equal(t, http.StatusServiceUnavailable, ctx.Response.StatusCode())
}

func TestInternalErrorsAreHidden(t *testing.T) {
	h := newBaseHandler(nil, nil)
	var ctx fasthttp.RequestCtx
	h.respondError(context.Background(), &ctx, assert.AnError)

	assert.Equal(t, http.StatusInternalServerError, ctx.Response.StatusCode())
	assert.NotContains(t, string(ctx.Response.Body()), assert.AnError.Error())
}
