package tasks

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desklago/leadhub/pkg/api"
	"github.com/desklago/leadhub/pkg/session"
	"github.com/desklago/leadhub/pkg/users"
)

const taskUnchecked = `{"data":{"id":5,"title":"Outreach","priority":2,"status":"pending","created_at":"2025-01-01","assigned_users":[{"id":11,"status":"pending","user":{"id":3,"name":"Ada","email":"a@x.y","type":"member","is_subscribe":0},"individual_tasks":[{"id":101,"title":"Call list","checkbox":0}]}]}}`

func TestGetDecodesHierarchy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(taskUnchecked))
	}))
	defer srv.Close()

	task, err := NewService(api.New(srv.URL)).Get(context.Background(), 5)
	if err != nil {
		t.Fatal(err)
	}
	if task.Title != "Outreach" || len(task.Assignments) != 1 {
		t.Fatalf("task decoded wrong: %+v", task)
	}
	a := task.Assignments[0]
	if a.User.Name != "Ada" || len(a.Subtasks) != 1 {
		t.Fatalf("assignment decoded wrong: %+v", a)
	}
	if a.Subtasks[0].Done {
		t.Error("checkbox 0 decoded as done")
	}
}

func TestToggleSubtaskFailureReconciles(t *testing.T) {
	// The write fails with a 500; the optimistic flip must be replaced by
	// server truth from the reconciling refetch.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			w.WriteHeader(500)
			w.Write([]byte(`{"message":"Server Error"}`))
			return
		}
		w.Write([]byte(taskUnchecked))
	}))
	defer srv.Close()

	view, err := NewDetailView(context.Background(), NewService(api.New(srv.URL)), 5)
	if err != nil {
		t.Fatal(err)
	}

	err = view.ToggleSubtask(context.Background(), 101)
	if err == nil {
		t.Fatal("the failed write must surface an error")
	}

	if view.Task().Assignments[0].Subtasks[0].Done {
		t.Error("optimistic flip survived reconciliation against server truth")
	}
}

func TestToggleSubtaskSuccess(t *testing.T) {
	toggled := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			toggled = true
			w.Write([]byte(`{"success":true}`))
			return
		}
		if toggled {
			checked := `{"data":{"id":5,"title":"Outreach","priority":2,"status":"pending","created_at":"2025-01-01","assigned_users":[{"id":11,"status":"pending","user":{"id":3,"name":"Ada","email":"a@x.y","type":"member","is_subscribe":0},"individual_tasks":[{"id":101,"title":"Call list","checkbox":1}]}]}}`
			w.Write([]byte(checked))
			return
		}
		w.Write([]byte(taskUnchecked))
	}))
	defer srv.Close()

	view, err := NewDetailView(context.Background(), NewService(api.New(srv.URL)), 5)
	if err != nil {
		t.Fatal(err)
	}
	if err := view.ToggleSubtask(context.Background(), 101); err != nil {
		t.Fatal(err)
	}
	if !view.Task().Assignments[0].Subtasks[0].Done {
		t.Error("toggle not reflected after reconciliation")
	}
}

func TestAssignableUsers(t *testing.T) {
	task := Task{Assignments: []Assignment{
		{User: users.User{ID: 1, Role: session.RoleMember}},
	}}
	all := []users.User{
		{ID: 1, Role: session.RoleMember},     // already assigned
		{ID: 2, Role: session.RoleLeader},     // assignable
		{ID: 3, Role: session.RoleAdmin},      // assignable
		{ID: 4, Role: session.RoleClient},     // wrong role
		{ID: 5, Role: session.RoleSuperadmin}, // wrong role
	}

	got := AssignableUsers(all, task)
	if len(got) != 2 {
		t.Fatalf("expected 2 assignable users, got %d: %+v", len(got), got)
	}
	for _, u := range got {
		if u.ID == 1 || u.ID == 4 || u.ID == 5 {
			t.Errorf("user %d should not be assignable", u.ID)
		}
	}
}

func TestAssignUserDefaultsDueDate(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	if err := NewService(api.New(srv.URL)).AssignUser(context.Background(), 5, 3, ""); err != nil {
		t.Fatal(err)
	}
	if len(gotBody) == 0 || !containsDate(string(gotBody)) {
		t.Errorf("empty due date should default to today, body: %s", gotBody)
	}
}

func containsDate(body string) bool {
	// Just check a YYYY-MM-DD shaped due_date made it into the payload.
	for i := 0; i+10 <= len(body); i++ {
		chunk := body[i : i+10]
		if chunk[4] == '-' && chunk[7] == '-' {
			return true
		}
	}
	return false
}
