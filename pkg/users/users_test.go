package users

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desklago/leadhub/pkg/api"
	"github.com/desklago/leadhub/pkg/session"
)

func TestListDecodesSubscriptionFlag(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[
			{"id":1,"name":"Ada","email":"a@x.y","type":"admin","is_subscribe":1},
			{"id":2,"name":"Bob","email":"b@x.y","type":"client","is_subscribe":0},
			{"id":3,"name":"Cyn","email":"c@x.y","type":"member","is_subscribe":"1"}
		]}`))
	}))
	defer srv.Close()

	all, err := NewService(api.New(srv.URL)).List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 users, got %d", len(all))
	}
	if !bool(all[0].Subscribed) || bool(all[1].Subscribed) || !bool(all[2].Subscribed) {
		t.Errorf("subscription flags decoded wrong: %v %v %v", all[0].Subscribed, all[1].Subscribed, all[2].Subscribed)
	}
	if all[0].Role != session.RoleAdmin || all[1].Role != session.RoleClient {
		t.Errorf("roles decoded wrong: %v %v", all[0].Role, all[1].Role)
	}
}

func TestToggleSubscribeHitsUserPath(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	if err := NewService(api.New(srv.URL)).ToggleSubscribe(context.Background(), 7); err != nil {
		t.Fatal(err)
	}
	if gotMethod != http.MethodPut || gotPath != "/users/toggle-subscribe/7" {
		t.Errorf("got %s %s", gotMethod, gotPath)
	}
}

func TestRegisterSendsMultipartFields(t *testing.T) {
	var gotFields map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			t.Errorf("unexpected content type %q", r.Header.Get("Content-Type"))
		}
		r.ParseMultipartForm(1 << 20)
		gotFields = map[string]string{}
		for k, v := range r.MultipartForm.Value {
			gotFields[k] = v[0]
		}
		w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	err := NewService(api.New(srv.URL)).Register(context.Background(), Registration{
		Name:                 "Dana",
		Email:                "d@x.y",
		Password:             "secret123",
		PasswordConfirmation: "secret123",
		Role:                 session.RoleMember,
		RegUserID:            1,
	})
	if err != nil {
		t.Fatal(err)
	}

	want := map[string]string{
		"name":        "Dana",
		"email":       "d@x.y",
		"type":        "member",
		"reg_user_id": "1",
	}
	for k, v := range want {
		if gotFields[k] != v {
			t.Errorf("field %s = %q, want %q", k, gotFields[k], v)
		}
	}
}
