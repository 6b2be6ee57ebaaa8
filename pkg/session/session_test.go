package session

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/desklago/leadhub/pkg/api"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenStore(filepath.Join(t.TempDir(), "session.sqlite"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func managerFor(t *testing.T, store *Store, handler http.HandlerFunc) *Manager {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	var mgr *Manager
	client := api.New(srv.URL, api.WithToken(func() string {
		if mgr == nil {
			return ""
		}
		return mgr.Token()
	}))
	mgr, err := NewManager(store, client)
	if err != nil {
		t.Fatal(err)
	}
	return mgr
}

const loginOK = `{"success":true,"data":{"token":"tok-1","admin":{"id":3,"name":"Ada","email":"ada@x.y","type":"admin","is_subscribe":1}}}`

func TestLoginPersistsSession(t *testing.T) {
	store := testStore(t)
	mgr := managerFor(t, store, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(loginOK))
	})

	result, err := mgr.Login(context.Background(), "ada@x.y", "pw")
	if err != nil {
		t.Fatal(err)
	}
	if !result.OK {
		t.Fatalf("login rejected: %s", result.Reason)
	}
	if !mgr.IsAuthenticated() {
		t.Fatal("expected an authenticated session")
	}
	p := mgr.Current()
	if p.Role != RoleAdmin || !p.Subscribed {
		t.Errorf("principal decoded wrong: %+v", p)
	}

	// A second manager over the same store picks the session back up.
	reloaded, err := NewManager(store, nil)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Token() != "tok-1" {
		t.Errorf("token not persisted, got %q", reloaded.Token())
	}
	if reloaded.Current() == nil || reloaded.Current().Name != "Ada" {
		t.Error("principal snapshot not persisted")
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	mgr := managerFor(t, testStore(t), func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(401)
		w.Write([]byte(`{"message":"Invalid credentials"}`))
	})

	result, err := mgr.Login(context.Background(), "ada@x.y", "wrong")
	if err != nil {
		t.Fatal("rejected credentials must not surface as an error")
	}
	if result.OK {
		t.Fatal("login should have been rejected")
	}
	if result.Network {
		t.Error("a 401 is not a network failure")
	}
	if mgr.IsAuthenticated() {
		t.Error("no session should exist after a rejected login")
	}
}

func TestLoginNetworkFailure(t *testing.T) {
	store := testStore(t)
	rc := retryablehttp.NewClient()
	rc.Logger = log.New(io.Discard, "", 0)
	rc.RetryMax = 0
	client := api.New("http://127.0.0.1:1", api.WithHTTPClient(rc))
	mgr, err := NewManager(store, client)
	if err != nil {
		t.Fatal(err)
	}

	result, err := mgr.Login(context.Background(), "a@b.c", "pw")
	if err != nil {
		t.Fatal(err)
	}
	if result.OK || !result.Network {
		t.Errorf("expected a structured network failure, got %+v", result)
	}
}

func TestInitializeFailsClosed(t *testing.T) {
	for _, tt := range []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"rejected token", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(401)
			w.Write([]byte(`{"message":"Unauthenticated."}`))
		}},
		{"unsuccessful payload", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"success":false}`))
		}},
		{"malformed payload", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"success":true,"data":{"user":{"type":"emperor"}}}`))
		}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			store := testStore(t)
			if err := store.set(keyToken, "stale-token"); err != nil {
				t.Fatal(err)
			}
			mgr := managerFor(t, store, tt.handler)

			if err := mgr.Initialize(context.Background()); err != nil {
				t.Fatal(err)
			}
			if mgr.IsAuthenticated() {
				t.Error("verification failure must force a logout")
			}
			if token, _ := store.get(keyToken); token != "" {
				t.Error("stale credential survived a failed verification")
			}
		})
	}
}

func TestInitializeSuccess(t *testing.T) {
	store := testStore(t)
	if err := store.set(keyToken, "tok-9"); err != nil {
		t.Fatal(err)
	}
	mgr := managerFor(t, store, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-9" {
			w.WriteHeader(401)
			return
		}
		w.Write([]byte(`{"success":true,"data":{"user":{"id":5,"name":"Bo","email":"bo@x.y","type":"leader","is_subscribe":0}}}`))
	})

	if err := mgr.Initialize(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !mgr.IsAuthenticated() {
		t.Fatal("expected a verified session")
	}
	if p := mgr.Current(); p.Role != RoleLeader || p.Subscribed {
		t.Errorf("principal decoded wrong: %+v", p)
	}
}

func TestInitializeWithoutTokenIsNoop(t *testing.T) {
	called := false
	mgr := managerFor(t, testStore(t), func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	if err := mgr.Initialize(context.Background()); err != nil {
		t.Fatal(err)
	}
	if called {
		t.Error("no credential held, no verification request should go out")
	}
}

func TestLogoutIdempotent(t *testing.T) {
	store := testStore(t)
	mgr := managerFor(t, store, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(loginOK))
	})
	if _, err := mgr.Login(context.Background(), "a@b.c", "pw"); err != nil {
		t.Fatal(err)
	}

	if err := mgr.Logout(); err != nil {
		t.Fatal(err)
	}
	if err := mgr.Logout(); err != nil {
		t.Fatal("second logout must succeed: ", err)
	}
	if mgr.IsAuthenticated() || mgr.Token() != "" || mgr.Current() != nil {
		t.Error("logout left session state behind")
	}
	if token, _ := store.get(keyToken); token != "" {
		t.Error("logout left the persisted credential behind")
	}
	if user, _ := store.get(keyUser); user != "" {
		t.Error("logout left the persisted principal behind")
	}
}

func TestSubscribeNotified(t *testing.T) {
	mgr := managerFor(t, testStore(t), func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(loginOK))
	})

	notified := 0
	mgr.Subscribe(func() { notified++ })

	if _, err := mgr.Login(context.Background(), "a@b.c", "pw"); err != nil {
		t.Fatal(err)
	}
	if notified == 0 {
		t.Error("login should notify subscribers")
	}
	before := notified
	if err := mgr.Logout(); err != nil {
		t.Fatal(err)
	}
	if notified == before {
		t.Error("logout should notify subscribers")
	}
}

func TestParseRole(t *testing.T) {
	for raw, want := range map[string]Role{
		"superadmin": RoleSuperadmin,
		"Admin":      RoleAdmin,
		" leader ":   RoleLeader,
		"MEMBER":     RoleMember,
		"client":     RoleClient,
	} {
		got, err := ParseRole(raw)
		if err != nil || got != want {
			t.Errorf("ParseRole(%q) = %v, %v", raw, got, err)
		}
	}
	if _, err := ParseRole("emperor"); err == nil {
		t.Error("unknown roles must be rejected")
	}
}
