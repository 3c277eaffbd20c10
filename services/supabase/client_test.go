package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedReq struct {
	method string
	path   string
	query  map[string]string
	header http.Header
	body   string
}

type fakeBackend struct {
	mu       sync.Mutex
	requests []recordedReq
	handler  func(w http.ResponseWriter, r *http.Request)
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	r.Body = io.NopCloser(bytes.NewReader(body))
	q := make(map[string]string)
	for k, v := range r.URL.Query() {
		q[k] = v[0]
	}
	f.mu.Lock()
	f.requests = append(f.requests, recordedReq{method: r.Method, path: r.URL.Path, query: q, header: r.Header, body: string(body)})
	f.mu.Unlock()
	f.handler(w, r)
}

func (f *fakeBackend) last() recordedReq {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func setup(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*Client, *fakeBackend) {
	fb := &fakeBackend{handler: handler}
	srv := httptest.NewServer(fb)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", "anon-key", WithHTTPClient(srv.Client())), fb
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func tokenHandler(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/auth/v1/token":
		var payload map[string]string
		_ = json.NewDecoder(r.Body).Decode(&payload)
		switch {
		case r.URL.Query().Get("grant_type") == "password" && payload["password"] == "secret":
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"access_token": "access-1", "refresh_token": "refresh-1", "expires_in": 3600,
				"user": map[string]string{"id": "uid-1", "email": payload["email"]},
			})
		case r.URL.Query().Get("grant_type") == "refresh_token" && payload["refresh_token"] == "refresh-1":
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"access_token": "access-2", "refresh_token": "refresh-2", "expires_in": 3600,
				"user": map[string]string{"id": "uid-1", "email": "a@b.c"},
			})
		default:
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_grant", "error_description": "Invalid login credentials"})
		}
	case "/auth/v1/logout":
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func TestAuth_SignInWithPassword(t *testing.T) {
	c, fb := setup(t, tokenHandler)
	auth := c.NewAuth("")

	var events []AuthEvent
	sub := auth.OnAuthStateChange(func(event AuthEvent, s *Session) { events = append(events, event) })
	defer sub.Unsubscribe()

	sess, err := auth.SignInWithPassword(context.Background(), "a@b.c", "secret")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", sess.User.ID)
	assert.Equal(t, "access-1", auth.AccessToken())
	assert.Equal(t, []AuthEvent{EventSignedIn}, events)

	req := fb.last()
	assert.Equal(t, http.MethodPost, req.method)
	assert.Equal(t, "password", req.query["grant_type"])
	assert.Equal(t, "anon-key", req.header.Get("apikey"))
	assert.JSONEq(t, `{"email":"a@b.c","password":"secret"}`, req.body)

	got, err := auth.GetSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "access-1", got.AccessToken)
	assert.Len(t, fb.requests, 1, "a live session is not refreshed")
}

func TestAuth_SignInWithPassword_invalid(t *testing.T) {
	c, _ := setup(t, tokenHandler)
	auth := c.NewAuth("")

	called := false
	auth.OnAuthStateChange(func(AuthEvent, *Session) { called = true })

	_, err := auth.SignInWithPassword(context.Background(), "a@b.c", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid login credentials")
	assert.False(t, called)
	assert.Equal(t, "", auth.AccessToken())
}

func TestAuth_GetSession(t *testing.T) {
	c, fb := setup(t, tokenHandler)

	t.Run("nobody signed in", func(t *testing.T) {
		sess, err := c.NewAuth("").GetSession(context.Background())
		assert.NoError(t, err)
		assert.Nil(t, sess)
	})

	t.Run("restored from refresh token", func(t *testing.T) {
		auth := c.NewAuth("refresh-1")
		var events []AuthEvent
		auth.OnAuthStateChange(func(event AuthEvent, s *Session) { events = append(events, event) })

		sess, err := auth.GetSession(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "access-2", sess.AccessToken)
		assert.Equal(t, "refresh-2", sess.RefreshToken)
		assert.Equal(t, []AuthEvent{EventTokenRefreshed}, events)
		assert.Equal(t, "refresh_token", fb.last().query["grant_type"])
	})

	t.Run("stale refresh token", func(t *testing.T) {
		auth := c.NewAuth("revoked")
		sess, err := auth.GetSession(context.Background())
		assert.Error(t, err)
		assert.Nil(t, sess)

		// the failed token is dropped
		sess, err = auth.GetSession(context.Background())
		assert.NoError(t, err)
		assert.Nil(t, sess)
	})
}

func TestAuth_SignOut(t *testing.T) {
	c, fb := setup(t, tokenHandler)
	auth := c.NewAuth("")
	_, err := auth.SignInWithPassword(context.Background(), "a@b.c", "secret")
	require.NoError(t, err)

	var events []AuthEvent
	sub := auth.OnAuthStateChange(func(event AuthEvent, s *Session) {
		events = append(events, event)
		assert.Nil(t, s)
	})

	require.NoError(t, auth.SignOut(context.Background()))
	assert.Equal(t, "/auth/v1/logout", fb.last().path)
	assert.Equal(t, "Bearer access-1", fb.last().header.Get("Authorization"))
	assert.Equal(t, []AuthEvent{EventSignedOut}, events)
	assert.Equal(t, "", auth.AccessToken())

	sub.Unsubscribe()
	sub.Unsubscribe()
	require.NoError(t, auth.SignOut(context.Background()))
	assert.Len(t, events, 1)
}

func TestAuth_SignOut_remoteFailure(t *testing.T) {
	c, _ := setup(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/v1/logout" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		tokenHandler(w, r)
	})
	auth := c.NewAuth("")
	_, err := auth.SignInWithPassword(context.Background(), "a@b.c", "secret")
	require.NoError(t, err)

	err = auth.SignOut(context.Background())
	assert.Error(t, err)
	assert.Equal(t, "", auth.AccessToken(), "local state is cleared anyway")
}

type row struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func TestQuery(t *testing.T) {
	c, fb := setup(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Query().Get("id") == "eq.missing":
			writeJSON(w, http.StatusNotAcceptable, map[string]string{"code": "PGRST116", "message": "JSON object requested, multiple (or no) rows returned"})
		case r.Method == http.MethodGet && r.Header.Get("Accept") == "application/vnd.pgrst.object+json":
			writeJSON(w, http.StatusOK, row{ID: "a1", Title: "Advanced React Patterns"})
		case r.Method == http.MethodGet:
			writeJSON(w, http.StatusOK, []row{{ID: "a2"}, {ID: "a1"}})
		case r.Method == http.MethodPost:
			var in []row
			_ = json.NewDecoder(r.Body).Decode(&in)
			in[0].ID = "new"
			writeJSON(w, http.StatusCreated, in)
		case r.Method == http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		}
	})
	ctx := WithAccessToken(context.Background(), "user-token")

	t.Run("select ordered", func(t *testing.T) {
		var rows []row
		require.NoError(t, c.From("assignments").Select("*").Order("created_at", false).Execute(ctx, &rows))
		assert.Equal(t, []row{{ID: "a2"}, {ID: "a1"}}, rows)

		req := fb.last()
		assert.Equal(t, "/rest/v1/assignments", req.path)
		assert.Equal(t, "*", req.query["select"])
		assert.Equal(t, "created_at.desc", req.query["order"])
		assert.Equal(t, "Bearer user-token", req.header.Get("Authorization"))
	})

	t.Run("single", func(t *testing.T) {
		var r row
		require.NoError(t, c.From("assignments").Select("*").Eq("id", "a1").Single().Execute(ctx, &r))
		assert.Equal(t, "Advanced React Patterns", r.Title)
		assert.Equal(t, "eq.a1", fb.last().query["id"])
	})

	t.Run("single without rows", func(t *testing.T) {
		var r row
		err := c.From("assignments").Select("*").Eq("id", "missing").Single().Execute(ctx, &r)
		assert.Equal(t, ErrNoRows, err)
	})

	t.Run("insert", func(t *testing.T) {
		var rows []row
		require.NoError(t, c.From("assignments").Insert([]row{{Title: "Quiz 1"}}).Execute(ctx, &rows))
		assert.Equal(t, []row{{ID: "new", Title: "Quiz 1"}}, rows)
		assert.Equal(t, "return=representation", fb.last().header.Get("Prefer"))
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, c.From("assignments").Delete().Eq("id", "a1").Execute(ctx, nil))
		assert.Equal(t, http.MethodDelete, fb.last().method)
		assert.Equal(t, "eq.a1", fb.last().query["id"])
	})

	t.Run("anon key without token", func(t *testing.T) {
		var rows []row
		require.NoError(t, c.From("assignments").Execute(context.Background(), &rows))
		assert.Equal(t, "Bearer anon-key", fb.last().header.Get("Authorization"))
	})
}

func TestQuery_error(t *testing.T) {
	c, _ := setup(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"code": "42P01", "message": `relation "public.assignments" does not exist`})
	})

	var rows []row
	err := c.From("assignments").Execute(context.Background(), &rows)
	require.Error(t, err)
	apiErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "42P01", apiErr.Code)
	assert.Contains(t, err.Error(), "does not exist")
}
