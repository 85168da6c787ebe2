package directory_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaharia-lab/mailcast/internal/directory"
)

func TestHTTPClient_EntityByRef(t *testing.T) {
	var gotAuth, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"kind": "User",
			"metadata": {"name": "mock", "namespace": "default"},
			"spec": {"profile": {"email": "mock@b.io"}}
		}`))
	}))
	defer srv.Close()

	c := directory.NewHTTPClient(srv.URL, directory.StaticTokenSource("secret-token"))
	entity, err := c.EntityByRef(t.Context(), "user:default/mock")
	require.NoError(t, err)
	require.NotNil(t, entity)

	assert.Equal(t, "/entities/by-name/user/default/mock", gotPath)
	assert.Equal(t, "Bearer secret-token", gotAuth)

	email, ok := entity.Email()
	require.True(t, ok)
	assert.Equal(t, "mock@b.io", email)
}

func TestHTTPClient_EntityByRef_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := directory.NewHTTPClient(srv.URL, nil)
	entity, err := c.EntityByRef(t.Context(), "user:default/ghost")
	require.NoError(t, err)
	assert.Nil(t, entity)
}

func TestHTTPClient_EntityByRef_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := directory.NewHTTPClient(srv.URL, nil)
	_, err := c.EntityByRef(t.Context(), "user:default/mock")
	var lerr *directory.LookupError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, "user:default/mock", lerr.Ref)
}

func TestHTTPClient_EntityByRef_BadRef(t *testing.T) {
	c := directory.NewHTTPClient("http://localhost:0", nil)
	_, err := c.EntityByRef(t.Context(), "not-a-ref")
	var lerr *directory.LookupError
	require.ErrorAs(t, err, &lerr)
}

func TestHTTPClient_EntitiesByKind(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items": [
			{"kind": "User", "metadata": {"name": "a"}, "spec": {"profile": {"email": "a@x.io"}}},
			{"kind": "User", "metadata": {"name": "b"}, "spec": {"profile": {"email": "b@x.io"}}},
			{"kind": "User", "metadata": {"name": "no-email"}, "spec": {}}
		]}`))
	}))
	defer srv.Close()

	c := directory.NewHTTPClient(srv.URL, nil)
	entities, err := c.EntitiesByKind(t.Context(), "User")
	require.NoError(t, err)
	require.Len(t, entities, 3)
	assert.Equal(t, "filter=kind%3Duser", gotQuery)

	email, ok := entities[0].Email()
	require.True(t, ok)
	assert.Equal(t, "a@x.io", email)

	_, ok = entities[2].Email()
	assert.False(t, ok)
}
