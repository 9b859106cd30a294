package cmd

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingAPI serves one existing folder and records write request bodies
// keyed by "METHOD path".
type recordingAPI struct {
	mu     sync.Mutex
	bodies map[string]string
}

func newRecordingAPI(t *testing.T) (*recordingAPI, *httptest.Server) {
	t.Helper()
	rec := &recordingAPI{bodies: make(map[string]string)}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		key := r.Method + " " + r.URL.Path
		switch key {
		case "POST /auth/signin":
			fmt.Fprint(w, `{"user":{"id":1,"name":"Ada","email":"ada@example.com"},"jwt":"jwt-1"}`)
		case "GET /folder/3":
			fmt.Fprint(w, `{"id":3,"name":"Legal","description":"NDAs","color":"bg-red-500","pdfs":[]}`)
		case "PUT /folder/3", "POST /folder", "PUT /auth/avatar":
			body, _ := io.ReadAll(r.Body)
			rec.mu.Lock()
			rec.bodies[key] = string(body)
			rec.mu.Unlock()
			fmt.Fprint(w, `{}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"error":"not found"}`)
		}
	}))
	t.Cleanup(server.Close)
	return rec, server
}

func (r *recordingAPI) body(key string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bodies[key]
	return b, ok
}

func signedIn(t *testing.T) *recordingAPI {
	t.Helper()
	rec, server := newRecordingAPI(t)
	setupEnv(t, server.URL)
	_, _, err := executeCommand(t, "", "signin", "--email", "ada@example.com", "--password", "pw")
	require.NoError(t, err)
	return rec
}

func TestFoldersUpdateKeepsUnsetFields(t *testing.T) {
	rec := signedIn(t)

	out, _, err := executeCommand(t, "", "folders", "update", "3", "--name", "Renamed")
	require.NoError(t, err)
	assert.Contains(t, out, "Updated folder 3.")

	body, ok := rec.body("PUT /folder/3")
	require.True(t, ok)
	assert.JSONEq(t, `{"name":"Renamed","description":"NDAs","color":"bg-red-500"}`, body)
}

func TestFoldersUpdateRejectsBadInput(t *testing.T) {
	rec := signedIn(t)

	_, _, err := executeCommand(t, "", "folders", "update", "3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to update")

	_, _, err = executeCommand(t, "", "folders", "update", "3", "--color", "bg-black-500")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid color")

	_, _, err = executeCommand(t, "", "folders", "update", "3", "--description", "  ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "description are required")

	_, ok := rec.body("PUT /folder/3")
	assert.False(t, ok)
}

func TestFoldersCreate(t *testing.T) {
	rec := signedIn(t)

	_, _, err := executeCommand(t, "", "folders", "create", "--name", "New")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "description")
	_, ok := rec.body("POST /folder")
	assert.False(t, ok)

	_, _, err = executeCommand(t, "", "folders", "create", "--name", "New", "--description", "Leases", "--color", "teal")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid color")

	out, _, err := executeCommand(t, "", "folders", "create", "--name", " New ", "--description", "Leases")
	require.NoError(t, err)
	assert.Contains(t, out, `Created folder "New".`)

	body, ok := rec.body("POST /folder")
	require.True(t, ok)
	assert.JSONEq(t, `{"name":"New","description":"Leases","color":"bg-blue-500"}`, body)
}

func TestAvatarCatalog(t *testing.T) {
	rec := signedIn(t)

	out, _, err := executeCommand(t, "", "avatar", "--list")
	require.NoError(t, err)
	assert.Contains(t, out, "avatar12")
	assert.Contains(t, out, "Robot")

	_, _, err = executeCommand(t, "", "avatar", "avatar99")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown avatar")

	_, _, err = executeCommand(t, "", "avatar")
	require.Error(t, err)
	_, ok := rec.body("PUT /auth/avatar")
	assert.False(t, ok)

	out, _, err = executeCommand(t, "", "avatar", "avatar3")
	require.NoError(t, err)
	assert.Contains(t, out, "Developer Man")
	body, ok := rec.body("PUT /auth/avatar")
	require.True(t, ok)
	assert.JSONEq(t, `{"avatar":"avatar3"}`, body)
}

func TestRootShowsSignInStatus(t *testing.T) {
	_, server := newRecordingAPI(t)
	setupEnv(t, server.URL)

	out, _, err := executeCommand(t, "")
	require.NoError(t, err)
	assert.Contains(t, out, "Not signed in.")

	_, _, err = executeCommand(t, "", "signin", "--email", "ada@example.com", "--password", "pw")
	require.NoError(t, err)

	out, _, err = executeCommand(t, "")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in.")
}
