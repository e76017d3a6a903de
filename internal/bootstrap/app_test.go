package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApp_Routes(t *testing.T) {
	for _, k := range []string{"DB_HOST", "ES_URL", "DATASTORE_PROJECT_ID"} {
		require.Empty(t, os.Getenv(k), k)
	}

	app := NewApp()
	require.NoError(t, app.Initialize(context.Background()))
	defer app.Close()

	rec := httptest.NewRecorder()
	app.Echo.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/export?format=csv", strings.NewReader(`{"sheets": [{"rows": [["a", "b"]]}]}`))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	app.Echo.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "\"a\",\"b\"\n", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestApp_SetupRejectsInvalidExportSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("TIME_ZONE=Mars/Olympus\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("TIME_ZONE") })

	err := NewApp().Setup(context.Background(), path)
	assert.Error(t, err)
}
