// Common test helpers
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/rabbit/db/kvdb"
	"github.com/meghashyamc/rabbit/db/searchdb"
	"github.com/meghashyamc/rabbit/logger"
	"github.com/meghashyamc/rabbit/services/convert"
	"github.com/meghashyamc/rabbit/services/index"
	"github.com/meghashyamc/rabbit/services/search"
	"github.com/meghashyamc/rabbit/validation"
	"github.com/stretchr/testify/require"
)

type testCase struct {
	name             string
	requestHeaders   map[string]string
	requestBody      map[string]any
	queryParams      map[string]string
	expectedStatus   int
	expectedResponse map[string]any
}

type testServer struct {
	router       *gin.Engine
	searchDB     *searchdb.BleveDB
	indexService *index.Service
}

func newTestLogger() logger.Logger {

	opts := &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: true,
	}
	handler := slog.NewJSONHandler(os.Stderr, opts)
	return slog.New(handler)
}

func writeTestFiles(assert *require.Assertions, root string) {
	for relPath, content := range testFiles {
		fullPath := filepath.Join(root, relPath)
		err := os.MkdirAll(filepath.Dir(fullPath), 0755)
		assert.NoError(err, "could not create test sub-directory")
		err = os.WriteFile(fullPath, []byte(content), 0644)
		assert.NoError(err, "could not write test file")
	}
}

func setupTestServer(t *testing.T, assert *require.Assertions) *testServer {

	testLogger := newTestLogger()

	searchDB, err := searchdb.New(testLogger, "", searchdb.DefaultAnalysis())
	assert.NoError(err, "could not create search database")
	kvDB, err := kvdb.New(testLogger, filepath.Join(t.TempDir(), "meta.db"))
	assert.NoError(err, "could not create kv database")
	validator, err := validation.New(testLogger)
	assert.NoError(err, "could not create validator")
	walker, err := index.NewWalker(nil)
	assert.NoError(err, "could not create walker")

	ctx, cancel := context.WithCancel(context.Background())
	indexService := index.New(ctx, testLogger, searchDB, walker, convert.New(nil), kvDB, index.Options{Workers: 4})
	searchService := search.New(testLogger, searchDB, 100)

	gin.SetMode(gin.TestMode)
	router := gin.New()

	SetupIndex(router, testLogger, indexService, validator)
	SetupSearch(router, testLogger, searchService, validator)

	t.Cleanup(func() {
		cancel()
		assert.NoError(searchDB.Close(), "could not close search database")
		assert.NoError(kvDB.Close(), "could not close kv database")
	})

	return &testServer{router: router, searchDB: searchDB, indexService: indexService}
}

func makeTestHTTPRequest(server *testServer, assert *require.Assertions, method string, endpoint string, headers map[string]string, requestBodyMap map[string]any, queryParams map[string]string) *httptest.ResponseRecorder {

	var err error
	w := httptest.NewRecorder()

	if len(queryParams) > 0 {
		values := url.Values{}
		for key, value := range queryParams {
			values.Set(key, value)
		}
		endpoint = endpoint + "?" + values.Encode()
	}
	var jsonBody []byte
	var req *http.Request
	if requestBodyMap != nil {
		jsonBody, err = json.Marshal(requestBodyMap)
		assert.NoError(err)
	}

	slog.Info("Making test request", "method", method, "endpoint", endpoint, "headers", headers, "body", string(jsonBody))

	if len(jsonBody) > 0 {
		req, err = http.NewRequest(method, endpoint, bytes.NewBuffer(jsonBody))
	} else {
		req, err = http.NewRequest(method, endpoint, nil)
	}
	assert.NoError(err)

	for key, value := range headers {
		req.Header.Set(key, value)
	}
	server.router.ServeHTTP(w, req)

	return w
}
