package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/meghashyamc/rabbit/services/index"
	"github.com/stretchr/testify/require"
)

type indexResponse struct {
	Data   IndexResponse `json:"data"`
	Errors []string      `json:"errors"`
}

type statusResponse struct {
	Data   index.RequestStatus `json:"data"`
	Errors []string            `json:"errors"`
}

func TestHandleCreateIndexValidation(t *testing.T) {
	assert := require.New(t)
	server := setupTestServer(t, assert)

	for _, testCase := range createIndexHandlerTestCases {

		t.Run(testCase.name, func(t *testing.T) {
			assert := require.New(t)
			w := makeTestHTTPRequest(server, assert, http.MethodPost, "/index", testCase.requestHeaders, testCase.requestBody, testCase.queryParams)
			assert.Equal(testCase.expectedStatus, w.Code, fmt.Sprintf("response gotten was %s", w.Body.String()))
		})
	}
}

func TestHandleCreateIndex(t *testing.T) {
	assert := require.New(t)
	server := setupTestServer(t, assert)
	root := t.TempDir()
	writeTestFiles(assert, root)

	status := createIndex(assert, server, root)
	assert.Equal(index.StateComplete, status.State, status.Error)
	assert.NotNil(status.Report)
	assert.Equal(int64(indexedTestFiles), status.Report.Converted)

	numOfDocuments, err := server.searchDB.GetDocCount()
	assert.NoError(err, "could not get document count")
	assert.Equal(indexedTestFiles, int(numOfDocuments), "hidden files should not be indexed")

	status = createIndex(assert, server, root)
	assert.Equal(index.StateComplete, status.State, status.Error)
	assert.Zero(status.Report.Converted, "unchanged files should not be converted again")
	assert.Equal(int64(indexedTestFiles), status.Report.Skipped)
}

func TestHandleIndexStatus(t *testing.T) {
	assert := require.New(t)
	server := setupTestServer(t, assert)

	w := makeTestHTTPRequest(server, assert, http.MethodGet, "/index/not-a-uuid", nil, nil, nil)
	assert.Equal(http.StatusNotAcceptable, w.Code)

	w = makeTestHTTPRequest(server, assert, http.MethodGet, fmt.Sprintf("/index/%s", uuid.New()), nil, nil, nil)
	assert.Equal(http.StatusNotFound, w.Code)
}

// createIndex requests indexing of root and waits for the request to finish.
func createIndex(assert *require.Assertions, server *testServer, root string) index.RequestStatus {

	w := makeTestHTTPRequest(server, assert, http.MethodPost, "/index", defaultTestRequestHeaders, map[string]any{"path": root}, nil)
	assert.Equal(http.StatusAccepted, w.Code, fmt.Sprintf("response gotten was %s", w.Body.String()))

	actualResponse := indexResponse{}
	err := json.Unmarshal(w.Body.Bytes(), &actualResponse)
	assert.NoError(err, "could not unmarshal gotten response")
	requestID, err := uuid.Parse(actualResponse.Data.ID)
	assert.NoError(err, "got an error parsing gotten request id into UUID")

	maxWaitForIndexCreation := 10 * time.Second

	for startTime := time.Now().UTC(); time.Since(startTime) < maxWaitForIndexCreation; time.Sleep(50 * time.Millisecond) {
		w := makeTestHTTPRequest(server, assert, http.MethodGet, fmt.Sprintf("/index/%s", requestID), nil, nil, nil)
		if w.Code == http.StatusOK {
			status := statusResponse{}
			err := json.Unmarshal(w.Body.Bytes(), &status)
			assert.NoError(err, "could not unmarshal status response")
			return status.Data
		}
		assert.Equal(http.StatusAccepted, w.Code, fmt.Sprintf("response gotten was %s", w.Body.String()))
	}
	assert.Fail("timed out waiting for index creation: ", requestID.String())
	return index.RequestStatus{}
}
