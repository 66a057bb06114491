package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_InitFailureIsServiceUnavailable(t *testing.T) {
	once = sync.Once{}
	once.Do(func() { initErr = errors.New("database unreachable") })
	t.Cleanup(func() { once, served, initErr = sync.Once{}, nil, nil })

	rec := httptest.NewRecorder()
	Handler(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusServiceUnavailable, body.Code)
	assert.Equal(t, "service unavailable", body.Message)
}
