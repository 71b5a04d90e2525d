// Copyright (C) 2026 Seedpost Labs (eng@seedpost.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seedpost/sentinel/services/safety_engine"
	"github.com/seedpost/sentinel/services/safety_engine/limits"
	"github.com/seedpost/sentinel/services/validator/datatypes"
	"github.com/seedpost/sentinel/services/validator/observability"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	limitSet, err := limits.Load()
	require.NoError(t, err)
	engine, err := safety_engine.NewEngine(limitSet)
	require.NoError(t, err)
	metrics := observability.NewValidatorMetrics(prometheus.NewRegistry())

	router := gin.New()
	router.POST("/v1/validate", HandleValidateBatch(engine, metrics))
	return router
}

func postJSON(router *gin.Engine, body []byte) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/validate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func testBody() map[string]any {
	return map[string]any{
		"conversations": []map[string]any{
			{
				"id":           "c1",
				"subreddit":    "homelab",
				"scheduled_at": "2026-03-01T09:00:00Z",
				"post": map[string]any{
					"persona_id": "alice",
					"content":    "Finally racked the new switch, cable management took all weekend",
				},
			},
		},
		"personas": []map[string]any{
			{"id": "alice", "display_name": "Alice", "formality": 0.4},
		},
	}
}

func TestHandleValidateBatch_Success(t *testing.T) {
	router := newTestRouter(t)
	body, _ := json.Marshal(testBody())

	w := postJSON(router, body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var response datatypes.ValidateBatchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.NotEmpty(t, response.RequestID)
	require.NotNil(t, response.Report)
	assert.Equal(t, 0, response.Report.Counts.PairsCompared)
	assert.Contains(t, response.Report.QualityScores, "c1")
}

func TestHandleValidateBatch_MalformedJSON(t *testing.T) {
	router := newTestRouter(t)
	w := postJSON(router, []byte(`{"conversations": [`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleValidateBatch_MissingArrays(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name   string
		mutate func(map[string]any)
	}{
		{"missing conversations", func(b map[string]any) { delete(b, "conversations") }},
		{"missing personas", func(b map[string]any) { delete(b, "personas") }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			body := testBody()
			tc.mutate(body)
			raw, _ := json.Marshal(body)
			w := postJSON(router, raw)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestHandleValidateBatch_MalformedTimestamp(t *testing.T) {
	router := newTestRouter(t)
	body := testBody()
	body["conversations"].([]map[string]any)[0]["scheduled_at"] = "tomorrow-ish"
	raw, _ := json.Marshal(body)

	w := postJSON(router, raw)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Invalid timestamp", response["error"])
}

func TestHandleValidateBatch_DanglingPersonaReference(t *testing.T) {
	router := newTestRouter(t)
	body := testBody()
	body["conversations"].([]map[string]any)[0]["post"].(map[string]any)["persona_id"] = "ghost"
	raw, _ := json.Marshal(body)

	w := postJSON(router, raw)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var response map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Contains(t, response["details"], "ghost")
}

func TestHandleValidateBatch_ReportIsDeterministic(t *testing.T) {
	router := newTestRouter(t)
	body, _ := json.Marshal(testBody())

	extract := func(w *httptest.ResponseRecorder) json.RawMessage {
		var envelope struct {
			Report json.RawMessage `json:"report"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
		return envelope.Report
	}

	first := postJSON(router, body)
	require.Equal(t, http.StatusOK, first.Code)
	second := postJSON(router, body)
	require.Equal(t, http.StatusOK, second.Code)

	// The envelope carries fresh ids and timestamps; the report inside
	// must serialize byte-identically.
	assert.Equal(t, string(extract(first)), string(extract(second)))
}
