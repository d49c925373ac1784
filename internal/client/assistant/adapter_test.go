package assistantclient

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GregMSThompson/riskbi-backend/internal/dto"
	"github.com/GregMSThompson/riskbi-backend/internal/errs"
	"github.com/GregMSThompson/riskbi-backend/pkg/helpers"
)

func TestAskDecodesAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/ask", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "NPL?", body["question"])
		_, _ = w.Write([]byte(`{"message_id":"m1","sql":"select 1","data":[{"x":1}],"chart_type":"bar","summary":"ok","from_cache":true}`))
	}))
	defer srv.Close()

	out, err := NewAdapter(nil, srv.URL+"/", 0).Ask(helpers.TestCtx(), "NPL?")
	require.NoError(t, err)
	assert.Equal(t, "m1", out.MessageID)
	assert.True(t, out.FromCache)
	assert.Len(t, out.Data, 1)
}

func TestAskErrorDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail":"SQL 생성 실패"}`))
	}))
	defer srv.Close()

	_, err := NewAdapter(nil, srv.URL, 0).Ask(helpers.TestCtx(), "q")
	var ext *errs.ExternalServiceError
	require.True(t, errors.As(err, &ext))
	assert.Equal(t, "SQL 생성 실패", ext.Message)
	assert.False(t, ext.Transient)
}

func TestAskRetriesUnavailable(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"message_id":"m2"}`))
	}))
	defer srv.Close()

	out, err := NewAdapter(nil, srv.URL, 1).Ask(helpers.TestCtx(), "q")
	require.NoError(t, err)
	assert.Equal(t, "m2", out.MessageID)
	assert.Equal(t, int32(2), calls.Load())
}

func TestAskDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewAdapter(nil, srv.URL, 2).Ask(helpers.TestCtx(), "q")
	var ext *errs.ExternalServiceError
	require.True(t, errors.As(err, &ext))
	assert.Equal(t, int32(1), calls.Load())
}

func TestAskUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewAdapter(nil, url, 0).Ask(helpers.TestCtx(), "q")
	var ext *errs.ExternalServiceError
	require.True(t, errors.As(err, &ext))
	assert.True(t, ext.Transient)
}

func TestFeedbackPostsRating(t *testing.T) {
	var got dto.AssistantFeedback
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/feedback", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	err := NewAdapter(nil, srv.URL, 0).Feedback(helpers.TestCtx(), dto.AssistantFeedback{MessageID: "m1", Rating: dto.RatingUp})
	require.NoError(t, err)
	assert.Equal(t, dto.AssistantFeedback{MessageID: "m1", Rating: dto.RatingUp}, got)
}
