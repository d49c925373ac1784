package assistantclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/GregMSThompson/riskbi-backend/internal/dto"
	"github.com/GregMSThompson/riskbi-backend/internal/errs"
)

const serviceName = "assistant"

// Adapter talks to the natural-language-to-SQL assistant over HTTP.
type Adapter struct {
	client  *retryablehttp.Client
	baseURL string
}

// NewAdapter retries a request only when the service could not be reached
// or answered with a gateway error. retries is the number of extra attempts.
func NewAdapter(log *slog.Logger, baseURL string, retries int) *Adapter {
	rc := retryablehttp.NewClient()
	rc.RetryMax = retries
	rc.RetryWaitMin = 200 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.CheckRetry = retryOnUnavailable
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	if log != nil {
		rc.Logger = slog.NewLogLogger(log.Handler(), slog.LevelDebug)
	} else {
		rc.Logger = nil
	}
	return &Adapter{client: rc, baseURL: strings.TrimRight(baseURL, "/")}
}

func retryOnUnavailable(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}
	switch resp.StatusCode {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true, nil
	}
	return false, nil
}

// Ask sends a question. A service that cannot be reached yields a transient
// ExternalServiceError; an error response yields a non-transient one
// carrying the service's detail text.
func (a *Adapter) Ask(ctx context.Context, question string) (dto.AssistantAnswer, error) {
	var out dto.AssistantAnswer
	resp, err := a.post(ctx, "/api/ask", map[string]string{"question": question})
	if err != nil {
		return out, err
	}
	defer resp.Body.Close()

	if err := statusError(resp); err != nil {
		return out, err
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, errs.NewExternalServiceError(serviceName, "invalid assistant response", false, err)
	}
	return out, nil
}

// Feedback records a rating for an earlier answer.
func (a *Adapter) Feedback(ctx context.Context, fb dto.AssistantFeedback) error {
	resp, err := a.post(ctx, "/api/feedback", fb)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return statusError(resp)
}

func (a *Adapter) post(ctx context.Context, path string, body any) (*http.Response, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, errs.NewExternalServiceError(serviceName, "assistant service is unreachable", true, err)
	}
	return resp, nil
}

type errorBody struct {
	Detail string `json:"detail"`
}

func statusError(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	msg := "서버 오류"
	var body errorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		msg = body.Detail
		if msg == "" {
			msg = fmt.Sprintf("HTTP %d", resp.StatusCode)
		}
	}
	return errs.NewExternalServiceError(serviceName, msg, false, fmt.Errorf("assistant returned status %d", resp.StatusCode))
}
