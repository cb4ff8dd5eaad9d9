package grading

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPJudge calls a remote grading endpoint with bearer auth.
type HTTPJudge struct {
	endpoint   string
	token      string
	httpClient *http.Client
}

func NewHTTPJudge(endpoint, token string, httpClient *http.Client) *HTTPJudge {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPJudge{endpoint: strings.TrimSpace(endpoint), token: strings.TrimSpace(token), httpClient: httpClient}
}

func (j *HTTPJudge) Judge(ctx context.Context, req JudgeRequest) (Verdict, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Verdict{}, fmt.Errorf("encode judge request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, j.endpoint, bytes.NewReader(body))
	if err != nil {
		return Verdict{}, fmt.Errorf("build judge request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if j.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+j.token)
	}
	resp, err := j.httpClient.Do(httpReq)
	if err != nil {
		return Verdict{}, fmt.Errorf("judge request: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return Verdict{}, fmt.Errorf("read judge response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Verdict{}, fmt.Errorf("judge status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return parseVerdict(string(raw)), nil
}
