package task

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/tidwall/gjson"
)

// HTTPTask is a concrete Task that issues one HTTP request per
// execution. It is the reference taskType ("http") shipped with
// VajraEdge; deployments register their own Factories for anything
// domain-specific.
type HTTPTask struct {
	client  *http.Client
	method  string
	url     string
	body    []byte
	headers map[string]string
}

// NewHTTPTaskFactory returns a Factory that builds HTTPTasks from
// taskParameters:
//
//	url       (required) the request URL
//	method    (default GET)
//	body      a literal request body, forwarded byte-for-byte
//	headers   a JSON object string, e.g. {"Content-Type":"application/json"}
//	timeoutMs per-request timeout override
//
// headers is read with tidwall/gjson rather than json.Unmarshal into a
// map, per SPEC_FULL.md's data-model note on parsing opaque embedded
// JSON documents carried in taskParameters.
func NewHTTPTaskFactory(base *http.Client) Factory {
	if base == nil {
		base = http.DefaultClient
	}
	return func(params map[string]string) (Task, error) {
		method := params["method"]
		if method == "" {
			method = http.MethodGet
		}

		url := params["url"]
		if url == "" {
			return nil, fmt.Errorf("http task: %q parameter is required", "url")
		}

		headers := make(map[string]string)
		if raw := params["headers"]; raw != "" {
			if !gjson.Valid(raw) {
				return nil, fmt.Errorf("http task: %q is not valid JSON", "headers")
			}
			gjson.Parse(raw).ForEach(func(key, value gjson.Result) bool {
				headers[key.String()] = value.String()
				return true
			})
		}

		timeout := base.Timeout
		if raw := params["timeoutMs"]; raw != "" {
			ms, err := strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("http task: %q must be an integer: %w", "timeoutMs", err)
			}
			timeout = time.Duration(ms) * time.Millisecond
		}

		return &HTTPTask{
			client:  &http.Client{Transport: base.Transport, Timeout: timeout},
			method:  method,
			url:     url,
			body:    []byte(params["body"]),
			headers: headers,
		}, nil
	}
}

// Execute issues the request and reduces it to a Result. TaskID is left
// unset, and nothing downstream fills it in.
func (t *HTTPTask) Execute(ctx context.Context) Result {
	start := time.Now()

	var bodyReader io.Reader
	if len(t.body) > 0 {
		bodyReader = bytes.NewReader(t.body)
	}

	req, err := http.NewRequestWithContext(ctx, t.method, t.url, bodyReader)
	if err != nil {
		return Result{LatencyNanos: time.Since(start).Nanoseconds(), Success: false, ErrorMessage: err.Error()}
	}
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}

	resp, err := t.client.Do(req)
	latency := time.Since(start).Nanoseconds()
	if err != nil {
		return Result{LatencyNanos: latency, Success: false, ErrorMessage: err.Error()}
	}
	defer resp.Body.Close()
	n, _ := io.Copy(io.Discard, resp.Body)

	success := resp.StatusCode < 400
	result := Result{
		LatencyNanos: latency,
		Success:      success,
		ResponseSize: n,
		Metadata:     map[string]string{"statusCode": strconv.Itoa(resp.StatusCode)},
	}
	if !success {
		result.ErrorMessage = fmt.Sprintf("unexpected status code %d", resp.StatusCode)
	}
	return result
}
