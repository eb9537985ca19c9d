//go:build e2e
// +build e2e

package e2e

import (
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

// localDevToken matches the bearer token the local build target accepts.
const localDevToken = "sk_local_scatterbrain_dev"

type devStack struct {
	t      *testing.T
	client *resty.Client
}

// connect returns a client for the running stack, skipping the test when it is
// unreachable and waiting for it to report healthy otherwise.
func connect(t *testing.T) *devStack {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping in short mode")
	}
	base := os.Getenv("SCATTERBRAIN_API")
	if base == "" {
		base = "http://localhost:8080"
	}
	client := resty.New().
		SetBaseURL(base).
		SetTimeout(90 * time.Second).
		SetAuthToken(localDevToken).
		SetHeader("Content-Type", "application/json")

	if _, err := client.R().Get("/api/health"); err != nil {
		t.Skipf("service %s unreachable: %v", base, err)
	}
	s := &devStack{t: t, client: client}
	s.waitHealthy(30 * time.Second)
	return s
}

func (s *devStack) waitHealthy(timeout time.Duration) {
	s.t.Helper()
	var h struct {
		Status string `json:"status"`
	}
	require.Eventually(s.t, func() bool {
		resp, err := s.client.R().SetResult(&h).Get("/api/health")
		return err == nil && resp.StatusCode() == http.StatusOK && h.Status == "healthy"
	}, timeout, 200*time.Millisecond, "scatterbrain not healthy within %s", timeout)
}

// do sends body (if any) and returns the raw response without judging the status.
func (s *devStack) do(method, path string, body interface{}) *resty.Response {
	s.t.Helper()
	req := s.client.R()
	if body != nil {
		req.SetBody(body)
	}
	resp, err := req.Execute(method, path)
	require.NoError(s.t, err, "%s %s", method, path)
	return resp
}

// expectJSON sends the request, requires a 2xx and decodes the body into out.
func (s *devStack) expectJSON(method, path string, body, out interface{}) {
	s.t.Helper()
	req := s.client.R()
	if body != nil {
		req.SetBody(body)
	}
	if out != nil {
		req.SetResult(out)
	}
	resp, err := req.Execute(method, path)
	require.NoError(s.t, err, "%s %s", method, path)
	require.True(s.t, resp.IsSuccess(), "%s %s: http %d: %s", method, path, resp.StatusCode(), resp.String())
}
