package testutil

import (
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

// SourcePath is the path prefix the fake source serves, mirroring FRED's
// graph download endpoint.
const SourcePath = "/graph/fredgraph"

// SourceResponse configures what the fake source returns for one variant.
type SourceResponse struct {
	Status int
	Body   []byte
	Delay  time.Duration

	// Truncated announces more bytes than Body holds and drops the
	// connection after writing Body.
	Truncated bool
}

// SourceServer is an httptest server standing in for the remote data source.
type SourceServer struct {
	*httptest.Server

	mu        sync.Mutex
	responses map[string]SourceResponse
	requests  []string
}

// NewSourceServer starts a fake source. Responses are keyed by variant
// extension (e.g. ".csv"); unknown variants get 404.
// The server is closed on test cleanup.
func NewSourceServer(t *testing.T, responses map[string]SourceResponse) *SourceServer {
	t.Helper()

	s := &SourceServer{responses: responses}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// BaseURL returns the URL the variant extension is appended to.
func (s *SourceServer) BaseURL() string {
	return s.URL + SourcePath
}

// Requests returns the request URIs received so far.
func (s *SourceServer) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

func (s *SourceServer) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.requests = append(s.requests, r.URL.RequestURI())
	resp, ok := s.responses[strings.TrimPrefix(r.URL.Path, SourcePath)]
	s.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}

	if resp.Delay > 0 {
		time.Sleep(resp.Delay)
	}

	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}

	if resp.Truncated {
		w.Header().Set("Content-Length", strconv.Itoa(len(resp.Body)+1000))
	}
	w.WriteHeader(status)
	_, _ = w.Write(resp.Body)

	if resp.Truncated {
		dropConnection(w)
	}
}

func dropConnection(w http.ResponseWriter) {
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	hj, ok := w.(http.Hijacker)
	if !ok {
		return
	}
	conn, _, err := hj.Hijack()
	if err != nil {
		return
	}
	_ = conn.Close()
}

// GenerateTestBucketName generates a valid, unique test bucket name.
func GenerateTestBucketName(prefix string) string {
	return fmt.Sprintf("%s-%d-%d", prefix, time.Now().Unix(), rand.Intn(100000))
}
