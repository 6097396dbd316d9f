package provider

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/platform/api"
)

// testServer mocks the console backend and records request bodies by path.
type testServer struct {
	server *httptest.Server
	mux    *http.ServeMux

	mu     sync.Mutex
	bodies map[string][]map[string]any
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{mux: http.NewServeMux(), bodies: make(map[string][]map[string]any)}
	ts.server = httptest.NewServer(ts.mux)
	t.Cleanup(ts.server.Close)
	return ts
}

func (ts *testServer) caller() *api.Client {
	return api.NewClient(ts.server.URL + "/api")
}

func (ts *testServer) registry(opts ...RegistryOption) *Registry {
	return NewRegistry(ts.caller(), opts...)
}

// handle registers a handler that records the JSON body before replying.
func (ts *testServer) handle(t *testing.T, path string, status int, reply any) {
	t.Helper()
	ts.mux.HandleFunc("/api"+path, func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			data, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			if len(data) > 0 {
				var body map[string]any
				require.NoError(t, json.Unmarshal(data, &body))
				ts.mu.Lock()
				ts.bodies[path] = append(ts.bodies[path], body)
				ts.mu.Unlock()
			}
		}
		jsonResponse(w, status, reply)
	})
}

func (ts *testServer) lastBody(path string) map[string]any {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	b := ts.bodies[path]
	if len(b) == 0 {
		return nil
	}
	return b[len(b)-1]
}

// jsonResponse writes a JSON response with the given status code and body.
func jsonResponse(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}
