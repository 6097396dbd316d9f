package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/ui/tui"
	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/wizard"
)

// backend mocks the console REST API and records request bodies by path.
type backend struct {
	server *httptest.Server
	mux    *http.ServeMux

	mu     sync.Mutex
	bodies map[string][]map[string]any
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{mux: http.NewServeMux(), bodies: make(map[string][]map[string]any)}
	b.server = httptest.NewServer(b.mux)
	t.Cleanup(b.server.Close)
	return b
}

// handle answers path with body and records what was posted to it.
func (b *backend) handle(path string, body any) {
	b.mux.HandleFunc("/api"+path, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			var in map[string]any
			data, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(data, &in)
			b.mu.Lock()
			b.bodies[path] = append(b.bodies[path], in)
			b.mu.Unlock()
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	})
}

func (b *backend) posted(path string) []map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bodies[path]
}

func (b *backend) withClouds() *backend {
	b.handle("/list", map[string]any{"success": true, "instances": []map[string]any{
		{"name": "web-1", "zone": "us-central1-a", "status": "RUNNING", "cpu": 2, "ram": 4},
		{"name": "web-2", "zone": "us-central1-a", "status": "RUNNING", "cpu": 2, "ram": 4},
	}})
	b.handle("/aws/list", map[string]any{"success": true, "instances": []map[string]any{
		{"InstanceId": "i-001", "Name": "api-1", "State": map[string]any{"Name": "running"}, "cpu": 2, "ram": 1},
	}})
	return b
}

// testGlobals writes a config pointing at b and captures the output.
func testGlobals(t *testing.T, b *backend, extra string) (Globals, *bytes.Buffer) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := "api:\n  base_url: " + b.server.URL + "/api\npreferences:\n  in_memory: true\n" + extra
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))

	var out bytes.Buffer
	return Globals{
		ConfigPath: path,
		In:         strings.NewReader(""),
		Out:        &out,
		ErrOut:     io.Discard,
	}, &out
}

// nonInteractive pins the terminal detection for the duration of the test.
func nonInteractive(t *testing.T) {
	t.Helper()
	orig := isInteractive
	isInteractive = func() bool { return false }
	t.Cleanup(func() { isInteractive = orig })
}

func TestParseOutputFormat(t *testing.T) {
	for _, s := range []string{"", "table", "json", "yaml"} {
		_, err := parseOutputFormat(s)
		assert.NoError(t, err, s)
	}
	_, err := parseOutputFormat("xml")
	assert.ErrorContains(t, err, "unknown output format")
}

func TestWriteStructured_YAMLFollowsJSONTags(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeStructured(&buf, OutputYAML, PrefsView{Consent: "accepted", WelcomeDismissed: true}))
	assert.Equal(t, "consent: accepted\nwelcome_dismissed: true\n", buf.String())
}

func TestParseClusterKey(t *testing.T) {
	k, err := ParseClusterKey("web@gcp")
	require.NoError(t, err)
	assert.Equal(t, "web@gcp", k.String())

	k, err = ParseClusterKey("a@b@aws")
	require.NoError(t, err)
	assert.Equal(t, "a@b", k.Name)

	for _, bad := range []string{"web", "@gcp", "web@", "web@azure"} {
		_, err := ParseClusterKey(bad)
		assert.Error(t, err, bad)
	}
}

func TestNewApp_InvalidOutput(t *testing.T) {
	b := newBackend(t)
	g, _ := testGlobals(t, b, "")
	g.Output = "xml"
	_, err := newApp(context.Background(), g)
	require.Error(t, err)
}

func TestNewApp_FlagsOverrideConfig(t *testing.T) {
	b := newBackend(t)
	g, _ := testGlobals(t, b, "")
	g.APIURL = "http://example.invalid/api"

	a, err := newApp(context.Background(), g)
	require.NoError(t, err)
	defer a.close()
	assert.Equal(t, "http://example.invalid/api", a.api.BaseURL())
}

func TestClusters(t *testing.T) {
	b := newBackend(t).withClouds()
	g, out := testGlobals(t, b, "")

	require.NoError(t, Clusters(context.Background(), g, ClustersOptions{}))
	assert.Contains(t, out.String(), "web")
	assert.Contains(t, out.String(), "api")
}

func TestClusters_SelectJSON(t *testing.T) {
	b := newBackend(t).withClouds()
	g, out := testGlobals(t, b, "")
	g.Output = OutputJSON

	require.NoError(t, Clusters(context.Background(), g, ClustersOptions{Select: "web@gcp"}))

	var got struct {
		Name      string           `json:"name"`
		Provider  string           `json:"provider"`
		Instances []map[string]any `json:"instances"`
		CPUTotal  int              `json:"cpu_total"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "web", got.Name)
	assert.Equal(t, "gcp", got.Provider)
	assert.Len(t, got.Instances, 2)
	assert.Equal(t, 4, got.CPUTotal)
}

func TestClusters_SelectMissing(t *testing.T) {
	b := newBackend(t).withClouds()
	g, _ := testGlobals(t, b, "")
	require.Error(t, Clusters(context.Background(), g, ClustersOptions{Select: "db@aws"}))
}

func TestRunClusterAction_StopUsesNames(t *testing.T) {
	b := newBackend(t).withClouds()
	b.handle("/action/stop", map[string]any{"success": true})
	g, out := testGlobals(t, b, "")

	require.NoError(t, RunClusterAction(context.Background(), g, ClusterStop, "web", "gcp", false))

	posted := b.posted("/action/stop")
	require.Len(t, posted, 2)
	ids := []any{posted[0]["id"], posted[1]["id"]}
	assert.ElementsMatch(t, []any{"web-1", "web-2"}, ids)
	assert.Contains(t, out.String(), "Stopped web@gcp: 2 instance(s)")
}

func TestRunClusterAction_DeleteNeedsYesWithoutTerminal(t *testing.T) {
	nonInteractive(t)
	b := newBackend(t).withClouds()
	b.handle("/aws/delete", map[string]any{"success": true})
	g, _ := testGlobals(t, b, "")

	err := RunClusterAction(context.Background(), g, ClusterDelete, "api", "aws", false)
	require.ErrorContains(t, err, "refusing without --yes")
	assert.Empty(t, b.posted("/aws/delete"))

	require.NoError(t, RunClusterAction(context.Background(), g, ClusterDelete, "api", "aws", true))
	posted := b.posted("/aws/delete")
	require.Len(t, posted, 1)
	assert.Equal(t, "i-001", posted[0]["id"])
}

func TestRunClusterAction_DeclinedPrompt(t *testing.T) {
	orig, origConfirm := isInteractive, confirmPrompt
	isInteractive = func() bool { return true }
	confirmPrompt = func(context.Context, string, string) (bool, error) { return false, nil }
	defer func() { isInteractive, confirmPrompt = orig, origConfirm }()

	b := newBackend(t).withClouds()
	b.handle("/delete", map[string]any{"success": true})
	g, out := testGlobals(t, b, "")

	require.NoError(t, RunClusterAction(context.Background(), g, ClusterDelete, "web", "gcp", false))
	assert.Contains(t, out.String(), "Cancelled.")
	assert.Empty(t, b.posted("/delete"))
}

func TestInstances(t *testing.T) {
	b := newBackend(t)
	b.handle("/proxmox/list", map[string]any{"success": true, "vms": []map[string]any{
		{"vmid": 101, "name": "lab-1", "node": "pve1", "type": "qemu", "status": "running", "cpu": 2, "memory": 2048, "ip": "10.0.0.11"},
	}})
	g, out := testGlobals(t, b, "")

	require.NoError(t, Instances(context.Background(), g, "proxmox", ""))
	assert.Contains(t, out.String(), "lab-1")
	assert.Contains(t, out.String(), "10.0.0.11")
}

func TestInstances_Unsuccessful(t *testing.T) {
	b := newBackend(t)
	b.handle("/list", map[string]any{"success": false, "error": "no credentials"})
	g, _ := testGlobals(t, b, "")

	err := Instances(context.Background(), g, "gcp", "")
	require.ErrorContains(t, err, "no credentials")
}

func TestInstanceAction(t *testing.T) {
	b := newBackend(t)
	b.handle("/proxmox/restart", map[string]any{"success": true})
	b.handle("/action/start", map[string]any{"success": false, "error": "quota"})
	g, out := testGlobals(t, b, "")

	require.NoError(t, InstanceAction(context.Background(), g, "restart", "proxmox", "lab-1", "", false))
	assert.Contains(t, out.String(), "Restarted lab-1")

	err := InstanceAction(context.Background(), g, "start", "aws", "i-001", "eu-west-1", false)
	require.ErrorContains(t, err, "failed to start i-001: quota")
	posted := b.posted("/action/start")
	require.Len(t, posted, 1)
	assert.Equal(t, "eu-west-1", posted[0]["region"])

	require.ErrorIs(t, InstanceAction(context.Background(), g, "restart", "gcp", "web-1", "", false), ErrRestartUnsupported)
}

func TestCreate_Proxmox(t *testing.T) {
	b := newBackend(t)
	b.handle("/proxmox/create", map[string]any{"success": true, "vmid": 120, "name": "lab", "ip": "10.0.0.20"})
	g, out := testGlobals(t, b, "")

	require.NoError(t, Create(context.Background(), g, CreateOptions{
		Provider: "proxmox", Name: "lab", Cores: 4, MemoryMB: 4096, DiskGB: 40,
	}))

	posted := b.posted("/proxmox/create")
	require.Len(t, posted, 1)
	assert.Equal(t, "lab", posted[0]["name"])
	assert.EqualValues(t, 4, posted[0]["cores"])
	assert.EqualValues(t, 4096, posted[0]["memory"])
	assert.EqualValues(t, 40, posted[0]["disk_size"])
	assert.Contains(t, out.String(), "Created lab on proxmox")
	assert.Contains(t, out.String(), "10.0.0.20")
}

func TestCreate_Swarm(t *testing.T) {
	b := newBackend(t)
	b.handle("/cluster/create", map[string]any{"success": true})
	g, _ := testGlobals(t, b, "")

	require.NoError(t, Create(context.Background(), g, CreateOptions{
		Provider: "proxmox", Name: "apps", Count: 3, Stack: wizard.SwarmStack,
	}))

	posted := b.posted("/cluster/create")
	require.Len(t, posted, 1)
	manager := posted[0]["manager"].(map[string]any)
	assert.Equal(t, "apps-manager", manager["name"])
	workers := posted[0]["workers"].([]any)
	require.Len(t, workers, 1)
	assert.EqualValues(t, 2, workers[0].(map[string]any)["count"])
}

func TestCreate_SSHKey(t *testing.T) {
	b := newBackend(t)
	b.handle("/proxmox/create", map[string]any{"success": true})
	g, out := testGlobals(t, b, "")
	keyPath := filepath.Join(t.TempDir(), "id_lab")

	require.NoError(t, Create(context.Background(), g, CreateOptions{
		Provider: "proxmox", Name: "lab", GenerateSSHKey: true, KeyPath: keyPath,
	}))

	posted := b.posted("/proxmox/create")
	require.Len(t, posted, 1)
	assert.True(t, strings.HasPrefix(posted[0]["ssh_key"].(string), "ssh-ed25519 "))
	assert.FileExists(t, keyPath)
	assert.FileExists(t, keyPath+".pub")
	assert.Contains(t, out.String(), "SSH key written to "+keyPath)

	err := Create(context.Background(), g, CreateOptions{Provider: "gcp", Name: "web", GenerateSSHKey: true})
	require.ErrorContains(t, err, "only supported on proxmox")
}

func TestCreate_Hybrid(t *testing.T) {
	b := newBackend(t)
	b.handle("/create", map[string]any{"success": true, "name": "edge"})
	b.handle("/aws/create", map[string]any{"success": false, "error": "no quota"})
	g, out := testGlobals(t, b, "")

	require.NoError(t, Create(context.Background(), g, CreateOptions{Provider: wizard.Hybrid, Name: "edge", Count: 2}))
	assert.Contains(t, out.String(), "Created edge on gcp")
	assert.Contains(t, out.String(), "aws: no quota")
	require.Len(t, b.posted("/create"), 1)
	require.Len(t, b.posted("/aws/create"), 1)
}

func TestCreate_HybridRejectsLocation(t *testing.T) {
	b := newBackend(t)
	g, _ := testGlobals(t, b, "")

	err := Create(context.Background(), g, CreateOptions{Provider: wizard.Hybrid, Name: "edge", Location: "europe-west1-b"})
	require.EqualError(t, err, "--location does not apply to --provider hybrid")
	assert.Empty(t, b.posted("/create"))
	assert.Empty(t, b.posted("/aws/create"))
}

func TestCreate_Failure(t *testing.T) {
	b := newBackend(t)
	b.handle("/aws/create", map[string]any{"success": false, "error": "bad type"})
	g, _ := testGlobals(t, b, "")

	err := Create(context.Background(), g, CreateOptions{Provider: "aws", Name: "api"})
	require.ErrorContains(t, err, "bad type")
}

func TestCreate_InvalidFlags(t *testing.T) {
	b := newBackend(t)
	g, _ := testGlobals(t, b, "")
	err := Create(context.Background(), g, CreateOptions{Provider: "proxmox", Name: "Bad_Name"})
	require.Error(t, err)
}

func TestCreate_Interactive(t *testing.T) {
	orig, origWizard := isInteractive, runWizard
	isInteractive = func() bool { return true }
	runWizard = func(_ context.Context, initial wizard.Result, _ wizard.Catalog) (*wizard.Result, error) {
		initial.Target = "gcp"
		initial.Name = "picked"
		return &initial, nil
	}
	defer func() { isInteractive, runWizard = orig, origWizard }()

	b := newBackend(t)
	b.handle("/create", map[string]any{"success": true})
	g, _ := testGlobals(t, b, "")

	require.NoError(t, Create(context.Background(), g, CreateOptions{Interactive: true}))
	posted := b.posted("/create")
	require.Len(t, posted, 1)
	assert.Equal(t, "picked", posted[0]["name"])
}

func TestCreate_InteractiveNeedsTerminal(t *testing.T) {
	nonInteractive(t)
	b := newBackend(t)
	g, _ := testGlobals(t, b, "")
	require.ErrorContains(t, Create(context.Background(), g, CreateOptions{Interactive: true}), "requires a terminal")
}

func TestCatalog(t *testing.T) {
	b := newBackend(t)
	b.mux.HandleFunc("/api/instance-types/aws", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("cpu"))
		assert.Equal(t, "eu-west-1", r.URL.Query().Get("region"))
		_ = json.NewEncoder(w).Encode(map[string]any{"instance_types": []any{
			map[string]any{"instance_type": "t3.medium", "vcpus": 2, "memory_gb": 4},
		}})
	})
	g, out := testGlobals(t, b, "")

	require.NoError(t, Catalog(context.Background(), g, CatalogOptions{Provider: "aws", CPU: 2, Region: "eu-west-1"}))
	assert.Contains(t, out.String(), "t3.medium")

	require.Error(t, Catalog(context.Background(), g, CatalogOptions{Provider: "proxmox"}))
}

func TestCredentials(t *testing.T) {
	b := newBackend(t)
	b.handle("/credentials", map[string]any{"success": true, "credentials": map[string]any{
		"username": "root", "password": "pw", "ip": "10.0.0.7", "provider": "proxmox",
	}})
	g, out := testGlobals(t, b, "")

	require.NoError(t, Credentials(context.Background(), g, "vm-7"))
	assert.Contains(t, out.String(), "ssh root@10.0.0.7")
}

func TestPrefs(t *testing.T) {
	b := newBackend(t)
	dir := filepath.Join(t.TempDir(), "prefs")
	g, out := testGlobals(t, b, "")
	require.NoError(t, os.WriteFile(g.ConfigPath, []byte("preferences:\n  path: "+dir+"\n"), 0o600))

	require.NoError(t, SetConsent(context.Background(), g, "accept"))
	assert.Contains(t, out.String(), "Consent accepted (valid for 365 days)")

	out.Reset()
	g.Output = OutputJSON
	require.NoError(t, ShowPrefs(context.Background(), g))
	var view PrefsView
	require.NoError(t, json.Unmarshal(out.Bytes(), &view))
	assert.Equal(t, "accepted", view.Consent)
	assert.False(t, view.WelcomeDismissed)

	require.Error(t, SetConsent(context.Background(), g, "maybe"))
}

func TestAsk_Informational(t *testing.T) {
	nonInteractive(t)
	b := newBackend(t)
	b.handle("/ai/ask", map[string]any{"response": "You have two instances."})
	g, out := testGlobals(t, b, "")

	require.NoError(t, Ask(context.Background(), g, "how many?", false))
	assert.Contains(t, out.String(), "You have two instances.")
	assert.NotContains(t, out.String(), "how many?")
}

func TestAsk_ProposalWithoutYes(t *testing.T) {
	nonInteractive(t)
	b := newBackend(t)
	b.handle("/ai/ask", map[string]any{"response": `{"command":"delete_cluster","explanation":"remove web","parameters":{}}`})
	b.handle("/ai/execute", map[string]any{"success": true})
	g, out := testGlobals(t, b, "")

	require.NoError(t, Ask(context.Background(), g, "delete web", false))
	assert.Contains(t, out.String(), "📋 remove web")
	assert.Contains(t, out.String(), "Re-run with --yes")
	assert.Empty(t, b.posted("/ai/execute"))
}

func TestAsk_ExecutesWithYes(t *testing.T) {
	b := newBackend(t).withClouds()
	b.handle("/ai/ask", map[string]any{"response": `{"command":"create_cluster","explanation":"Create 2 VMs","parameters":{"gcp":{"count":2}}}`})
	b.handle("/ai/execute", map[string]any{"success": true, "explanation": "Cluster created"})
	g, out := testGlobals(t, b, "")

	require.NoError(t, Ask(context.Background(), g, "two vms", true))

	posted := b.posted("/ai/execute")
	require.Len(t, posted, 1)
	assert.Equal(t, "create_cluster", posted[0]["command"])

	got := out.String()
	assert.Contains(t, got, "Cluster created")
	// The redirect lists the clusters after the outcome.
	assert.Greater(t, strings.Index(got, "web"), strings.Index(got, "Cluster created"))
}

func TestAsk_ExecutionFailure(t *testing.T) {
	b := newBackend(t)
	b.handle("/ai/ask", map[string]any{"response": `{"command":"stop_cluster","explanation":"stop web","parameters":{}}`})
	b.handle("/ai/execute", map[string]any{"success": false, "error": "quota exceeded"})
	g, out := testGlobals(t, b, "")

	require.ErrorIs(t, Ask(context.Background(), g, "stop web", true), ErrExecutionFailed)
	assert.Contains(t, out.String(), "quota exceeded")
}

func TestChat_LineMode(t *testing.T) {
	nonInteractive(t)
	b := newBackend(t)
	b.handle("/ai/ask", map[string]any{"response": "Hi there."})
	g, out := testGlobals(t, b, "")
	g.In = strings.NewReader("hello\n/quit\n")
	save := filepath.Join(t.TempDir(), "chat.json")

	require.NoError(t, Chat(context.Background(), g, ChatOptions{Save: save}))
	assert.Contains(t, out.String(), "Hello!")
	assert.Contains(t, out.String(), "Hi there.")
	assert.Contains(t, out.String(), "Transcript saved to "+save)
	assert.FileExists(t, save)
}

func TestChat_UsesTUIOnTerminal(t *testing.T) {
	orig, origConfirm, origChat := isInteractive, confirmPrompt, runChat
	isInteractive = func() bool { return true }
	asked := 0
	confirmPrompt = func(context.Context, string, string) (bool, error) {
		asked++
		return true, nil
	}
	called := false
	runChat = func(_ context.Context, session tui.Session, _ tui.ClusterSource, nav *tui.ProgramNavigator) error {
		called = true
		assert.NotNil(t, nav)
		assert.Len(t, session.Log().Messages(), 3)
		return nil
	}
	defer func() { isInteractive, confirmPrompt, runChat = orig, origConfirm, origChat }()

	b := newBackend(t)
	g, _ := testGlobals(t, b, "")
	require.NoError(t, Chat(context.Background(), g, ChatOptions{}))
	assert.True(t, called)
	assert.Equal(t, 1, asked)
}

// fakeArchive records uploads.
type fakeArchive struct {
	puts map[string][]byte
}

func (f *fakeArchive) KeyFor(t time.Time) string {
	return "transcripts/" + t.UTC().Format("20060102") + ".json"
}

func (f *fakeArchive) EnsureBucket(context.Context) error { return nil }

func (f *fakeArchive) PutTranscript(_ context.Context, name string, data []byte) (string, error) {
	if f.puts == nil {
		f.puts = make(map[string][]byte)
	}
	key := "transcripts/" + filepath.Base(name)
	f.puts[key] = data
	return key, nil
}

func (f *fakeArchive) ListTranscripts(context.Context) ([]string, error) {
	keys := make([]string, 0, len(f.puts))
	for k := range f.puts {
		keys = append(keys, k)
	}
	return keys, nil
}

func withFakeArchive(t *testing.T) *fakeArchive {
	t.Helper()
	fa := &fakeArchive{}
	orig := newArchive
	newArchive = func(*app) (Archive, error) { return fa, nil }
	t.Cleanup(func() { newArchive = orig })
	return fa
}

func TestPushTranscript(t *testing.T) {
	fa := withFakeArchive(t)
	b := newBackend(t)
	g, out := testGlobals(t, b, "")

	path := filepath.Join(t.TempDir(), "chat.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"exported_at":"2026-01-02T03:04:05Z","messages":[]}`), 0o600))

	require.NoError(t, PushTranscript(context.Background(), g, path))
	assert.Contains(t, fa.puts, "transcripts/chat.json")
	assert.Contains(t, out.String(), "Transcript uploaded to transcripts/chat.json")

	out.Reset()
	require.NoError(t, ListTranscripts(context.Background(), g))
	assert.Contains(t, out.String(), "transcripts/chat.json")

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("not json"), 0o600))
	require.Error(t, PushTranscript(context.Background(), g, bad))
}

func TestChat_Archive(t *testing.T) {
	nonInteractive(t)
	fa := withFakeArchive(t)
	b := newBackend(t)
	g, out := testGlobals(t, b, "")
	g.In = strings.NewReader("/quit\n")

	require.NoError(t, Chat(context.Background(), g, ChatOptions{Archive: true}))
	require.Len(t, fa.puts, 1)
	assert.Contains(t, out.String(), "Transcript uploaded to transcripts/")
}

func TestNewArchive_NoBucket(t *testing.T) {
	b := newBackend(t)
	g, _ := testGlobals(t, b, "")
	a, err := newApp(context.Background(), g)
	require.NoError(t, err)
	defer a.close()

	_, err = newArchive(a)
	require.Error(t, err)
}
