package cli

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/narrative/pkg/graph"
	"github.com/matzehuels/narrative/pkg/source/sqlite"
)

const testRecords = `[
{"timestamp":"2011-08-22T09:00:00Z","text":"hurricane irene heads for the coast #irene","author":"weather"},
{"timestamp":"2011-08-22T10:00:00Z","text":"city orders evacuations ahead of hurricane irene #irene","author":"city"},
{"timestamp":"2011-08-22T11:00:00Z","text":"hurricane irene evacuations: shelters open downtown #irene","author":"news"},
{"timestamp":"2011-08-22T12:00:00Z","text":"shelters open downtown as hurricane irene nears #irene","author":"news"},
{"timestamp":"2011-08-22T13:00:00Z","text":"new phone announced with a bigger screen","author":"tech"}
]`

// run executes the CLI with args and a cache below a temporary directory.
func run(t *testing.T, args ...string) error {
	t.Helper()
	root := New(io.Discard, LogInfo).RootCommand()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	return root.Execute()
}

func writeRecords(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "posts.json")
	if err := os.WriteFile(path, []byte(testRecords), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestThreadsQueryDot(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	input := writeRecords(t)
	out := filepath.Join(t.TempDir(), "result.json")

	if err := run(t, "threads", "-i", input, "--anchor", "2", "-o", out); err != nil {
		t.Fatalf("threads: %v", err)
	}
	res, err := graph.ReadResultFile(out)
	if err != nil {
		t.Fatalf("read result: %v", err)
	}
	if res.Anchor != 2 {
		t.Errorf("anchor = %d, want 2", res.Anchor)
	}

	if err := run(t, "query", out); err != nil {
		t.Errorf("query (edge list): %v", err)
	}
	if edges := res.Edges(); len(edges) > 0 {
		if err := run(t, "query", out, edges[0].String(), "--json"); err != nil {
			t.Errorf("query %s: %v", edges[0], err)
		}
		// The result is also reachable by ID through the cache.
		if err := run(t, "query", res.ID, edges[0].String()); err != nil {
			t.Errorf("query by id: %v", err)
		}
	}
	if err := run(t, "query", out, "not-an-edge"); err == nil {
		t.Error("query with a malformed edge should fail")
	}

	dot := filepath.Join(t.TempDir(), "tree.dot")
	if err := run(t, "dot", out, "--view", "tree", "-o", dot); err != nil {
		t.Fatalf("dot: %v", err)
	}
	data, err := os.ReadFile(dot)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "digraph") {
		t.Errorf("dot output = %q", data)
	}
	if err := run(t, "dot", out, "--view", "sideways"); err == nil {
		t.Error("dot with an unknown view should fail")
	}
	if err := run(t, "dot", out, "-f", "gif"); err == nil {
		t.Error("dot with an unknown format should fail")
	}
}

func TestThreadsInvalidAnchor(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	input := writeRecords(t)
	err := run(t, "threads", "-i", input, "--anchor", "42", "--no-cache", "-o", filepath.Join(t.TempDir(), "r.json"))
	if err == nil || !strings.Contains(err.Error(), "INVALID_ANCHOR") {
		t.Errorf("error = %v, want INVALID_ANCHOR", err)
	}
}

func TestImportThenThreadsFromSQLite(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	input := writeRecords(t)
	db := filepath.Join(t.TempDir(), "posts.db")

	if err := run(t, "import", input, "--db", db); err != nil {
		t.Fatalf("import: %v", err)
	}
	if err := run(t, "import", input, "--db", db, "--replace"); err != nil {
		t.Fatalf("import --replace: %v", err)
	}

	store, err := sqlite.Open(db)
	if err != nil {
		t.Fatal(err)
	}
	n, err := store.Count(t.Context())
	store.Close()
	if err != nil || n != 5 {
		t.Fatalf("store holds %d records (err %v), want 5", n, err)
	}

	out := filepath.Join(t.TempDir(), "result.json")
	if err := run(t, "threads", "--sqlite", db, "--anchor", "1", "-o", out); err != nil {
		t.Fatalf("threads --sqlite: %v", err)
	}
	if err := run(t, "threads", "--sqlite", db, "-i", input, "--anchor", "1"); err == nil {
		t.Error("two sources should be rejected")
	}
	if err := run(t, "import", input); err == nil {
		t.Error("import without a target should fail")
	}
}

func TestConfigFile(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	input := writeRecords(t)
	dir := t.TempDir()
	cfg := filepath.Join(dir, "narrative.toml")
	body := "[engine]\ndag_edge_threshold = 0.2\n\n[source]\ninput = \"" + filepath.ToSlash(input) + "\"\n"
	if err := os.WriteFile(cfg, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(dir, "result.json")
	if err := run(t, "--config", cfg, "threads", "--anchor", "2", "-o", out); err != nil {
		t.Fatalf("threads with config: %v", err)
	}
	res, err := graph.ReadResultFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if res.Options.DAGEdgeThreshold != 0.2 {
		t.Errorf("edge threshold = %v, want 0.2 from the config file", res.Options.DAGEdgeThreshold)
	}

	zero := filepath.Join(dir, "zero.json")
	if err := run(t, "--config", cfg, "threads", "--anchor", "2", "--text-threshold", "0", "-o", zero); err != nil {
		t.Fatalf("threads with a zero threshold: %v", err)
	}
	if res, err = graph.ReadResultFile(zero); err != nil {
		t.Fatal(err)
	}
	if res.Options.TextSimilarityThreshold != 0 {
		t.Errorf("text threshold = %v, want the 0 given on the command line", res.Options.TextSimilarityThreshold)
	}

	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(bad, []byte("[engine]\ndag_edge_threshold = 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := run(t, "--config", bad, "threads", "-i", input, "--anchor", "2"); err == nil {
		t.Error("out of range threshold in config should fail")
	}
}

func TestSourceFlagsMerge(t *testing.T) {
	file := sourceFlags{SQLite: "posts.db", StopWords: []string{"rt"}}

	got := sourceFlags{}.merge(file)
	if got.SQLite != "posts.db" || len(got.StopWords) != 1 {
		t.Errorf("merge into empty flags = %+v", got)
	}

	got = sourceFlags{Input: "posts.json"}.merge(file)
	if got.SQLite != "" || got.count() != 1 {
		t.Errorf("flag source should win over the config file: %+v", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"  spaced \n out  ", 20, "spaced out"},
		{"abcdefghij", 5, "abcd…"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestThreadsFromURL(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(testRecords))
	}))
	defer srv.Close()

	out := filepath.Join(t.TempDir(), "result.json")
	if err := run(t, "threads", "--url", srv.URL, "--anchor", "2", "-o", out); err != nil {
		t.Fatalf("threads --url: %v", err)
	}
	if err := run(t, "threads", "--url", "ftp://example.org/posts.json", "--anchor", "2"); err == nil {
		t.Error("non-HTTP URL should be rejected")
	}
}

func TestCompletion(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	out := filepath.Join(t.TempDir(), "result.json")
	if err := run(t, "threads", "-i", writeRecords(t), "--anchor", "2", "-o", out); err != nil {
		t.Fatal(err)
	}
	res, err := graph.ReadResultFile(out)
	if err != nil {
		t.Fatal(err)
	}

	got, _ := completeEdges(nil, []string{out}, "")
	if len(got) != len(res.Edges()) {
		t.Errorf("completeEdges() = %v, want the %d tree edges", got, len(res.Edges()))
	}
	if got, _ := completeEdges(nil, []string{out}, "nope"); len(got) != 0 {
		t.Errorf("completeEdges() with unmatched prefix = %v", got)
	}

	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		if err := run(t, "completion", shell); err != nil {
			t.Errorf("completion %s: %v", shell, err)
		}
	}
	if err := run(t, "completion", "tcsh"); err == nil {
		t.Error("unknown shell should be rejected")
	}
}
