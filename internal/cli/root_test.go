package cli

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/matzehuels/narrative/pkg/buildinfo"
)

func TestSetVersion(t *testing.T) {
	v, c, d := buildinfo.Version, buildinfo.Commit, buildinfo.Date
	defer SetVersion(v, c, d)

	SetVersion("1.0.0", "abc123", "2024-01-01")
	if buildinfo.Version != "1.0.0" || buildinfo.Commit != "abc123" || buildinfo.Date != "2024-01-01" {
		t.Errorf("buildinfo = %s", buildinfo.String())
	}
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()

	want := []string{"threads", "query", "dot", "browse", "serve", "import", "cache", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
	for _, flag := range []string{"verbose", "config"} {
		if root.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("persistent flag --%s missing", flag)
		}
	}
}

func TestVerboseRaisesLogLevel(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, LogInfo)
	root := c.RootCommand()
	root.SetOut(io.Discard)
	root.SetArgs([]string{"-v", "cache", "path"})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	if c.Logger.GetLevel() != LogDebug {
		t.Errorf("level = %v, want debug", c.Logger.GetLevel())
	}
}

func TestThreadsRequiresSource(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"threads", "--anchor", "0"})
	err := root.Execute()
	if err == nil || !strings.Contains(err.Error(), "no item source") {
		t.Errorf("threads without a source: error = %v", err)
	}
}
