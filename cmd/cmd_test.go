package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spiffcs/contribs/config"
	"github.com/spiffcs/contribs/internal/mail"
	"github.com/spiffcs/contribs/internal/sent"
	"github.com/spiffcs/contribs/internal/tui"
)

// isolate points config, cache, and cwd at temp directories so tests never
// read the developer's own files.
func isolate(t *testing.T) (configDir string) {
	t.Helper()
	root := t.TempDir()
	t.Setenv("HOME", root)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(root, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(root, "cache"))
	for _, key := range []string{"GITHUB_TOKEN", "CONTRIBS_USE_EMAIL", "CONTRIBS_MAIL_USERNAME", "CONTRIBS_MAIL_PASSWORD"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	t.Chdir(t.TempDir())
	return filepath.Join(root, "config", "contribs")
}

func writeGlobalConfig(t *testing.T, configDir, content string) {
	t.Helper()
	if err := os.MkdirAll(configDir, 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
}

func writeContributors(t *testing.T, names ...string) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("contributors:\n")
	for i, n := range names {
		b.WriteString("  - id: u")
		b.WriteString(string(rune('a' + i)))
		b.WriteString("\n    name: ")
		b.WriteString(n)
		b.WriteString("\n    active: true\n")
	}
	path := filepath.Join(t.TempDir(), "contributors.yaml")
	if err := os.WriteFile(path, []byte(b.String()), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := New()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestNew(t *testing.T) {
	cmd := New()
	if cmd == nil {
		t.Fatal("New() returned nil")
	}
	if cmd.Use != "contribs" {
		t.Errorf("expected Use to be 'contribs', got %q", cmd.Use)
	}

	want := []string{"summary", "notify", "config", "cache", "sent", "version", "ratelimit"}
	for _, name := range want {
		found := false
		for _, sub := range cmd.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected subcommand %q to be registered", name)
		}
	}
}

func TestNewOptions(t *testing.T) {
	opts := NewOptions(WithFormat("json"), WithMaxShown(0), WithRepos("a/b"), WithVerbosity(2))
	if opts.Format != "json" {
		t.Errorf("expected Format to be 'json', got %q", opts.Format)
	}
	if opts.MaxShown != 0 || !opts.maxShownSet {
		t.Errorf("expected explicit MaxShown 0, got %d (set=%v)", opts.MaxShown, opts.maxShownSet)
	}
	if len(opts.Repos) != 1 || opts.Repos[0] != "a/b" {
		t.Errorf("expected Repos [a/b], got %v", opts.Repos)
	}
	if opts.Workers <= 0 {
		t.Errorf("expected default Workers > 0, got %d", opts.Workers)
	}
}

func TestResolveMaxShown(t *testing.T) {
	five := 5
	cfg := &config.Config{MaxShown: &five}

	if got := resolveMaxShown(NewOptions(), cfg); got != 5 {
		t.Errorf("resolveMaxShown() without flag = %d, want 5", got)
	}
	if got := resolveMaxShown(NewOptions(WithMaxShown(1)), cfg); got != 1 {
		t.Errorf("resolveMaxShown() with flag = %d, want 1", got)
	}
}

func TestResolveFormat(t *testing.T) {
	cfg := &config.Config{DefaultFormat: "markdown"}
	if got := resolveFormat(NewOptions(), cfg); got != "markdown" {
		t.Errorf("resolveFormat() = %q, want markdown", got)
	}
	if got := resolveFormat(NewOptions(WithFormat("json")), cfg); got != "json" {
		t.Errorf("resolveFormat() = %q, want json", got)
	}
}

func TestAutoBoolFlag(t *testing.T) {
	opts := &Options{}
	f := newAutoBool(&opts.TUI)

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"false", "false", false},
		{"T", "true", false},
		{"0", "false", false},
		{"AUTO", "auto", false},
		{"sometimes", "auto", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			err := f.Set(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Set(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got := f.String(); got != tt.want {
				t.Errorf("after Set(%q) String() = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestShouldUseTUI(t *testing.T) {
	on, off := true, false

	if shouldUseTUI(&Options{TUI: &off}) {
		t.Error("shouldUseTUI() = true with --tui=false")
	}
	if !shouldUseTUI(&Options{TUI: &on}) {
		t.Error("shouldUseTUI() = false with --tui=true")
	}
	if shouldUseTUI(&Options{TUI: &on, Verbosity: 1}) {
		t.Error("shouldUseTUI() = true with verbose logging")
	}
}

func TestTUIFlagBareMeansTrue(t *testing.T) {
	opts := NewOptions()
	cmd := NewCmdSummary(opts)
	if err := cmd.ParseFlags([]string{"--tui"}); err != nil {
		t.Fatal(err)
	}
	if opts.TUI == nil || !*opts.TUI {
		t.Errorf("bare --tui left TUI = %v", opts.TUI)
	}
}

func TestSummaryCapsList(t *testing.T) {
	isolate(t)
	file := writeContributors(t, "Ada", "Grace", "Linus", "Ken")

	out, _, err := execute(t, "summary", "--file", file, "--max", "2", "-o", "json", "--tui=false")
	if err != nil {
		t.Fatalf("summary error: %v", err)
	}

	var got struct {
		Rows []struct {
			Label     string `json:"label"`
			IsSummary bool   `json:"isSummary"`
		} `json:"rows"`
		Shown     int `json:"shown"`
		Collapsed int `json:"collapsed"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid json output: %v\n%s", err, out)
	}
	if got.Shown != 2 || got.Collapsed != 2 {
		t.Errorf("shown=%d collapsed=%d, want 2/2", got.Shown, got.Collapsed)
	}
	if len(got.Rows) != 3 || got.Rows[2].Label != "2 others" {
		t.Errorf("rows = %+v", got.Rows)
	}
}

func TestSummaryOneOverShowsAll(t *testing.T) {
	isolate(t)
	file := writeContributors(t, "Ada", "Grace", "Linus")

	out, _, err := execute(t, "--file", file, "--max", "2", "-o", "text", "--tui=false")
	if err != nil {
		t.Fatalf("summary error: %v", err)
	}
	if strings.Contains(out, "others") {
		t.Errorf("expected every contributor named, got %q", out)
	}
	if !strings.Contains(out, "Linus") {
		t.Errorf("expected Linus in output, got %q", out)
	}
}

func TestSummaryUsesConfigMax(t *testing.T) {
	configDir := isolate(t)
	writeGlobalConfig(t, configDir, "max_shown: 0\n")
	file := writeContributors(t, "Ada", "Grace", "Linus")

	out, _, err := execute(t, "--file", file, "-o", "text", "--tui=false")
	if err != nil {
		t.Fatalf("summary error: %v", err)
	}
	if !strings.Contains(out, "3 others") {
		t.Errorf("expected config cap of 0 to collapse everything, got %q", out)
	}
}

func TestSummaryErrors(t *testing.T) {
	isolate(t)
	file := writeContributors(t, "Ada")

	if _, _, err := execute(t, "--tui=false"); !errors.Is(err, errNoSources) {
		t.Errorf("expected errNoSources, got %v", err)
	}
	if _, _, err := execute(t, "--file", file, "--max", "-1", "--tui=false"); err == nil {
		t.Error("expected error for negative --max")
	}
	if _, _, err := execute(t, "--file", file, "-o", "xml", "--tui=false"); err == nil {
		t.Error("expected error for unknown output format")
	}
}

func TestNotifyDryRun(t *testing.T) {
	configDir := isolate(t)
	writeGlobalConfig(t, configDir, `mail:
  from: noreply@example.com
  reply_to: maintainers@example.com
`)
	file := writeContributors(t, "Ada", "Grace", "Linus", "Ken", "Barbara")

	out, _, err := execute(t, "notify", "--file", file, "--to", "me@example.com", "--dry-run", "--tui=false")
	if err != nil {
		t.Fatalf("notify error: %v", err)
	}
	for _, want := range []string{"To: me@example.com", "Reply-To: maintainers@example.com", "Subject: Contributor summary for", "Ada, Grace, Linus, and 2 others"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in dry-run output:\n%s", want, out)
		}
	}
}

func TestNotifyDisabled(t *testing.T) {
	configDir := isolate(t)
	writeGlobalConfig(t, configDir, `mail:
  server: localhost:2525
  from: noreply@example.com
`)
	file := writeContributors(t, "Ada")

	out, errOut, err := execute(t, "notify", "--file", file, "--to", "me@example.com", "--tui=false")
	if err != nil {
		t.Fatalf("notify error: %v", err)
	}
	if out != "" {
		t.Errorf("expected no stdout, got %q", out)
	}
	if !strings.Contains(errOut, "disabled") {
		t.Errorf("expected disabled notice, got %q", errOut)
	}
}

func TestNotifyAllowlist(t *testing.T) {
	configDir := isolate(t)
	writeGlobalConfig(t, configDir, `mail:
  from: noreply@example.com
  allowlist_mode: true
  allowlist:
    - ok@example.com
`)
	file := writeContributors(t, "Ada")

	_, _, err := execute(t, "notify", "--file", file, "--to", "stranger@example.com", "--dry-run", "--tui=false")
	if !errors.Is(err, mail.ErrNotAllowed) {
		t.Errorf("expected ErrNotAllowed, got %v", err)
	}
}

func TestConfigSetAndShow(t *testing.T) {
	isolate(t)

	if _, _, err := execute(t, "config", "set", "max_shown", "7"); err != nil {
		t.Fatalf("config set error: %v", err)
	}
	if _, _, err := execute(t, "config", "set", "format", "md"); err != nil {
		t.Fatalf("config set error: %v", err)
	}
	if _, _, err := execute(t, "config", "set", "token", "abc"); err == nil {
		t.Error("expected config set token to be refused")
	}
	if _, _, err := execute(t, "config", "set", "--", "max_shown", "-2"); err == nil {
		t.Error("expected negative max_shown to be refused")
	}

	out, _, err := execute(t, "config", "show")
	if err != nil {
		t.Fatalf("config show error: %v", err)
	}
	if !strings.Contains(out, "max_shown: 7") || !strings.Contains(out, "default_format: markdown") {
		t.Errorf("config show missing values:\n%s", out)
	}
}

func TestVersion(t *testing.T) {
	SetVersionInfo("1.0.0", "abc123", "2026-01-01")
	out, _, err := execute(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "contribs 1.0.0") {
		t.Errorf("unexpected version output %q", out)
	}
}

func TestRuntimeCancelled(t *testing.T) {
	off := false
	rt := setupRuntime(context.Background(), NewOptions(WithTUI(&off)), tui.SummaryTasks())

	if err := rt.cancelled(); err != nil {
		t.Fatalf("cancelled() = %v before any cancel", err)
	}

	rt.cancel(tui.ErrCancelled)
	if err := rt.cancelled(); !errors.Is(err, tui.ErrCancelled) {
		t.Errorf("cancelled() = %v, want ErrCancelled", err)
	}
	if rt.ctx.Err() == nil {
		t.Error("expected runtime context to be done after cancel")
	}
	if err := rt.close(); !errors.Is(err, tui.ErrCancelled) {
		t.Errorf("close() = %v, want ErrCancelled", err)
	}
}

func TestRuntimeOtherCauseIsNotCancel(t *testing.T) {
	off := false
	rt := setupRuntime(context.Background(), NewOptions(WithTUI(&off)), tui.SummaryTasks())
	rt.cancel(errors.New("shutdown"))

	if err := rt.cancelled(); err != nil {
		t.Errorf("cancelled() = %v, want nil for a non-user cause", err)
	}
}

func TestNotifyAfterCancelSendsNothing(t *testing.T) {
	configDir := isolate(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	writeGlobalConfig(t, configDir, `mail:
  enabled: true
  server: `+ln.Addr().String()+`
  from: noreply@example.com
  starttls: false
  login: false
`)
	file := writeContributors(t, "Ada", "Grace", "Linus")

	off := false
	opts := NewOptions(WithFiles(file), WithTUI(&off))
	rt := setupRuntime(context.Background(), opts, tui.NotifyTasks())
	// The user quit the progress display while contributors were loading
	rt.tuiDone = make(chan error, 1)
	rt.tuiDone <- tui.ErrCancelled
	rt.cancel(tui.ErrCancelled)

	cmd := &cobra.Command{}
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)

	err = notify(cmd, rt, opts, &NotifyOptions{To: "me@example.com"})
	if !errors.Is(err, tui.ErrCancelled) {
		t.Fatalf("notify() = %v, want ErrCancelled", err)
	}
	if out.Len() != 0 {
		t.Errorf("expected no output after cancel, got %q", out.String())
	}

	// Any SMTP dial would already be queued on the listener
	if err := ln.(*net.TCPListener).SetDeadline(time.Now().Add(100 * time.Millisecond)); err != nil {
		t.Fatal(err)
	}
	if conn, err := ln.Accept(); err == nil {
		conn.Close()
		t.Error("notify connected to the SMTP server after cancel")
	}

	ledger, err := sent.NewStore()
	if err != nil {
		t.Fatal(err)
	}
	if ledger.Count() != 0 {
		t.Errorf("ledger recorded %d sends after cancel, want 0", ledger.Count())
	}
}

func TestSentStatusAndForget(t *testing.T) {
	isolate(t)

	ledger, err := sent.NewStore()
	if err != nil {
		t.Fatal(err)
	}
	key := sent.Key("me@example.com", "Weekly contributors")
	if err := ledger.Record(key, "abcdef0123456789", time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)); err != nil {
		t.Fatal(err)
	}

	out, _, err := execute(t, "sent", "status", "--to", "ME@example.com", "--subject", "Weekly contributors")
	if err != nil {
		t.Fatalf("sent status error: %v", err)
	}
	if !strings.Contains(out, "Last sent to ME@example.com") || !strings.Contains(out, "abcdef012345") {
		t.Errorf("unexpected status output %q", out)
	}

	if _, _, err := execute(t, "sent", "forget", "--to", "me@example.com", "--subject", "Weekly contributors"); err != nil {
		t.Fatalf("sent forget error: %v", err)
	}

	reopened, err := sent.NewStore()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := reopened.Last(key); ok {
		t.Error("expected entry to be gone after sent forget")
	}

	out, _, err = execute(t, "sent", "status", "--to", "me@example.com", "--subject", "Weekly contributors")
	if err != nil {
		t.Fatalf("sent status error: %v", err)
	}
	if !strings.HasPrefix(out, "Nothing sent") {
		t.Errorf("unexpected status output after forget %q", out)
	}
}
