package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestMain sets deterministic environment defaults for CLI tests.
func TestMain(m *testing.M) {
	_ = os.Setenv("TIDSPLAN_DEV_MODE", "false")
	os.Exit(m.Run())
}

// testStore returns root flags pinning config and db to a temp location so
// tests never touch real user paths.
func testStore(t *testing.T) []string {
	t.Helper()
	tmp := t.TempDir()
	return []string{
		"--config", filepath.Join(tmp, "missing.toml"),
		"--db", filepath.Join(tmp, "tidsplan.db"),
	}
}

// execCmd runs one invocation of the command tree and captures stdout.
func execCmd(t *testing.T, store []string, args ...string) (string, error) {
	t.Helper()
	var out strings.Builder
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append(append([]string{}, store...), args...))
	err := root.Execute()
	return out.String(), err
}

// mustExec runs one invocation and fails the test on error.
func mustExec(t *testing.T, store []string, args ...string) string {
	t.Helper()
	out, err := execCmd(t, store, args...)
	if err != nil {
		t.Fatalf("command %v error = %v\noutput: %s", args, err, out)
	}
	return out
}

// TestRunVersion verifies behavior for the covered scenario.
func TestRunVersion(t *testing.T) {
	var out strings.Builder
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"--version"})
	if err := root.Execute(); err != nil {
		t.Fatalf("Execute(--version) error = %v", err)
	}
	if !strings.Contains(out.String(), "tidsplan") {
		t.Fatalf("expected version output, got %q", out.String())
	}
}

// TestRunUnknownCommand verifies behavior for the covered scenario.
func TestRunUnknownCommand(t *testing.T) {
	root := newRootCmd()
	root.SetOut(new(strings.Builder))
	root.SetErr(new(strings.Builder))
	root.SetArgs([]string{"unknown-command"})
	if err := root.Execute(); err == nil {
		t.Fatal("expected unknown command error")
	}
}

// TestTaskLifecycle verifies behavior for the covered scenario.
func TestTaskLifecycle(t *testing.T) {
	store := testStore(t)

	out := mustExec(t, store, "task", "add", "--id", "t1", "--title", "Pour foundation", "--duration", "5")
	if !strings.Contains(out, "created task t1") {
		t.Fatalf("unexpected add output %q", out)
	}

	out = mustExec(t, store, "task", "list")
	if !strings.Contains(out, "Pour foundation") || !strings.Contains(out, "todo") {
		t.Fatalf("unexpected list output %q", out)
	}

	out = mustExec(t, store, "task", "done", "t1")
	if !strings.Contains(out, "completed task t1") {
		t.Fatalf("unexpected done output %q", out)
	}

	out = mustExec(t, store, "task", "rm", "t1")
	if !strings.Contains(out, "deleted task t1") {
		t.Fatalf("unexpected rm output %q", out)
	}
	if _, err := execCmd(t, store, "task", "done", "t1"); err == nil {
		t.Fatal("expected error completing a deleted task")
	}
}

// TestScheduleEndToEnd drives add, dep, schedule, cascade, and reconcile
// against one store.
func TestScheduleEndToEnd(t *testing.T) {
	store := testStore(t)

	mustExec(t, store, "task", "add", "--id", "a", "--title", "Design", "--duration", "5")
	mustExec(t, store, "task", "add", "--id", "b", "--title", "Build", "--duration", "3")
	out := mustExec(t, store, "dep", "add", "a", "b", "--lag", "0")
	if !strings.Contains(out, "a -> b") {
		t.Fatalf("unexpected dep output %q", out)
	}

	out = mustExec(t, store, "schedule", "--today", "2024-01-01")
	for _, want := range []string{"2024-01-01", "2024-01-06", "2024-01-09", "critical path: a -> b"} {
		if !strings.Contains(out, want) {
			t.Fatalf("schedule output missing %q:\n%s", want, out)
		}
	}

	out = mustExec(t, store, "cascade", "b", "--today", "2024-01-01")
	if strings.Contains(out, "Design") || !strings.Contains(out, "b") {
		t.Fatalf("unexpected cascade output %q", out)
	}

	out = mustExec(t, store, "reconcile")
	if !strings.Contains(out, "updated 2 task(s)") {
		t.Fatalf("unexpected first reconcile output %q", out)
	}
	out = mustExec(t, store, "reconcile")
	if !strings.Contains(out, "updated 0 task(s)") {
		t.Fatalf("unexpected second reconcile output %q", out)
	}
}

// TestDepAddRejectsCycle verifies behavior for the covered scenario.
func TestDepAddRejectsCycle(t *testing.T) {
	store := testStore(t)
	mustExec(t, store, "task", "add", "--id", "a", "--title", "A")
	mustExec(t, store, "task", "add", "--id", "b", "--title", "B")
	mustExec(t, store, "dep", "add", "a", "b")
	if _, err := execCmd(t, store, "dep", "add", "b", "a"); err == nil {
		t.Fatal("expected cycle rejection")
	}
}

// TestMilestoneCommands verifies behavior for the covered scenario.
func TestMilestoneCommands(t *testing.T) {
	store := testStore(t)
	mustExec(t, store, "task", "add", "--id", "x", "--title", "X", "--duration", "5")
	mustExec(t, store, "task", "add", "--id", "z", "--title", "Z", "--duration", "1")

	out := mustExec(t, store, "milestone", "add", "--name", "beta", "--due", "2024-02-01")
	parts := strings.Fields(out)
	if len(parts) < 3 {
		t.Fatalf("unexpected milestone add output %q", out)
	}
	msID := parts[2]

	mustExec(t, store, "milestone", "contrib", msID, "x")
	mustExec(t, store, "milestone", "require", "z", msID)

	out = mustExec(t, store, "milestone", "list")
	if !strings.Contains(out, "beta") || !strings.Contains(out, "2024-02-01") {
		t.Fatalf("unexpected milestone list output %q", out)
	}

	// z waits on the milestone, so it schedules after x finishes.
	out = mustExec(t, store, "schedule", "--today", "2024-01-01")
	if !strings.Contains(out, "2024-01-06") {
		t.Fatalf("expected milestone-pushed start in output:\n%s", out)
	}
}

// TestScheduleRejectsInvalidTodayFlag verifies behavior for the covered scenario.
func TestScheduleRejectsInvalidTodayFlag(t *testing.T) {
	store := testStore(t)
	mustExec(t, store, "task", "add", "--id", "a", "--title", "A")
	if _, err := execCmd(t, store, "schedule", "--today", "not-a-date"); err == nil {
		t.Fatal("expected invalid --today error")
	}
}

// TestRunPathsCommand verifies behavior for the covered scenario.
func TestRunPathsCommand(t *testing.T) {
	var out strings.Builder
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"--app", "tidsplanx", "--dev", "paths"})
	if err := root.Execute(); err != nil {
		t.Fatalf("Execute(paths) error = %v", err)
	}
	output := out.String()
	if !strings.Contains(output, "app: tidsplanx") {
		t.Fatalf("expected app name in paths output, got %q", output)
	}
	if !strings.Contains(output, "dev_mode: true") {
		t.Fatalf("expected dev mode in paths output, got %q", output)
	}
}

// TestParseBoolEnv verifies behavior for the covered scenario.
func TestParseBoolEnv(t *testing.T) {
	t.Setenv("TIDSPLAN_BOOL_TEST", "true")
	got, ok := parseBoolEnv("TIDSPLAN_BOOL_TEST")
	if !ok || !got {
		t.Fatalf("expected true bool env parse, got value=%t ok=%t", got, ok)
	}

	t.Setenv("TIDSPLAN_BOOL_TEST", "not-bool")
	if _, ok = parseBoolEnv("TIDSPLAN_BOOL_TEST"); ok {
		t.Fatal("expected invalid bool env to return ok=false")
	}
}

// TestParseDateFlag verifies behavior for the covered scenario.
func TestParseDateFlag(t *testing.T) {
	got, err := parseDateFlag("due", "2024-02-01")
	if err != nil {
		t.Fatalf("parseDateFlag() error = %v", err)
	}
	if got == nil || !got.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected parsed date %v", got)
	}

	got, err = parseDateFlag("due", "  ")
	if err != nil || got != nil {
		t.Fatalf("expected nil for blank value, got %v err %v", got, err)
	}

	if _, err := parseDateFlag("due", "02/01/2024"); err == nil {
		t.Fatal("expected format error")
	}
}
