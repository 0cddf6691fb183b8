package core

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gosh/core/config"
	"gosh/core/job"
	"gosh/core/proc"
)

// testShell builds a shell around temp-file streams so builtin output can
// be inspected. No launcher is wired; only in-process paths may run.
func testShell(t *testing.T) *Shell {
	t.Helper()
	stdout, err := os.CreateTemp(t.TempDir(), "stdout")
	require.NoError(t, err)
	stderr, err := os.CreateTemp(t.TempDir(), "stderr")
	require.NoError(t, err)
	t.Cleanup(func() {
		stdout.Close()
		stderr.Close()
	})

	session := proc.NewSession(os.Stdin, stdout, stderr)
	jobs := job.NewTable()
	return &Shell{
		Config:      config.Default(),
		Session:     session,
		Jobs:        jobs,
		coordinator: &proc.Coordinator{Session: session, Jobs: jobs},
	}
}

func contents(t *testing.T, f *os.File) string {
	t.Helper()
	data, err := os.ReadFile(f.Name())
	require.NoError(t, err)
	return string(data)
}

func TestHelpListsEveryBuiltin(t *testing.T) {
	s := testShell(t)
	assert.Equal(t, 0, Help(s, []string{"help"}))

	out := contents(t, s.Session.Stdout)
	for name := range AllBuiltins {
		assert.Contains(t, out, name)
	}
}

func TestPwd(t *testing.T) {
	s := testShell(t)
	assert.Equal(t, 0, Pwd(s, []string{"pwd"}))

	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, wd+"\n", contents(t, s.Session.Stdout))
}

func TestCd(t *testing.T) {
	orig, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(orig) })

	s := testShell(t)
	dir := t.TempDir()

	assert.Equal(t, 0, Cd(s, []string{"cd", dir}))
	wd, err := os.Getwd()
	require.NoError(t, err)
	resolved, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	assert.Equal(t, resolved, wd)

	assert.Equal(t, 1, Cd(s, []string{"cd", "/no/such/directory"}))
	assert.Contains(t, contents(t, s.Session.Stderr), "cd:")

	assert.Equal(t, 1, Cd(s, []string{"cd", "a", "b"}))
}

func TestExit(t *testing.T) {
	s := testShell(t)
	s.Jobs.Add(123, 123)

	assert.Equal(t, 5, Exit(s, []string{"exit", "5"}))
	assert.True(t, s.quit)
	assert.Equal(t, 5, s.quitStatus)
	assert.Equal(t, 0, s.Jobs.Len())
}

func TestExitNonNumeric(t *testing.T) {
	s := testShell(t)

	assert.Equal(t, 2, Exit(s, []string{"exit", "abc"}))
	assert.True(t, s.quit)
	assert.Contains(t, contents(t, s.Session.Stderr), "numeric argument required")
}

func TestJobsListing(t *testing.T) {
	s := testShell(t)
	s.Jobs.Add(100, 100)
	s.Jobs.Add(200, 100)

	assert.Equal(t, 0, Jobs(s, []string{"jobs"}))

	lines := strings.Split(strings.TrimSpace(contents(t, s.Session.Stdout)), "\n")
	require.Len(t, lines, 2)
	// Most recent first.
	assert.Contains(t, lines[0], "200")
	assert.Contains(t, lines[1], "100")
}

func TestFgWithoutJobs(t *testing.T) {
	s := testShell(t)

	assert.Equal(t, 1, Fg(s, []string{"fg"}))
	assert.Contains(t, contents(t, s.Session.Stderr), "no current job")
}

func TestFgUnknownPID(t *testing.T) {
	s := testShell(t)
	s.Jobs.Add(100, 100)

	assert.Equal(t, 1, Fg(s, []string{"fg", "999"}))
	assert.Contains(t, contents(t, s.Session.Stderr), "no such job")
}

func TestBgBadOperand(t *testing.T) {
	s := testShell(t)

	assert.Equal(t, 1, Bg(s, []string{"bg", "notapid"}))
	assert.Contains(t, contents(t, s.Session.Stderr), "argument must be a process ID")
}
