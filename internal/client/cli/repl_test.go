package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cbsr/biobank/internal/domain"
)

type fakeExec struct {
	loggedIn bool
	calls    []string
	err      error
}

func (f *fakeExec) record(name string, args ...string) error {
	f.calls = append(f.calls, strings.TrimSpace(name+" "+strings.Join(args, " ")))
	return f.err
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Register(context.Context) error {
	return f.record("register")
}
func (f *fakeExec) Login(context.Context) error {
	f.loggedIn = true
	return f.record("login")
}
func (f *fakeExec) Logout(context.Context) error {
	f.loggedIn = false
	return f.record("logout")
}
func (f *fakeExec) WhoAmI(context.Context) error        { return f.record("whoami") }
func (f *fakeExec) PasswordReset(context.Context) error { return f.record("passreset") }
func (f *fakeExec) Studies(_ context.Context, args []string) error {
	return f.record("studies", args...)
}
func (f *fakeExec) Study(_ context.Context, args []string) error { return f.record("study", args...) }
func (f *fakeExec) StudyAdd(context.Context) error               { return f.record("study-add") }
func (f *fakeExec) StudyName(_ context.Context, args []string) error {
	return f.record("study-name", args...)
}
func (f *fakeExec) StudyDescription(_ context.Context, args []string) error {
	return f.record("study-desc", args...)
}
func (f *fakeExec) StudyState(_ context.Context, action string, args []string) error {
	return f.record("state:"+action, args...)
}
func (f *fakeExec) Participant(_ context.Context, args []string) error {
	return f.record("participant", args...)
}
func (f *fakeExec) CeventTypes(_ context.Context, args []string) error {
	return f.record("cetypes", args...)
}
func (f *fakeExec) Centres(_ context.Context, args []string) error {
	return f.record("centres", args...)
}
func (f *fakeExec) Centre(_ context.Context, args []string) error { return f.record("centre", args...) }
func (f *fakeExec) Shipments(_ context.Context, args []string) error {
	return f.record("shipments", args...)
}

// captureOutput replaces printlnFn and returns everything printed.
func captureOutput(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func run(exec execIface, input ...string) {
	sc := bufio.NewScanner(strings.NewReader(strings.Join(input, "\n")))
	runREPL(context.Background(), exec, func() string { return "status" }, sc)
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	captureOutput(t)
	exec := &fakeExec{}

	run(exec,
		"login",
		"studies ALS trial",
		"study s1",
		"study-retire s1",
		"participant s1 P-1",
		"cetypes s1",
		"centres",
		"centre c1",
		"shipments c1",
		"whoami",
		"logout",
		"exit",
		"study s2",
	)

	assert.Equal(t, []string{
		"login",
		"studies ALS trial",
		"study s1",
		"state:retire s1",
		"participant s1 P-1",
		"cetypes s1",
		"centres",
		"centre c1",
		"shipments c1",
		"whoami",
		"logout",
	}, exec.calls)
}

func TestRunREPL_MemberCommandsNeedLogin(t *testing.T) {
	out := captureOutput(t)
	exec := &fakeExec{}

	run(exec, "studies", "bogus", "quit")

	assert.Empty(t, exec.calls)
	assert.Contains(t, *out, "Please log in first")
	assert.Contains(t, *out, "Unknown command: bogus")
	assert.Contains(t, *out, "Bye!")
}

func TestRunREPL_Help(t *testing.T) {
	out := captureOutput(t)

	run(&fakeExec{}, "help")
	assert.Contains(t, *out, helpGuest)

	*out = nil
	run(&fakeExec{loggedIn: true}, "help")
	assert.Contains(t, *out, helpMember)
}

func TestRunREPL_StopsWhenContextDone(t *testing.T) {
	captureOutput(t)
	exec := &fakeExec{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sc := bufio.NewScanner(strings.NewReader("login\n"))
	runREPL(ctx, exec, func() string { return "" }, sc)
	assert.Empty(t, exec.calls)
}

func TestReport(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"conflict", domain.ClassifyServerError(400,
			"expected version doesn't match current version: id: s1, version: 1"),
			"Modified by another user, reload and retry"},
		{"usage", usageError("study <id>"), "Usage: study <id>"},
		{"unauthorized", domain.ClassifyServerError(401, "no session"), "Session expired, please log in again"},
		{"domain", domain.NewDomainError("already disabled"), "Error (domain): already disabled"},
		{"other", errors.New("boom"), "Error (transport): boom"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out := captureOutput(t)
			report(tc.err)
			assert.Equal(t, []string{tc.want}, *out)
		})
	}

	out := captureOutput(t)
	report(nil)
	assert.Empty(t, *out)
}

func TestRunREPL_ReportsCommandErrors(t *testing.T) {
	out := captureOutput(t)
	exec := &fakeExec{loggedIn: true, err: domain.ClassifyServerError(400,
		"expected version doesn't match current version: id: s1, version: 1")}

	run(exec, "study-name s1")

	assert.Contains(t, *out, "Modified by another user, reload and retry")
}
