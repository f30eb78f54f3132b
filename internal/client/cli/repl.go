package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cbsr/biobank/internal/common"
	"github.com/cbsr/biobank/internal/domain"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	PasswordReset(ctx context.Context) error

	Studies(ctx context.Context, args []string) error
	Study(ctx context.Context, args []string) error
	StudyAdd(ctx context.Context) error
	StudyName(ctx context.Context, args []string) error
	StudyDescription(ctx context.Context, args []string) error
	StudyState(ctx context.Context, action string, args []string) error
	Participant(ctx context.Context, args []string) error
	CeventTypes(ctx context.Context, args []string) error

	Centres(ctx context.Context, args []string) error
	Centre(ctx context.Context, args []string) error
	Shipments(ctx context.Context, args []string) error
}

// usageError is returned by commands called with the wrong arguments.
type usageError string

func (e usageError) Error() string { return "Usage: " + string(e) }

const (
	helpGuest  = "Available commands: login, register, passreset, exit"
	helpMember = "Available commands: whoami, logout, studies [filter], study <id>, study-add, " +
		"study-name <id>, study-desc <id>, study-enable <id>, study-disable <id>, study-retire <id>, " +
		"study-unretire <id>, participant <studyId> <uniqueId>, cetypes <studyId>, centres [filter], " +
		"centre <id>, shipments <centreId>, exit"
)

// runREPL starts a simple read-eval-print loop for the biobank CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Errors returned by commands are
// reported to the user and the loop carries on. The loop exits on scanner
// EOF, when ctx is done, or when the user types "exit" or "quit".
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("biobank (%s) > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpMember)
			} else {
				printlnFn(helpGuest)
			}
			continue
		case "exit", "quit":
			printlnFn("Bye!")
			return
		case "login":
			report(a.Login(ctx))
			continue
		case "register":
			report(a.Register(ctx))
			continue
		case "passreset":
			report(a.PasswordReset(ctx))
			continue
		}

		run, ok := memberCommand(a, cmd, args)
		if !ok {
			printlnFn("Unknown command:", cmd)
			continue
		}
		if !a.isLoggedIn() {
			printlnFn("Please log in first")
			continue
		}
		report(run(ctx))
	}
}

// memberCommand resolves the commands available to a signed-in user.
func memberCommand(a execIface, cmd string, args []string) (func(context.Context) error, bool) {
	switch cmd {
	case "whoami":
		return a.WhoAmI, true
	case "logout":
		return a.Logout, true
	case "studies":
		return func(ctx context.Context) error { return a.Studies(ctx, args) }, true
	case "study":
		return func(ctx context.Context) error { return a.Study(ctx, args) }, true
	case "study-add":
		return a.StudyAdd, true
	case "study-name":
		return func(ctx context.Context) error { return a.StudyName(ctx, args) }, true
	case "study-desc":
		return func(ctx context.Context) error { return a.StudyDescription(ctx, args) }, true
	case "study-enable", "study-disable", "study-retire", "study-unretire":
		action := strings.TrimPrefix(cmd, "study-")
		return func(ctx context.Context) error { return a.StudyState(ctx, action, args) }, true
	case "participant":
		return func(ctx context.Context) error { return a.Participant(ctx, args) }, true
	case "cetypes":
		return func(ctx context.Context) error { return a.CeventTypes(ctx, args) }, true
	case "centres":
		return func(ctx context.Context) error { return a.Centres(ctx, args) }, true
	case "centre":
		return func(ctx context.Context) error { return a.Centre(ctx, args) }, true
	case "shipments":
		return func(ctx context.Context) error { return a.Shipments(ctx, args) }, true
	}
	return nil, false
}

// report prints err in terms the user can act on.
func report(err error) {
	if err == nil {
		return
	}
	var usage usageError
	switch {
	case errors.As(err, &usage):
		printlnFn(usage.Error())
	case domain.IsVersionConflict(err):
		printlnFn("Modified by another user, reload and retry")
	case errors.Is(err, common.ErrUnauthorized):
		printlnFn("Session expired, please log in again")
	case errors.Is(err, common.ErrNotFound):
		printlnFn("Not found:", err.Error())
	default:
		printlnFn(fmt.Sprintf("Error (%s): %s", domain.KindOf(err), err.Error()))
	}
}
