package cli

import (
	"context"
	"fmt"

	"github.com/cbsr/biobank/internal/common"
)

// getPassword is swapped in tests so no terminal is needed.
var getPassword = promptPassword

// Register prompts for the new account's details and submits them. The
// account stays in state registered until an administrator activates it.
func (a *App) Register(ctx context.Context) error {
	name, err := promptRequired(a.reader, "Name", a.out)
	if err != nil {
		return err
	}
	email, err := promptRequired(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out, "Choose password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	avatar, err := promptLine(a.reader, "Avatar URL (optional)", a.out)
	if err != nil {
		return err
	}

	user, err := a.users.Register(ctx, name, email, string(password), avatar)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Registered %s; an administrator must activate the account\n", user.Email)
	return nil
}

// Login prompts for credentials and starts a session. The session is saved
// so the next run resumes it.
func (a *App) Login(ctx context.Context) error {
	email, err := promptRequired(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out, "Password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	user, err := a.users.Login(ctx, email, string(password))
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Welcome %s\n", user.Name)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.users.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Good bye")
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	user, err := a.users.RequestCurrentUser(ctx)
	if err != nil {
		return err
	}
	printUser(a.out, user)
	return nil
}

func (a *App) PasswordReset(ctx context.Context) error {
	email, err := promptRequired(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	if err := a.users.PasswordReset(ctx, email); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "A new password has been sent to", email)
	return nil
}
