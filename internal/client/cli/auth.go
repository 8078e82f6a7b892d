package cli

import (
	"context"
	"fmt"
)

// getSimpleText and getPassword can be swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

func (a *App) credentials() (string, string, error) {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return "", "", err
	}
	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return "", "", err
	}
	return email, password, nil
}

func (a *App) Register(ctx context.Context) error {
	email, password, err := a.credentials()
	if err != nil {
		return err
	}

	if err := a.authService.Register(ctx, email, password); err != nil {
		return err
	}

	a.log.Debug(ctx, "registered", "email", email)
	fmt.Fprintln(a.out, "Registered and logged in as", email)
	return nil
}

func (a *App) Login(ctx context.Context) error {
	email, password, err := a.credentials()
	if err != nil {
		return err
	}

	if err := a.authService.Login(ctx, email, password); err != nil {
		return err
	}

	a.log.Debug(ctx, "logged in", "email", email)
	fmt.Fprintln(a.out, "Logged in as", email)
	return nil
}

// Logout only drops the local token.
func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) Whoami(ctx context.Context) error {
	acc, err := a.authService.Whoami(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s (id %d)\n", acc.Email, acc.ID)
	return nil
}
