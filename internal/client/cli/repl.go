package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/recipebook/internal/client/client"
	"github.com/dmitrijs2005/recipebook/internal/client/services"
	"github.com/dmitrijs2005/recipebook/internal/common"
	"github.com/dmitrijs2005/recipebook/internal/filex"
)

// printlnFn is a test seam for REPL output.
var printlnFn = fmt.Println

const helpText = `Available commands:
  register        create an account
  login           log in
  logout          forget the local session
  whoami          show the current account
  list [name]     list recipes, optionally by name
  mine            list own recipes
  show <id>       show a recipe
  add             add a recipe
  delete <id>     delete an own recipe
  image <id> <f>  upload an image for an own recipe
  exit            leave`

// execIface is the command surface the REPL dispatches to. App implements
// it; tests use a stub.
type execIface interface {
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) error
	List(ctx context.Context, name string, mine bool) error
	Show(ctx context.Context, id string) error
	Add(ctx context.Context) error
	Delete(ctx context.Context, id string) error
	Image(ctx context.Context, id, path string) error
}

// runREPL reads commands line by line from reader and dispatches them to a.
// It returns on end of input or on "exit"/"quit". Command errors are
// reported and the loop goes on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("rb%s> ", statusFn()))

		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			printlnFn(helpText)
		case "register":
			report(a.Register(ctx))
		case "login":
			report(a.Login(ctx))
		case "logout":
			report(a.Logout(ctx))
		case "whoami":
			report(a.Whoami(ctx))
		case "l", "list":
			report(a.List(ctx, strings.Join(args, " "), false))
		case "mine":
			report(a.List(ctx, "", true))
		case "show":
			if len(args) != 1 {
				printlnFn("Usage: show <id>")
				continue
			}
			report(a.Show(ctx, args[0]))
		case "add":
			report(a.Add(ctx))
		case "delete":
			if len(args) != 1 {
				printlnFn("Usage: delete <id>")
				continue
			}
			report(a.Delete(ctx, args[0]))
		case "image":
			if len(args) != 2 {
				printlnFn("Usage: image <id> <file>")
				continue
			}
			report(a.Image(ctx, args[0], args[1]))
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

func report(err error) {
	if err != nil {
		printlnFn(describe(err))
	}
}

// describe turns a command error into a line for the user.
func describe(err error) string {
	switch {
	case errors.Is(err, services.ErrNotLoggedIn):
		return "Not logged in. Use 'login' or 'register'."
	case errors.Is(err, client.ErrUnauthorized):
		return "Session is no longer valid (logged in elsewhere or expired). Please log in again."
	case errors.Is(err, common.ErrInvalidCredentials):
		return "Invalid email or password."
	case errors.Is(err, common.ErrDuplicateIdentity):
		return "This email is already registered."
	case errors.Is(err, common.ErrorNotFound):
		return "Not found."
	case errors.Is(err, common.ErrorForbidden):
		return "You can only change your own recipes."
	case errors.Is(err, filex.ErrTooLarge):
		return "Image is too large."
	case errors.Is(err, client.ErrUnavailable):
		return "Server unavailable: " + err.Error()
	default:
		return "Error: " + err.Error()
	}
}
