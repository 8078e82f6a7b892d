// Package cli provides the interactive RecipeBook terminal client.
//
// NewApp wires the local SQLite database, the HTTP API client and the
// services; App.Run starts the REPL and blocks until the user types exit or
// input ends.
//
// Commands:
//
//	register         create an account and start a session
//	login            start a session (replaces any other session of the account)
//	logout           forget the local session
//	whoami           show the account of the current session
//	list [name]      list recipes, optionally filtered by name
//	mine             list own recipes
//	show <id>        print one recipe
//	add              create a recipe interactively
//	delete <id>      delete an own recipe
//	image <id> <f>   upload an image file for an own recipe
//	help, exit
//
// The session token survives restarts in the local metadata table until a
// newer login of the same account supersedes it or it expires.
package cli
