// Package config loads runtime configuration for the RecipeBook terminal
// client.
//
// Sources, later ones win:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Command-line flags.
//
// Supported flags
//
//	-a string   base URL of the RecipeBook HTTP API
//	-d string   path of the local SQLite file
//	-t int      per-request timeout (seconds)
//
// JSON example:
//
//	{
//	  "server_url": "http://localhost:8089",
//	  "database_path": "recipebook.db",
//	  "request_timeout": "5s"
//	}
package config
