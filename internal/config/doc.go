// Package config provides configuration management for wikidex.
//
// # Overview
//
// The config package uses Viper to load configuration from YAML files and
// environment variables. It provides a type-safe configuration structure with
// validation, default values, and automatic file creation.
//
// # Configuration File
//
// The configuration is stored at ~/.wikidex/config.yaml and is automatically
// created with sensible defaults on first use. The file structure mirrors
// the Go structs defined in this package.
//
// # Environment Variables
//
// All configuration values can be overridden using environment variables
// with the WIKIDEX_ prefix. Nested fields are separated by underscores.
//
// Examples:
//   - WIKIDEX_STORAGE_BACKEND=mongo
//   - WIKIDEX_STORAGE_MONGO_URI=mongodb://db.internal:27017
//   - WIKIDEX_WIKIPEDIA_LANGUAGE=de
//   - WIKIDEX_LOGGING_LEVEL=debug
//
// # Usage Example
//
//	package main
//
//	import (
//	    "log"
//	    "github.com/normanking/wikidex/internal/config"
//	)
//
//	func main() {
//	    // Load configuration
//	    cfg, err := config.Load()
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    // Ensure all directories exist
//	    if err := cfg.EnsureDirectories(); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    // Validate configuration
//	    if err := cfg.Validate(); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    // Use configuration
//	    log.Printf("Storing documents in %s", cfg.Storage.Backend)
//	}
//
// # Server Authentication
//
// The config file never stores the bearer token itself, only its bcrypt
// hash. Generate both with:
//
//	wikidex serve --generate-token
//
// which prints the token once and writes server.token_hash. The hash can
// also be supplied via WIKIDEX_SERVER_TOKEN_HASH.
//
// # Configuration Sections
//
//   - Storage: Document storage backend selection (MongoDB, SQLite, memory)
//   - Wikipedia: Article fetcher settings (language, user agent, cache)
//   - Server: A2A and REST listen address, observer port, token hash,
//     event replay buffer
//   - TUI: Terminal user interface preferences
//   - Logging: Log level and output file configuration
//
// # Path Expansion
//
// The package automatically expands ~ to the user's home directory in
// all path configurations, making config files portable across systems.
//
// # Validation
//
// The Validate() method checks configuration for common errors:
//   - Backend existence and per-backend required fields
//   - Valid enum values (backend, theme, log level)
//   - Numeric range validation
//   - Required field presence
//
// # Thread Safety
//
// Config instances are not thread-safe. If you need concurrent access,
// wrap the config in a sync.RWMutex or create separate instances.
package config
