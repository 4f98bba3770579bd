// Package config handles loading and parsing the contacts configuration file.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/contacts/config.toml (default)
//  3. If the config file doesn't exist, fall back to Default()
//  4. If the file exists but fields are missing/empty, use defaults
//
// # Default Values
//
//   - Config file: ~/.config/contacts/config.toml
//   - Database: ~/.local/share/contacts/contacts.db
//   - Grace window: 1.5s
//   - Query debounce: 300ms
//   - Account types: com.google, vnd.sec.contact.phone
//   - Retry interval: 2s (doubling while the store keeps failing, capped at 30s)
//   - Log level: info
//   - Log file: ~/.local/share/contacts/contacts.log
//
// # TOML Format
//
//	db_path = "~/.local/share/contacts/contacts.db"
//	grace_window = "1.5s"
//	debounce = "300ms"
//	account_types = ["com.google", "vnd.sec.contact.phone"]
//	retry_interval = "2s"
//	log_level = "debug"
//	log_file = "/tmp/contacts.log"
//
// Durations use time.ParseDuration syntax and must be positive. Tilde
// expansion is performed for db_path and log_file.
//
// # Error Handling
//
// Load returns errors for:
//   - Path expansion failures (e.g., cannot determine home directory)
//   - File read errors (except os.ErrNotExist, which triggers defaults)
//   - TOML parsing errors and malformed durations ("parse config: ...")
//
// Missing config files are NOT an error. The tool works out of the box.
package config
