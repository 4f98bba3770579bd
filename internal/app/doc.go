// Package app is the composition root of the contacts tool.
//
// # Overview
//
// Open turns Options into a ready Env: it loads configuration, builds the
// logger, opens the contact store and wires a repo.Repository over it. The
// CLI subcommands use Open directly; Run adds the background retry poller and
// the TUI on top.
//
// # Startup
//
//	┌──────────────┐
//	│   Open()     │
//	└──────┬───────┘
//	       ├─────> config.Load()        Read ~/.config/contacts/config.toml
//	       ├─────> logging.New()        zap logger (file for the TUI)
//	       ├─────> source.OpenSQLite()  or source.NewMemory() with --demo
//	       └─────> repo.New()           Shared cache, views, edit sessions
//
//	┌──────────────┐
//	│   Run()      │ errgroup
//	└──────┬───────┘
//	       ├─────> RunPoller()          Retries a failing cache
//	       └─────> ui.Run()             TUI (blocks until quit)
//
// # Retry Poller
//
// The cache never retries on its own: a failed query stays published until
// the next change notification. RunPoller fills the gap. While observers are
// active and the last query failed, it calls Refresh, waiting
// calculateBackoff(failures, interval) between attempts: the interval
// doubles per consecutive failure and is capped at 30 seconds. A healthy or
// idle cache costs one Snapshot per interval.
//
// # Errors
//
// Open fails on an unreadable or malformed config file, an invalid log level
// and a database that cannot be opened or migrated. Once running, store
// failures are published to observers and never end Run.
package app
