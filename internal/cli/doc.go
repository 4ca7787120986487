// Package cli implements the terminus command-line interface.
//
// Every command group registered in internal/commands becomes a cobra
// command whose first positional argument names the action:
//
//	terminus sites show [--refresh]
//	terminus site info --site=<name|uuid>
//	terminus site environments --site=<name|uuid>
//	terminus site bindings --site=<name|uuid> --env=<env>
//	terminus site backups-list --site=<name|uuid> --env=<env>
//	terminus version
//
// Actions accept dashes or underscores interchangeably (backups-list and
// backups_list are the same action).
//
// # Invocation
//
// A group command loads the config (viper, ~/.config/terminus/config.yaml
// or --config, TERMINUS_* overrides), opens the file cache, builds the
// API client and hands the command line to the dispatcher. Nothing is
// kept between invocations except the cache.
//
// # Flag Handling
//
// Global flags (--config, --json, --yaml, --debug, --no-color) are
// persistent flags on the root command. Group flags (--site, --env and
// the boolean switches actions declare) are registered only on the groups
// whose actions read them.
//
// # Errors
//
// Errors are printed to stderr in the ✗ message / cause / suggestion
// layout. With --json or --yaml the same error is written to stdout as an
// envelope with success=false. --debug also dumps the invocation state
// (bound site, bindings, last response) as YAML to stderr.
package cli
