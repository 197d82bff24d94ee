// Package cli defines the nativeapk command tree. Each subcommand loads the
// build description, hands it to the app package and turns the resulting
// error into a process exit code.
package cli
