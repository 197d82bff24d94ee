// Package app contains the application logic behind the nativeapk
// commands: loading the configuration, constructing and running the build
// graph and the standalone signing, alignment and device tasks. It is
// decoupled from the CLI so that every flow can be driven from tests.
package app
