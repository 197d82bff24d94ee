// Package tools builds the command lines of the external Android tools
// (packager, signer, aligner, device bridge, key generator) and runs them.
//
// Builders are pure: they return an *exec.Cmd and touch nothing. Run executes
// a command and classifies its failure as an apkerr.Error.
package tools
