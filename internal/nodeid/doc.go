/*
Package nodeid provides a structured representation for build node
identifiers.

An identifier is a dot-separated sequence of segment names, e.g. `apk.base`
or `lib.aarch64.compile`. Segments hold ASCII letters, digits, '_' and '-'.
*/
package nodeid
