// Package archive injects files into an existing zip archive (the APK) and
// recompresses it.
//
// Two Mutator implementations exist: ZipMutator rewrites the archive
// in-process, HostTool delegates to an external helper executable invoked as
// `<tool> <archive> <source-file> <entry-name>`. Both hold the archive's lock
// for the whole mutation, so injections into the same archive never
// interleave, even across processes.
package archive
