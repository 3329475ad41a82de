// Package gen renders Visual Studio solution and project descriptors from a
// host-supplied assembly graph and keeps them synchronized on disk.
//
// Output is deterministic down to the byte: identifiers derive from content
// hashes, iteration order follows the host's declared order, and files are
// only rewritten when their rendered text actually changed. A generation pass
// is single-threaded and stateless; the on-disk descriptors are the only
// state that survives between passes.
package gen
