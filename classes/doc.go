// Package classes implements a class-like object model over dynamically
// typed values: named definitions with single inheritance, instances with
// per-object field ownership, and proxy-fronted writes. The initial version
// supports the following constructs:
//   - Class definitions via Define(name, base) with at most one base.
//   - Instance construction via (*Class).New, base chain first, with the
//     same constructor arguments forwarded to every level's init method.
//   - Dynamic field definition with read-only tagging; writes land on the
//     chain member that owns the field, reads resolve nearest-owner-first.
//   - Methods as first-class values invoked with a receiver whose "this"
//     field always resolves to the most-derived instance.
//   - Protected calls (Scall, Wrap) that annotate failures with the full
//     call stack exactly once.
//   - A Registry for named class management and YAML snapshots of classes
//     and instances.
//
// The model is single-threaded and cooperative; no operation blocks or
// suspends.
package classes
