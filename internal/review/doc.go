// Package review owns the authoritative in-memory set of review records
// for one learner and applies scheduling transitions to it.
//
// Contract:
//   - Local state is authoritative the instant a grading returns; remote
//     persistence trails behind and its failures are advisory only.
//   - External data enters the collection only through Reconcile, which
//     resolves conflicts by last-write-wins on the review timestamp.
//   - At most one remote write per item is in flight; a newer grading
//     supersedes an older pending write.
//   - A reset races ahead of any in-flight grading write: the item stays
//     removed, and a stale write that lands afterwards is deleted again.
package review
