// Package query caches the results of API reads.
//
// Each result is stored under a Key, a path of strings such as
// {"portfolio", "summary", "USD"}. A cached result is served until its
// Policy stale time elapses or until a mutation invalidates a prefix of its
// key. Concurrent reads of the same key share a single fetch, and failed
// fetches are retried unless the error says otherwise.
//
// A Cache can persist its entries in a directory so that short-lived
// processes, like successive CLI invocations, share results. Entries on
// disk are grouped per day and never outlive it.
package query
