/*
Package session runs wizard operations against persistent storage.

Every operation loads the session, applies the wizard reducer and saves the
result while holding a per-session lock, optionally backed by a distributed
locker so API replicas can share a store.
*/
package session
