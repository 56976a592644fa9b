// Package user implements account management on top of the session and rbac
// packages.
//
// The Service registers users, checks credentials and keeps session rows in
// step with account changes: a password or email change closes every session
// of the user and opens one fresh session, a role change or deletion closes
// them all. Users are persisted through Storage, which also resolves session
// owners for the session stores.
//
// Avatars are sniffed, size checked and written through pkg/storage under
// avatars/<user-id>/<random>.<ext>.
package user
