// Package token issues and verifies signed grant tokens: compact JWTs whose
// claims embed a computed permission mask and, optionally, the permission
// names it was derived from. The kernel computes masks; this package lets a
// caller hand the result to another process without re-resolving references.
//
// Tokens carry a snapshot. They do not track later registry mutation; issuers
// pick a TTL accordingly.
package token
