/*
Package statestore persists small JSON documents on local disk in a way
that survives crashes and corruption.

A Store binds one directory (a scope). Live documents are files directly
in that directory, rotated prior generations live in a backups/
subdirectory:

	<scope>/session.json
	<scope>/backups/session.json.1   newest retained generation
	<scope>/backups/session.json.2
	<scope>/backups/session.json.3   oldest retained generation

Every write rotates backups first, then replaces the live file via an
atomic rename, so a reader sees either the old or the new document and
never a torn one. Reads that hit a corrupted live file fall back to the
newest decodable backup and restore it. All operations return a value
plus a status; nothing panics past the package boundary, because this
state is advisory continuity data, not a source of truth whose loss is
catastrophic.

Scopes are fully independent: no global registry, no shared state. A
caller that needs several scopes constructs several Stores.
*/
package statestore
