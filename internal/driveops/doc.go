// Package driveops answers the proxy's queries against one configured drive:
// recursive listings, metadata documents, download links, and search. It is
// the single owner of the "config -> authenticated Graph client" glue,
// shared between the HTTP server and the one-shot CLI commands.
//
// SessionProvider caches TokenSources by service credentials so every
// request reuses one token until shortly before it expires. Service builds
// request-scoped tree walkers and path resolvers from the current config
// snapshot, so a config reload applies to the next request.
package driveops
