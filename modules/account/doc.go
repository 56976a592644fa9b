// Package account exposes registration, login and user management over a
// JSON API mounted on chi.
//
// Every authenticated route passes the session gate first, then the role
// check driven by Routes(). Register and login sit behind the optional
// LoginLimiter, keyed by client address and path. Domain errors are translated by the mapper from
// NewErrorMapper, which main shares with other modules.
package account
