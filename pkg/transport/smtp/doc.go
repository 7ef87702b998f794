// Package smtp implements transport.Transport on top of github.com/wneessen/go-mail.
//
// Three connection modes are supported: plaintext, STARTTLS (required, never
// opportunistic) and implicit TLS. When a username is configured the
// transport authenticates with PLAIN; in plaintext mode PLAIN is allowed
// over the unencrypted connection.
//
// Every Send dials a fresh session, so one Transport is safe to share.
package smtp
