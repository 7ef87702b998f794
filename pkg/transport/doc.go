// Package transport defines how composed emails leave the service.
//
// A Transport is created once at startup and shared by every sender, so
// implementations must tolerate concurrent Send calls. Failures are reported
// as *Error values carrying the relay status code when available.
//
// Implementations live in sub-packages: smtp (plaintext, STARTTLS or
// implicit TLS relays via go-mail), resend (the Resend HTTP API) and
// transporttest (an in-memory recorder for tests and local development).
package transport
