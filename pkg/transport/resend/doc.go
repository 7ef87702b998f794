// Package resend implements transport.Transport with the Resend HTTP API.
//
// Threading headers (Message-ID, In-Reply-To, References) are passed through
// as custom headers. On success the response carries the provider's email id.
package resend
