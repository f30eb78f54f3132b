// Package client contains the client-side plumbing for talking to the
// biobank server of record.
//
// RESTClient implements domain.Transport over HTTP: each call resolves to
// the "data" member of a {status: "success", data} envelope, and every
// failure is returned as a *domain.TransportError classified by
// domain.ClassifyServerError. The session cookie (XSRF-TOKEN) lives in the
// client's cookie jar and is echoed in the X-XSRF-TOKEN header.
//
// InitDatabase opens the local SQLite database that keeps the session
// between CLI runs and applies the embedded goose migrations.
package client
