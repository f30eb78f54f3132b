package common

// VersionConflictMessage is the text the server of record puts at the start
// of every stale-version rejection.
const VersionConflictMessage = "expected version doesn't match current version"

// Session cookie and the header that must echo it on state-changing requests.
const (
	XSRFCookieName = "XSRF-TOKEN"
	XSRFHeaderName = "X-XSRF-TOKEN"
)

// Values of the "status" member of every response envelope.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)
