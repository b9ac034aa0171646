package ddns

import "errors"

// Every error returned by a run wraps exactly one of these,
// so callers can tell a misconfigured zone from a flaky network or a rejected change with errors.Is.
var (
	ErrNetwork             = errors.New("network error")
	ErrParse               = errors.New("parse error")
	ErrZoneNotFound        = errors.New("hosted zone not found")
	ErrMalformedIdentifier = errors.New("malformed zone identifier")
	ErrRecordNotFound      = errors.New("record set not found")
	ErrEmptyRecord         = errors.New("record set has no values")
	ErrUpdateRejected      = errors.New("update rejected")
)
