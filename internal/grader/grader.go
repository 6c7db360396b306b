// Package grader holds the request-construction, authentication and
// response-normalization logic behind a grade fetch. Everything else in the
// service is plumbing around this package.
package grader

import "errors"

// Config is the per-block grader configuration needed for one fetch. It is a
// read-only snapshot of the authored block; the core never mutates it.
type Config struct {
	AuthenticationEndpoint string
	ClientID               string
	ClientSecret           string
	AuthenticationUsername string
	AuthenticationPassword string
	APIKey                 string

	GraderEndpoint              string
	HTTPMethod                  string
	UserIdentifier              string
	UserIdentifierParameter     string
	ActivityIdentifier          string
	ActivityIdentifierParameter string
	ExtraParams                 string
}

// Identity carries the host-supplied user fields a block can select as the
// outbound user identifier.
type Identity struct {
	UserID             string
	Email              string
	Username           string
	Role               string
	AnonymousStudentID string
}

// Value returns the identity field selected by the given identifier kind.
func (i Identity) Value(kind string) string {
	switch kind {
	case "email":
		return i.Email
	case "username":
		return i.Username
	case "user_id":
		return i.UserID
	case "anonymous_student_id":
		return i.AnonymousStudentID
	default:
		return ""
	}
}

// Sentinel errors for the failure kinds a fetch can hit. Handlers map these to
// the user-facing messages; upstream detail travels alongside via wrapping.
var (
	ErrGraderEndpointInvalid = errors.New("grader endpoint is not a valid url")
	ErrAuthEndpointInvalid   = errors.New("authentication endpoint is not a valid url")
	ErrAuthExchangeFailed    = errors.New("authentication exchange failed")
	ErrGraderUnreachable     = errors.New("grader endpoint unreachable")
)

// UpstreamError is a structured failure reported by the grader service itself:
// a response that carries no results. The message is what the learner sees.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return e.Message
}
