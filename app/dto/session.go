package dto

type SessionEventKind string

const (
	SessionLoggedIn    SessionEventKind = "logged_in"
	SessionLoggedOut   SessionEventKind = "logged_out"
	SessionUserUpdated SessionEventKind = "user_updated"
)

type SessionEvent struct {
	Kind SessionEventKind
	// Why the session ended, set on logged_out: "logout" or "unauthorized"
	Reason string
}

const (
	LogoutReasonUser         = "logout"
	LogoutReasonUnauthorized = "unauthorized"
)
