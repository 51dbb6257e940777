package auth

// Decision is the outcome of the admin gate.
type Decision int

const (
	Allow Decision = iota
	RedirectLogin
	Unauthorized
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect_login"
	case Unauthorized:
		return "unauthorized"
	}
	return "unknown"
}

// Authorize decides whether id may manage posts.
func Authorize(id Identity) Decision {
	switch {
	case !id.Authenticated:
		return RedirectLogin
	case !id.IsAdmin():
		return Unauthorized
	default:
		return Allow
	}
}
