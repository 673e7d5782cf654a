package v2md

// Session carries the rolling once token and the login state between
// actions. Each once is single-use: every action that consumes it hands
// back the replacement, which must be stored with Renew before the next
// action. A Session must not be shared by concurrent actions.
type Session struct {
	Once        string `toml:"once"`
	Version     int    `toml:"version"` // 每次 Renew 自增
	LoggedIn    bool   `toml:"logged_in"`
	Username    string `toml:"username"`
	CoolingDown bool   `toml:"cooling_down"`
}

// NewSession starts a session from a token scraped off a page.
func NewSession(once string) *Session {
	return &Session{Once: once}
}

// Token returns the once to send with the next action.
func (s *Session) Token() string {
	return s.Once
}

// Renew stores the token returned by an action. An empty once means the
// replacement could not be read; the session is then stale until the caller
// reloads a page and renews again.
func (s *Session) Renew(once string) {
	s.Once = once
	s.Version++
}

// Stale reports whether the session has no usable token.
func (s *Session) Stale() bool {
	return s.Once == ""
}
