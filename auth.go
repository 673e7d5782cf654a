package v2md

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
)

// CooldownAdvisory is reported instead of submitting while the server is
// refusing logins.
const CooldownAdvisory = "登录受限，请稍后再试"

// Credentials 登录凭据
type Credentials struct {
	Username string
	Password string
	Captcha  string
}

// LoginForm loads /signin and reads the randomized field names and the once.
func (f *Forum) LoginForm(ctx context.Context) (LoginForm, error) {
	page, err := f.get(ctx, "/signin", nil)
	if err != nil {
		return LoginForm{}, err
	}
	return ParseLoginForm(page, f.baseURL), nil
}

// Captcha downloads the captcha image bound to form.Once.
func (f *Forum) Captcha(ctx context.Context, form LoginForm) ([]byte, error) {
	res, err := f.transport.Do(ctx, Request{
		Path:    "/_captcha",
		Query:   url.Values{"once": {form.Once}},
		Referer: f.url("/signin"),
	})
	if err != nil {
		return nil, err
	}
	return []byte(res.Body), nil
}

// Login submits the credentials under the field names of form. Credentials,
// once and next travel as query parameters. The session is updated with the
// outcome: on success it is marked logged in, otherwise it takes the retry
// once from the response.
func (f *Forum) Login(ctx context.Context, sess *Session, form LoginForm, creds Credentials) (LoginResult, error) {
	if form.UsernameField == "" || form.PasswordField == "" {
		return LoginResult{}, NewValidationError("登录表单缺少输入框名称")
	}

	query := url.Values{
		form.UsernameField: {creds.Username},
		form.PasswordField: {creds.Password},
		"once":             {form.Once},
		"next":             {form.Next},
	}
	if form.CaptchaField != "" {
		query.Set(form.CaptchaField, creds.Captcha)
	}

	page, res, err := f.fetch(ctx, Request{
		Method:  http.MethodPost,
		Path:    "/signin",
		Query:   query,
		Referer: f.url("/signin"),
	})
	if err != nil {
		return LoginResult{}, err
	}

	result := ParseLoginResult(page)
	sess.CoolingDown = result.CoolingDown
	if result.IsLogged {
		result.Cookies = res.Cookies
		sess.LoggedIn = true
		sess.Username = result.User.Username
		// 登录后的页面只在登出链接里带 once
		sess.Renew(MatchOnce(page.Body()))
	} else {
		sess.Renew(result.Once)
	}

	slog.Debug("Login submitted", "outcome", result.Outcome, "problems", len(result.Problems))
	return result, nil
}

// TwoFactor submits a second-factor code with the once the login step left
// in the session.
func (f *Forum) TwoFactor(ctx context.Context, sess *Session, code string) (TwoFactorResult, error) {
	if code == "" {
		return TwoFactorResult{}, NewValidationError("验证码不能为空")
	}

	page, err := f.post(ctx, "/2fa", url.Values{"code": {code}, "once": {sess.Token()}})
	if err != nil {
		return TwoFactorResult{}, err
	}

	result := ParseTwoFactorResult(page)
	sess.CoolingDown = result.CoolingDown
	if result.IsLogged {
		sess.LoggedIn = true
		sess.Renew(MatchOnce(page.Body()))
	} else {
		sess.Renew(ParseOnce(page))
	}
	return result, nil
}

func (f *Forum) post(ctx context.Context, path string, query url.Values) (*Page, error) {
	page, _, err := f.fetch(ctx, Request{
		Method:  http.MethodPost,
		Path:    path,
		Query:   query,
		Referer: f.url(path),
	})
	return page, err
}

// LoginState 登录流程状态
type LoginState int

const (
	StateInitial LoginState = iota
	StateFormLoaded
	StateSubmitted
	StateLoggedIn
	StateProblemReported
	StateTwoFactorRequired
	StateCoolingDown
)

func (s LoginState) String() string {
	switch s {
	case StateFormLoaded:
		return "form_loaded"
	case StateSubmitted:
		return "submitted"
	case StateLoggedIn:
		return "logged_in"
	case StateProblemReported:
		return "problem_reported"
	case StateTwoFactorRequired:
		return "two_factor_required"
	case StateCoolingDown:
		return "cooling_down"
	default:
		return "initial"
	}
}

var outcomeStates = map[LoginOutcome]LoginState{
	OutcomeLoggedIn:          StateLoggedIn,
	OutcomeProblemReported:   StateProblemReported,
	OutcomeTwoFactorRequired: StateTwoFactorRequired,
	OutcomeCoolingDown:       StateCoolingDown,
}

// LoginFlow drives the sign-in sequence one step at a time:
//
//	Initial → FormLoaded → Submitted → LoggedIn | ProblemReported | TwoFactorRequired
//	TwoFactorRequired → LoggedIn | TwoFactorRequired | CoolingDown
//
// CoolingDown may be entered as soon as the form loads; Submit then returns
// the advisory without posting. Steps called out of order fail with a
// ValidationError.
type LoginFlow struct {
	forum *Forum
	sess  *Session
	state LoginState
	form  LoginForm
}

// NewLoginFlow starts a flow that records its progress in sess.
func (f *Forum) NewLoginFlow(sess *Session) *LoginFlow {
	return &LoginFlow{forum: f, sess: sess}
}

// State returns the current state.
func (lf *LoginFlow) State() LoginState {
	return lf.state
}

// Form returns the last loaded form.
func (lf *LoginFlow) Form() LoginForm {
	return lf.form
}

// Load fetches a fresh form. It may be repeated to retry after a reported
// problem or once a cooldown has passed.
func (lf *LoginFlow) Load(ctx context.Context) (LoginForm, error) {
	if lf.state == StateLoggedIn {
		return LoginForm{}, NewValidationError("已登录，无需重新加载登录表单")
	}

	form, err := lf.forum.LoginForm(ctx)
	if err != nil {
		return LoginForm{}, err
	}

	lf.form = form
	lf.sess.CoolingDown = form.CoolingDown
	lf.sess.Renew(form.Once)
	if form.CoolingDown {
		lf.state = StateCoolingDown
	} else {
		lf.state = StateFormLoaded
	}
	return form, nil
}

// Submit posts the credentials against the loaded form.
func (lf *LoginFlow) Submit(ctx context.Context, creds Credentials) (LoginResult, error) {
	switch lf.state {
	case StateCoolingDown:
		return LoginResult{
			Outcome:     OutcomeCoolingDown,
			CoolingDown: true,
			Problems:    []string{CooldownAdvisory},
		}, nil
	case StateFormLoaded:
	default:
		return LoginResult{}, NewValidationError("提交登录前需要先加载登录表单，当前状态: " + lf.state.String())
	}

	lf.state = StateSubmitted
	result, err := lf.forum.Login(ctx, lf.sess, lf.form, creds)
	if err != nil {
		return LoginResult{}, err
	}
	lf.state = outcomeStates[result.Outcome]
	return result, nil
}

// Verify submits the second-factor code.
func (lf *LoginFlow) Verify(ctx context.Context, code string) (TwoFactorResult, error) {
	if lf.state != StateTwoFactorRequired {
		return TwoFactorResult{}, NewValidationError("当前状态不需要两步验证: " + lf.state.String())
	}

	result, err := lf.forum.TwoFactor(ctx, lf.sess, code)
	if err != nil {
		return TwoFactorResult{}, err
	}
	switch {
	case result.IsLogged:
		lf.state = StateLoggedIn
	case result.CoolingDown:
		lf.state = StateCoolingDown
	}
	return result, nil
}
