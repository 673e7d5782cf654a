package v2md

import (
	"net/http"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// Markers the sign-in pages are judged by. They are matched against the raw
// response body.
const (
	CooldownMarker       = "登录受限"
	LoginProblemMarker   = "登录有点问题，请重试"
	LoginTwoFactorMarker = "您的 V2EX 账号已开启两步验证，请输入验证码继续"
	LogoutMarker         = "确定要从 V2EX 登出？"
	// 两步验证页面的提示与登录页措辞不同
	TwoFactorPendingMarker = "你的 V2EX 账号已经开启了两步验证，请输入验证码继续"
)

// 登录页
var loginSel = struct {
	inputs cascadia.Selector
	next   cascadia.Selector
}{
	inputs: cascadia.MustCompile("input.sl"),
	next:   cascadia.MustCompile("input[name='next']"),
}

// LoginOutcome 登录提交后的结果
type LoginOutcome int

const (
	OutcomeProblemReported LoginOutcome = iota
	OutcomeLoggedIn
	OutcomeTwoFactorRequired
	OutcomeCoolingDown
)

func (o LoginOutcome) String() string {
	switch o {
	case OutcomeLoggedIn:
		return "logged_in"
	case OutcomeTwoFactorRequired:
		return "two_factor_required"
	case OutcomeCoolingDown:
		return "cooling_down"
	default:
		return "problem_reported"
	}
}

// LoginResult 登录结果
type LoginResult struct {
	Outcome       LoginOutcome
	IsLogged      bool
	Is2FARequired bool
	CoolingDown   bool
	Problems      []string
	Once          string         // 登录失败时用于重试的 once
	Cookies       []*http.Cookie // 登录成功时服务器下发的 Cookie
	User          UserInfo
}

// TwoFactorResult 两步验证结果
type TwoFactorResult struct {
	IsLogged    bool
	Message     string
	CoolingDown bool
}

// ParseLoginForm parses /signin. The site renders random names for the
// credential inputs, in the order username, password, captcha.
func ParseLoginForm(p *Page, baseURL string) LoginForm {
	form := LoginForm{
		Once:        ParseOnce(p),
		Next:        "/",
		CoolingDown: p.Contains(CooldownMarker),
	}
	if next := attr(p.Find(loginSel.next).First(), "value"); next != "" {
		form.Next = next
	}

	fields := []*string{&form.UsernameField, &form.PasswordField, &form.CaptchaField}
	p.Find(loginSel.inputs).Each(func(i int, s *goquery.Selection) {
		if i < len(fields) {
			*fields[i] = attr(s, "name")
		}
	})

	form.CaptchaURL = captchaURL(baseURL, form.Once)
	return form
}

func captchaURL(baseURL, once string) string {
	return trimBase(baseURL) + "/_captcha?once=" + once
}

// ParseLoginResult judges a /signin POST response. All marker checks run; a
// page showing the logout prompt counts as logged in only when neither the
// problem marker nor the two-factor marker is present. Problems and the retry
// once are read only when the login did not succeed.
func ParseLoginResult(p *Page) LoginResult {
	somethingWrong := p.Contains(LoginProblemMarker)
	is2FA := p.Contains(LoginTwoFactorMarker)
	hasLogout := p.Contains(LogoutMarker)

	result := LoginResult{
		IsLogged:      !is2FA && !somethingWrong && hasLogout,
		Is2FARequired: is2FA,
		CoolingDown:   p.Contains(CooldownMarker),
		Problems:      []string{},
		User:          ParseUserInfo(p),
	}
	if !result.IsLogged {
		result.Problems = ParseProblems(p)
		result.Once = ParseOnce(p)
	}
	result.Outcome = Classify(p.Body(), loginOutcomeRules, OutcomeProblemReported)
	return result
}

// 按顺序匹配；两步验证优先于一般错误，登出提示只在两者都不出现时算作登录成功
var loginOutcomeRules = []Rule[LoginOutcome]{
	ContainsRule(LoginTwoFactorMarker, OutcomeTwoFactorRequired),
	ContainsRule(LoginProblemMarker, OutcomeProblemReported),
	ContainsRule(LogoutMarker, OutcomeLoggedIn),
	ContainsRule(CooldownMarker, OutcomeCoolingDown),
}

// ParseTwoFactorResult judges a /2fa POST response. The code was accepted when
// the page no longer asks for it.
func ParseTwoFactorResult(p *Page) TwoFactorResult {
	cooling := p.Contains(CooldownMarker)
	return TwoFactorResult{
		IsLogged:    !cooling && !p.Contains(TwoFactorPendingMarker),
		Message:     text(p.Find(messageSel)),
		CoolingDown: cooling,
	}
}
