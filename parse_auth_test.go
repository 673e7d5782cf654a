package v2md

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const signinPageHTML = `<html><body><div id="Main"><div class="box"><form method="post" action="/signin">
<table>
<tr><td>用户名</td><td><input type="text" class="sl" name="f3a9c1" value=""></td></tr>
<tr><td>密码</td><td><input type="password" class="sl" name="b71e02" value=""></td></tr>
<tr><td>你是机器人么？</td><td><div style="background-image: url('/_captcha?once=31337')"></div><input type="text" class="sl" name="9d0c44" value=""></td></tr>
</table>
<input type="hidden" value="31337" name="once">
<input type="hidden" value="/t/1024" name="next">
</form></div></div></body></html>`

func TestParseLoginForm(t *testing.T) {
	form := ParseLoginForm(mustPage(t, signinPageHTML), "https://www.v2ex.com/")

	assert.Equal(t, LoginForm{
		UsernameField: "f3a9c1",
		PasswordField: "b71e02",
		CaptchaField:  "9d0c44",
		Once:          "31337",
		Next:          "/t/1024",
		CaptchaURL:    "https://www.v2ex.com/_captcha?once=31337",
	}, form)
}

func TestParseLoginFormDefaultsAndCooldown(t *testing.T) {
	body := `<div class="topic_content">由于当前 IP 在短时间内的登录尝试次数太多，目前暂时不能继续尝试。登录受限</div>`
	form := ParseLoginForm(mustPage(t, body), "https://www.v2ex.com")

	assert.Equal(t, "/", form.Next)
	assert.True(t, form.CoolingDown)
	assert.Empty(t, form.UsernameField)
	assert.Equal(t, "https://www.v2ex.com/_captcha?once=", form.CaptchaURL)
}

func TestParseLoginResult(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		outcome LoginOutcome
		logged  bool
		twoFA   bool
		cooling bool
	}{
		{
			name:    "logged in",
			body:    "<html><body>" + userChromeHTML + "</body></html>",
			outcome: OutcomeLoggedIn,
			logged:  true,
		},
		{
			name:    "problem",
			body:    `<div class="problem"><ul><li>` + LoginProblemMarker + `</li></ul></div><input name="once" value="2">`,
			outcome: OutcomeProblemReported,
		},
		{
			name:    "two factor",
			body:    `<div class="cell">` + LoginTwoFactorMarker + `</div><input name="once" value="3">`,
			outcome: OutcomeTwoFactorRequired,
			twoFA:   true,
		},
		{
			name:    "two factor and problem",
			body:    `<div>` + LoginTwoFactorMarker + `</div><div>` + LoginProblemMarker + `</div>` + userChromeHTML,
			outcome: OutcomeTwoFactorRequired,
			twoFA:   true,
		},
		{
			name:    "problem beats logout prompt",
			body:    `<div>` + LoginProblemMarker + `</div>` + userChromeHTML,
			outcome: OutcomeProblemReported,
		},
		{
			name:    "cooldown",
			body:    `<div class="topic_content">登录受限</div>`,
			outcome: OutcomeCoolingDown,
			cooling: true,
		},
		{
			name:    "unknown page",
			body:    `<div>something else</div>`,
			outcome: OutcomeProblemReported,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			result := ParseLoginResult(mustPage(t, c.body))
			assert.Equal(t, c.outcome, result.Outcome, "outcome %s", result.Outcome)
			assert.Equal(t, c.logged, result.IsLogged, "IsLogged")
			assert.Equal(t, c.twoFA, result.Is2FARequired, "Is2FARequired")
			assert.Equal(t, c.cooling, result.CoolingDown, "CoolingDown")
		})
	}
}

func TestParseLoginResultReadsRetryOnlyOnFailure(t *testing.T) {
	failed := ParseLoginResult(mustPage(t,
		`<div class="problem"><ul><li>用户名和密码无法匹配</li></ul></div><input name="once" value="777">`))
	require.False(t, failed.IsLogged)
	assert.Equal(t, []string{"用户名和密码无法匹配"}, failed.Problems)
	assert.Equal(t, "777", failed.Once)

	ok := ParseLoginResult(mustPage(t, "<html><body>"+userChromeHTML+`<input name="once" value="888"></body></html>`))
	require.True(t, ok.IsLogged)
	assert.Empty(t, ok.Problems)
	assert.Empty(t, ok.Once)
	assert.Equal(t, "alice", ok.User.Username)
}

func TestParseTwoFactorResult(t *testing.T) {
	pending := ParseTwoFactorResult(mustPage(t,
		`<div class="message">验证码错误</div><div>`+TwoFactorPendingMarker+`</div>`))
	assert.False(t, pending.IsLogged)
	assert.Equal(t, "验证码错误", pending.Message)

	accepted := ParseTwoFactorResult(mustPage(t, "<html><body>"+userChromeHTML+"</body></html>"))
	assert.True(t, accepted.IsLogged)
	assert.False(t, accepted.CoolingDown)

	cooling := ParseTwoFactorResult(mustPage(t, `<div>登录受限</div>`))
	assert.False(t, cooling.IsLogged)
	assert.True(t, cooling.CoolingDown)
}

func TestLoginOutcomeString(t *testing.T) {
	assert.Equal(t, "logged_in", OutcomeLoggedIn.String())
	assert.Equal(t, "two_factor_required", OutcomeTwoFactorRequired.String())
	assert.Equal(t, "cooling_down", OutcomeCoolingDown.String())
	assert.Equal(t, "problem_reported", OutcomeProblemReported.String())
}
