package mail

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// Mailer 出站邮件（目前只有找回密码会用）。SMTP 凭证来自配置，不在这里读环境变量。
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

func New(host string, port int, username, password, from string) *Mailer {
	if from == "" {
		from = username
	}
	return &Mailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (m *Mailer) Send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)
	return m.dialer.DialAndSend(msg)
}

// SendPasswordReset 重置链接 1 小时内有效
func (m *Mailer) SendPasswordReset(to, resetURL string) error {
	body := fmt.Sprintf(`<p>You requested a password reset.</p>
<p><a href=%q>Reset your password</a></p>
<p>The link expires in 1 hour. If you did not request this, ignore this email.</p>`, resetURL)
	return m.Send(to, "Password reset", body)
}
