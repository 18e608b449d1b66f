package main

import (
	"bytes"
	"html/template"
	"log"

	"github.com/go-mail/mail/v2"
)

var welcomeTemplate = template.Must(template.New("welcome").Parse(`
{{define "subject"}}Welcome to the board!{{end}}
{{define "plainBody"}}Hi {{.Username}},

Your account was created successfully. Log in with your username to start
organizing your tasks.
{{end}}
{{define "htmlBody"}}<!doctype html>
<html>
<body>
<p>Hi {{.Username}},</p>
<p>Your account was created successfully. Log in with your username to start
organizing your tasks.</p>
</body>
</html>{{end}}
`))

type mailer struct {
	dailer *mail.Dialer
	sender string
}

func newMailer(host string, port int, username string, password string, sender string) *mailer {
	dailer := mail.NewDialer(host, port, username, password)
	return &mailer{
		dailer: dailer,
		sender: sender,
	}
}

// sendWelcome is best-effort; registration already succeeded by the time it
// runs and a mail failure only gets logged.
func (m *mailer) sendWelcome(u *user) {
	err := m.send(u.Email, welcomeTemplate, u)
	if err != nil {
		log.Println(err)
	}
}

func (m *mailer) send(to string, tmpl *template.Template, data any) error {
	var subject bytes.Buffer
	err := tmpl.ExecuteTemplate(&subject, "subject", data)
	if err != nil {
		return err
	}
	var plainBody bytes.Buffer
	err = tmpl.ExecuteTemplate(&plainBody, "plainBody", data)
	if err != nil {
		return err
	}
	var htmlBody bytes.Buffer
	err = tmpl.ExecuteTemplate(&htmlBody, "htmlBody", data)
	if err != nil {
		return err
	}

	msg := mail.NewMessage()
	msg.SetHeader("To", to)
	msg.SetHeader("From", m.sender)
	msg.SetHeader("Subject", subject.String())
	msg.SetBody("text/plain", plainBody.String())
	msg.AddAlternative("text/html", htmlBody.String())

	for i := 0; i < 3; i++ {
		err = m.dailer.DialAndSend(msg)
		if err == nil {
			break
		}
	}
	return err
}
