package mail

import (
	"bytes"
	"html/template"
)

const (
	SubjectWelcome      = "Welcome! Your email has been verified"
	SubjectVerification = "Please verify your email address"
)

var welcomeTemplate = template.Must(template.New("welcome").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif;">
  <h1>Welcome{{if .FirstName}}, {{.FirstName}}{{end}}!</h1>
  <p>Your email address <strong>{{.Email}}</strong> has been verified.</p>
  <p><a href="{{.SignInURL}}">Sign in</a> to get started.</p>
</body>
</html>
`))

var verificationTemplate = template.Must(template.New("verification").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif;">
  <p>Hi{{if .FirstName}} {{.FirstName}}{{end}},</p>
  <p>Please confirm <strong>{{.Email}}</strong> by opening the link below. It expires in {{.ValidFor}}.</p>
  <p><a href="{{.Link}}">Verify email address</a></p>
</body>
</html>
`))

type WelcomeData struct {
	FirstName string
	Email     string
	SignInURL string
}

type VerificationData struct {
	FirstName string
	Email     string
	Link      string
	ValidFor  string
}

func RenderWelcome(data WelcomeData) (string, error) {
	return render(welcomeTemplate, data)
}

func RenderVerification(data VerificationData) (string, error) {
	return render(verificationTemplate, data)
}

func render(t *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
