package templates

import (
	"bytes"
	"embed"
	"fmt"
	htmpl "html/template"
)

//go:embed *.tmpl
var FS embed.FS

var templates = htmpl.Must(htmpl.New("email").ParseFS(FS, "*.tmpl"))

// Render renders the named template with data and returns subject, text
// and html bodies. Unknown template names are an error.
func Render(name string, data map[string]any) (subject, text, html string, err error) {
	switch name {
	case "welcome":
		subject = "Welcome to QuizPay"
		text = fmt.Sprintf("Hi %v, your QuizPay account is ready. Answer questions, earn rewards.", data["Name"])
	default:
		return "", "", "", fmt.Errorf("unknown email template %q", name)
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name+".html.tmpl", data); err != nil {
		return "", "", "", err
	}
	return subject, text, buf.String(), nil
}
