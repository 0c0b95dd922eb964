package email

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/Masterminds/sprig/v3"
)

// ContactEmailData holds the data for contact form emails
type ContactEmailData struct {
	SenderName  string
	SenderEmail string
	Subject     string
	Message     string
}

const contactEmailTemplate = `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #0f172a; border-bottom: 2px solid #14b8a6; padding-bottom: 10px;">
    New Contact Form Submission
  </h2>
  <div style="background-color: #f8fafc; padding: 20px; border-radius: 8px; margin: 20px 0;">
    <p><strong>Name:</strong> {{ .SenderName }}</p>
    <p><strong>Email:</strong> {{ .SenderEmail }}</p>
    <p><strong>Subject:</strong> {{ .Subject }}</p>
  </div>
  <div style="background-color: #ffffff; padding: 20px; border-left: 4px solid #14b8a6; margin: 20px 0;">
    <h3 style="color: #0f172a; margin-top: 0;">Message:</h3>
    <p style="line-height: 1.6; color: #374151;">{{ nl2br .Message }}</p>
  </div>
  <div style="margin-top: 30px; padding-top: 20px; border-top: 1px solid #e5e7eb; color: #6b7280; font-size: 14px;">
    <p>This email was sent from your portfolio contact form.</p>
    <p>Reply directly to this email to respond to {{ .SenderName | trim }}.</p>
  </div>
</div>`

var contactTmpl = template.Must(
	template.New("contact").
		Funcs(sprig.HtmlFuncMap()).
		Funcs(template.FuncMap{"nl2br": nl2br}).
		Parse(contactEmailTemplate),
)

// RenderContactEmail renders the notification body. Every field is
// HTML-escaped; message newlines become <br>.
func RenderContactEmail(data ContactEmailData) (string, error) {
	var body bytes.Buffer
	if err := contactTmpl.Execute(&body, data); err != nil {
		return "", fmt.Errorf("failed to execute email template: %w", err)
	}
	return body.String(), nil
}

func nl2br(s string) template.HTML {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = template.HTMLEscapeString(line)
	}
	return template.HTML(strings.Join(lines, "<br>"))
}
