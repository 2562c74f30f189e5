package notify

import (
	"bytes"
	"fmt"
	"html/template"
)

var requestCreatedTmpl = template.Must(template.New("request_created").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #4ad3e5;">New join request</h2>
  <p>Hi {{.Owner.Name}},</p>
  <p><strong>{{.Requester.Name}}</strong> (@{{.Requester.Username}}) wants to join your project <strong>"{{.Project.Title}}"</strong>.</p>
  <div style="background: #f5f5f5; padding: 15px; border-radius: 5px; margin: 20px 0;">
    <ul>
      <li>Name: {{.Requester.Name}}</li>
      <li>Username: @{{.Requester.Username}}</li>
      <li>Email: {{.Requester.Email}}</li>
    </ul>
  </div>
  <p><a href="{{.Link}}" style="background: #4ad3e5; color: white; padding: 12px 24px; text-decoration: none; border-radius: 5px; display: inline-block;">Review requests</a></p>
  <p style="color: #666; font-size: 12px; margin-top: 30px;">This is an automated message from Pair Connect.</p>
</div>`))

var requestAcceptedTmpl = template.Must(template.New("request_accepted").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #4ad3e5;">Your request was accepted</h2>
  <p>Hi {{.Requester.Name}},</p>
  <p>Your request to join <strong>"{{.Project.Title}}"</strong> was <strong style="color: green;">accepted</strong>.</p>
  <p>You can now see the meeting links of every session of the project and take part in them.</p>
  <p><a href="{{.Link}}" style="background: #4ad3e5; color: white; padding: 12px 24px; text-decoration: none; border-radius: 5px; display: inline-block;">Open project</a></p>
  <p style="color: #666; font-size: 12px; margin-top: 30px;">This is an automated message from Pair Connect.</p>
</div>`))

func render(tmpl *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
