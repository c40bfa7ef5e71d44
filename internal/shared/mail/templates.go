package mail

import (
	"bytes"
	"html/template"
)

// InvitationData fills the invitation email template.
type InvitationData struct {
	SharedBy      string
	DocumentTitle string
	InviteURL     string
}

// RenderInvitation renders the document invitation email body.
func RenderInvitation(data InvitationData) (string, error) {
	var buf bytes.Buffer
	if err := invitationTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

var invitationTemplate = template.Must(template.New("invitation").Parse(`<div style="background-color: #f8f8f8; padding: 20px; border-radius: 10px;">
  <h2 style="color: #333;">Hello,</h2>
  <p style="color: #555;">{{.SharedBy}} wants to share a document with you.</p>
  <p style="color: #555;">The document's title is: <strong>{{.DocumentTitle}}</strong>.</p>
  <p style="color: #555;">You can view the document by clicking the link below:</p>
  <div style="text-align: center; margin-top: 20px;">
    <a href="{{.InviteURL}}" style="display: inline-block; background-color: #4CAF50; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px;">Accept Invitation</a>
  </div>
</div>`))
