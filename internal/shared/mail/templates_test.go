package mail

import (
	"strings"
	"testing"
)

func TestRenderInvitationFillsFields(t *testing.T) {
	body, err := RenderInvitation(InvitationData{
		SharedBy:      "Alice Smith",
		DocumentTitle: "Launch Plan",
		InviteURL:     "https://docs.example.com/pdf?token=tok-123",
	})
	if err != nil {
		t.Fatalf("RenderInvitation: %v", err)
	}

	for _, want := range []string{
		"Alice Smith",
		"Launch Plan",
		`href="https://docs.example.com/pdf?token=tok-123"`,
		"Accept Invitation",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("body missing %q:\n%s", want, body)
		}
	}
}

func TestRenderInvitationEscapesHTML(t *testing.T) {
	body, err := RenderInvitation(InvitationData{
		SharedBy:      "<script>alert(1)</script>",
		DocumentTitle: "Plan",
		InviteURL:     "https://docs.example.com/pdf?token=t",
	})
	if err != nil {
		t.Fatalf("RenderInvitation: %v", err)
	}
	if strings.Contains(body, "<script>") {
		t.Fatalf("expected html escaping, got:\n%s", body)
	}
}
