// Package notify registers notification nodes. All of them conclude a branch.
package notify

import "github.com/Tsinling0525/flowsmith/catalog"

const (
	EmailType = "n8n-nodes-base.emailSend"
	SlackType = "n8n-nodes-base.slack"
)

func init() {
	catalog.Register(catalog.Entry{
		Kind:        catalog.KindEmail,
		Type:        EmailType,
		DisplayName: "Send Email",
		Version:     2.1,
		Category:    catalog.CategoryNotification,
		Keywords:    []string{"email", "mail", "smtp", "inbox", "confirmation", "receipt", "newsletter"},
		Concepts:    []string{"send email", "email confirmation", "send receipt"},
		UseCases:    []string{"send a confirmation email to the customer", "email the report to the team"},
		Defaults: map[string]any{
			"fromEmail":   "",
			"toEmail":     "",
			"subject":     "",
			"emailFormat": "text",
			"text":        "",
			"options":     map[string]any{},
		},
		Required: []string{"fromEmail", "toEmail", "subject"},
		Terminal: true,
	})
	catalog.Register(catalog.Entry{
		Kind:        catalog.KindSlack,
		Type:        SlackType,
		DisplayName: "Slack",
		Version:     2.2,
		Category:    catalog.CategoryNotification,
		Keywords:    []string{"slack", "channel", "chat", "alert", "team", "ping"},
		Concepts:    []string{"post to slack", "alert the team", "slack message"},
		UseCases:    []string{"alert the team in slack", "post a message to the sales channel"},
		Defaults: map[string]any{
			"resource":  "message",
			"operation": "post",
			"select":    "channel",
			"channelId": map[string]any{"__rl": true, "mode": "name", "value": ""},
			"text":      "",
		},
		Required: []string{"text"},
		Terminal: true,
	})
}
