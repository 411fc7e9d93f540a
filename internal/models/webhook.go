package models

// WebhookPayload represents a Notion automation webhook payload
type WebhookPayload struct {
	Source *WebhookSource `json:"source"`
	Data   *PageData      `json:"data" validate:"required"`
}

// WebhookSource identifies the automation that fired the webhook
type WebhookSource struct {
	Type         string `json:"type"`
	AutomationID string `json:"automation_id"`
	ActionID     string `json:"action_id"`
	EventID      string `json:"event_id"`
	Attempt      int    `json:"attempt"`
}

// PageData is the page (or database row) the automation ran against
type PageData struct {
	Object         string      `json:"object"`
	ID             string      `json:"id"`
	URL            string      `json:"url"`
	CreatedTime    string      `json:"created_time"`
	LastEditedTime string      `json:"last_edited_time"`
	Properties     *Properties `json:"properties" validate:"required"`
}

// PageURL returns the page URL or an empty string when the payload carries no page data
func (p *WebhookPayload) PageURL() string {
	if p == nil || p.Data == nil {
		return ""
	}
	return p.Data.URL
}

// PageProperties returns the property list, never nil
func (p *WebhookPayload) PageProperties() *Properties {
	if p == nil || p.Data == nil || p.Data.Properties == nil {
		return &Properties{}
	}
	return p.Data.Properties
}
