// Package formatter renders Notion webhook payloads as Telegram HTML messages.
package formatter

import (
	"fmt"
	"strings"

	"github.com/getmentor/notion-notifier/internal/identity"
	"github.com/getmentor/notion-notifier/internal/models"
)

// Message styles selectable through configuration
const (
	StyleCurated = "curated"
	StyleGeneric = "generic"
)

// Formatter turns a webhook payload into message text
type Formatter interface {
	Format(payload *models.WebhookPayload) string
	Style() string
}

// New returns the formatter for the configured style
func New(style string, resolver *identity.Resolver) (Formatter, error) {
	switch style {
	case StyleCurated:
		return NewCurated(resolver), nil
	case StyleGeneric:
		return &Generic{}, nil
	default:
		return nil, fmt.Errorf("unknown message style %q", style)
	}
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// Escape replaces the characters Telegram HTML treats as markup.
// Quotes are left alone.
func Escape(s string) string {
	return htmlEscaper.Replace(s)
}

var hrefEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

// link wraps an already escaped label in an anchor; the href is escaped for a
// double-quoted attribute.
func link(href, label string) string {
	return `<a href="` + hrefEscaper.Replace(href) + `">` + label + `</a>`
}

func bold(s string) string {
	return "<b>" + s + "</b>"
}
