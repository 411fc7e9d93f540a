package formatter

import (
	"strings"

	"github.com/getmentor/notion-notifier/internal/extract"
	"github.com/getmentor/notion-notifier/internal/identity"
	"github.com/getmentor/notion-notifier/internal/models"
)

const statusLabel = "Статус: "

// Curated renders the title, status and reviewer mentions only
type Curated struct {
	resolver *identity.Resolver
}

// NewCurated creates a curated formatter
func NewCurated(resolver *identity.Resolver) *Curated {
	return &Curated{resolver: resolver}
}

func (f *Curated) Style() string { return StyleCurated }

func (f *Curated) Format(payload *models.WebhookPayload) string {
	props := payload.PageProperties()
	title := Escape(extract.Title(props))

	lines := make([]string, 0, 4)
	if url := payload.PageURL(); url != "" {
		lines = append(lines, link(url, title))
	} else {
		lines = append(lines, bold(title))
	}

	if status := extract.Status(props); status != "" {
		lines = append(lines, statusLabel+Escape(status))
	}

	for _, reviewer := range extract.Reviewers(props) {
		lines = append(lines, f.mention(reviewer))
	}

	return strings.Join(lines, "\n")
}

// mention returns "@handle" for known people and the escaped name otherwise.
// Handles are Telegram usernames and need no escaping.
func (f *Curated) mention(person models.Person) string {
	if handle, ok := f.resolver.Resolve(person); ok {
		return "@" + handle
	}
	return Escape(person.Name)
}
