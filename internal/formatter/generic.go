package formatter

import (
	"strings"

	"github.com/getmentor/notion-notifier/internal/extract"
	"github.com/getmentor/notion-notifier/internal/models"
)

const openInNotionLabel = "Open in Notion"

// Generic renders the title followed by every non-empty property
type Generic struct{}

func (f *Generic) Style() string { return StyleGeneric }

func (f *Generic) Format(payload *models.WebhookPayload) string {
	props := payload.PageProperties()

	title := extract.UntitledFallback
	titleName, hasTitle := "", false
	if prop, ok := extract.TitleProperty(props); ok {
		title = extract.Text(prop.Value)
		titleName, hasTitle = prop.Name, true
	}

	lines := []string{bold(Escape(title)), ""}

	for _, prop := range props.All() {
		if hasTitle && prop.Name == titleName {
			continue
		}
		value := extract.Text(prop.Value)
		if value == "" {
			continue
		}
		lines = append(lines, bold(Escape(prop.Name)+":")+" "+Escape(value))
	}

	if url := payload.PageURL(); url != "" {
		lines = append(lines, "", link(url, openInNotionLabel))
	}

	return strings.Join(lines, "\n")
}
