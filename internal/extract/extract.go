// Package extract turns Notion property cells into display strings.
package extract

import (
	"math"
	"strconv"
	"strings"

	"github.com/getmentor/notion-notifier/internal/models"
)

// UntitledFallback is used when a page has no title property
const UntitledFallback = "Untitled"

// Property names read by the curated message style
const (
	StatusPropertyName   = "Status"
	ReviewerPropertyName = "Reviewer"
)

// TitleProperty returns the first property whose type is title
func TitleProperty(props *models.Properties) (models.Property, bool) {
	for _, prop := range props.All() {
		if _, ok := prop.Value.(models.TitleValue); ok {
			return prop, true
		}
	}
	return models.Property{}, false
}

// Title returns the page title or UntitledFallback when there is no title property
func Title(props *models.Properties) string {
	prop, ok := TitleProperty(props)
	if !ok {
		return UntitledFallback
	}
	return Text(prop.Value)
}

// Text renders any property value as a single display string.
// Unsupported types and empty values render as "".
func Text(value models.PropertyValue) string {
	switch v := value.(type) {
	case models.TitleValue:
		return PlainText(v.Fragments)
	case models.RichTextValue:
		return PlainText(v.Fragments)
	case models.StatusValue:
		return optionName(v.Option)
	case models.SelectValue:
		return optionName(v.Option)
	case models.MultiSelectValue:
		names := make([]string, 0, len(v.Options))
		for _, opt := range v.Options {
			names = append(names, opt.Name)
		}
		return strings.Join(names, ", ")
	case models.DateValue:
		if v.Date == nil {
			return ""
		}
		return v.Date.Start
	case models.PeopleValue:
		names := make([]string, 0, len(v.People))
		for _, person := range v.People {
			names = append(names, person.Name)
		}
		return strings.Join(names, ", ")
	case models.CheckboxValue:
		if v.Checked {
			return "Yes"
		}
		return "No"
	case models.NumberValue:
		if v.Number == nil {
			return ""
		}
		return formatNumber(*v.Number)
	case models.URLValue:
		return stringOrEmpty(v.URL)
	case models.EmailValue:
		return stringOrEmpty(v.Email)
	case models.RelationValue:
		if len(v.Pages) == 0 {
			return ""
		}
		return strconv.Itoa(len(v.Pages)) + " linked"
	default:
		return ""
	}
}

// PlainText concatenates the plain text of rich text fragments in order
func PlainText(fragments []models.RichText) string {
	var sb strings.Builder
	for _, f := range fragments {
		sb.WriteString(f.PlainText)
	}
	return sb.String()
}

// Status returns the option name of the "Status" property. The property is
// read as a status cell, falling back to a select cell of the same name.
func Status(props *models.Properties) string {
	prop, ok := props.Get(StatusPropertyName)
	if !ok {
		return ""
	}
	switch v := prop.Value.(type) {
	case models.StatusValue:
		return optionName(v.Option)
	case models.SelectValue:
		return optionName(v.Option)
	default:
		return ""
	}
}

// Reviewers returns the people listed in the "Reviewer" property
func Reviewers(props *models.Properties) []models.Person {
	prop, ok := props.Get(ReviewerPropertyName)
	if !ok {
		return nil
	}
	people, ok := prop.Value.(models.PeopleValue)
	if !ok {
		return nil
	}
	return people.People
}

func optionName(opt *models.SelectOption) string {
	if opt == nil {
		return ""
	}
	return opt.Name
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// formatNumber renders a number the way the automation platform displays it:
// plain decimals in [1e-6, 1e21), shortest exponent form ("1e+21", "1.5e-7")
// outside that range.
func formatNumber(n float64) string {
	if n == 0 {
		return "0"
	}
	if abs := math.Abs(n); abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(n, 'e', -1, 64)
		mantissa, exp, _ := strings.Cut(s, "e")
		sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")
		return mantissa + "e" + sign + digits
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}
