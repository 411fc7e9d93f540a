package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Notion property type discriminators
const (
	PropertyTypeTitle       = "title"
	PropertyTypeRichText    = "rich_text"
	PropertyTypeStatus      = "status"
	PropertyTypeSelect      = "select"
	PropertyTypeMultiSelect = "multi_select"
	PropertyTypeDate        = "date"
	PropertyTypePeople      = "people"
	PropertyTypeCheckbox    = "checkbox"
	PropertyTypeNumber      = "number"
	PropertyTypeURL         = "url"
	PropertyTypeEmail       = "email"
	PropertyTypeRelation    = "relation"
)

// PropertyValue is the typed payload of a single property cell.
// The set of implementations is closed: one type per supported discriminator
// plus UnknownValue for everything else.
type PropertyValue interface {
	PropertyType() string
}

// RichText is a single fragment of a Notion rich text run
type RichText struct {
	PlainText string `json:"plain_text"`
}

// SelectOption is a select, multi-select or status option
type SelectOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DateRange is the value of a date property
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Person is a Notion user referenced from a people property
type Person struct {
	ID     string        `json:"id"`
	Name   string        `json:"name"`
	Person *PersonDetail `json:"person"`
}

// PersonDetail carries the optional contact details of a person
type PersonDetail struct {
	Email string `json:"email"`
}

// Email returns the person's email or an empty string
func (p Person) Email() string {
	if p.Person == nil {
		return ""
	}
	return p.Person.Email
}

// PageReference is a single relation link
type PageReference struct {
	ID string `json:"id"`
}

type TitleValue struct{ Fragments []RichText }
type RichTextValue struct{ Fragments []RichText }
type StatusValue struct{ Option *SelectOption }
type SelectValue struct{ Option *SelectOption }
type MultiSelectValue struct{ Options []SelectOption }
type DateValue struct{ Date *DateRange }
type PeopleValue struct{ People []Person }
type CheckboxValue struct{ Checked bool }
type NumberValue struct{ Number *float64 }
type URLValue struct{ URL *string }
type EmailValue struct{ Email *string }
type RelationValue struct{ Pages []PageReference }

// UnknownValue stands in for any discriminator this service does not model
type UnknownValue struct{ Type string }

func (TitleValue) PropertyType() string       { return PropertyTypeTitle }
func (RichTextValue) PropertyType() string    { return PropertyTypeRichText }
func (StatusValue) PropertyType() string      { return PropertyTypeStatus }
func (SelectValue) PropertyType() string      { return PropertyTypeSelect }
func (MultiSelectValue) PropertyType() string { return PropertyTypeMultiSelect }
func (DateValue) PropertyType() string        { return PropertyTypeDate }
func (PeopleValue) PropertyType() string      { return PropertyTypePeople }
func (CheckboxValue) PropertyType() string    { return PropertyTypeCheckbox }
func (NumberValue) PropertyType() string      { return PropertyTypeNumber }
func (URLValue) PropertyType() string         { return PropertyTypeURL }
func (EmailValue) PropertyType() string       { return PropertyTypeEmail }
func (RelationValue) PropertyType() string    { return PropertyTypeRelation }
func (v UnknownValue) PropertyType() string   { return v.Type }

// Property is a named cell of a page
type Property struct {
	Name  string
	ID    string
	Value PropertyValue
}

// UnmarshalJSON decodes a property cell by its "type" discriminator.
// Missing, null or mistyped variant data decodes to the zero value of that
// variant instead of failing the whole payload. A cell that is not an object,
// or whose discriminator is not a string, becomes an UnknownValue.
func (p *Property) UnmarshalJSON(data []byte) error {
	var head struct {
		ID   string `json:"id"`
		Type string `json:"type"`
	}
	var fields map[string]json.RawMessage
	if json.Unmarshal(data, &head) != nil || json.Unmarshal(data, &fields) != nil {
		p.Value = UnknownValue{}
		return nil
	}

	p.ID = head.ID
	p.Value = decodeValue(head.Type, fields[head.Type])
	return nil
}

func decodeValue(kind string, raw json.RawMessage) PropertyValue {
	switch kind {
	case PropertyTypeTitle:
		var v []RichText
		decodeLenient(raw, &v)
		return TitleValue{Fragments: v}
	case PropertyTypeRichText:
		var v []RichText
		decodeLenient(raw, &v)
		return RichTextValue{Fragments: v}
	case PropertyTypeStatus:
		var v *SelectOption
		decodeLenient(raw, &v)
		return StatusValue{Option: v}
	case PropertyTypeSelect:
		var v *SelectOption
		decodeLenient(raw, &v)
		return SelectValue{Option: v}
	case PropertyTypeMultiSelect:
		var v []SelectOption
		decodeLenient(raw, &v)
		return MultiSelectValue{Options: v}
	case PropertyTypeDate:
		var v *DateRange
		decodeLenient(raw, &v)
		return DateValue{Date: v}
	case PropertyTypePeople:
		var v []Person
		decodeLenient(raw, &v)
		return PeopleValue{People: v}
	case PropertyTypeCheckbox:
		var v bool
		decodeLenient(raw, &v)
		return CheckboxValue{Checked: v}
	case PropertyTypeNumber:
		var v *float64
		decodeLenient(raw, &v)
		return NumberValue{Number: v}
	case PropertyTypeURL:
		var v *string
		decodeLenient(raw, &v)
		return URLValue{URL: v}
	case PropertyTypeEmail:
		var v *string
		decodeLenient(raw, &v)
		return EmailValue{Email: v}
	case PropertyTypeRelation:
		var v []PageReference
		decodeLenient(raw, &v)
		return RelationValue{Pages: v}
	default:
		return UnknownValue{Type: kind}
	}
}

// decodeLenient leaves dst at its zero value when raw is absent or does not fit
func decodeLenient[T any](raw json.RawMessage, dst *T) {
	if len(raw) == 0 {
		return
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return
	}
	*dst = v
}

// Properties is the property map of a page, kept in document order
type Properties struct {
	items []Property
}

// NewProperties builds a property list from already-decoded cells
func NewProperties(items ...Property) *Properties {
	props := &Properties{}
	for _, item := range items {
		props.set(item)
	}
	return props
}

// All returns the properties in document order
func (p *Properties) All() []Property {
	if p == nil {
		return nil
	}
	return p.items
}

// Len returns the number of properties
func (p *Properties) Len() int {
	if p == nil {
		return 0
	}
	return len(p.items)
}

// Get looks a property up by name
func (p *Properties) Get(name string) (Property, bool) {
	if p == nil {
		return Property{}, false
	}
	for _, item := range p.items {
		if item.Name == name {
			return item, true
		}
	}
	return Property{}, false
}

// set appends a property, replacing an earlier one with the same name in place
func (p *Properties) set(prop Property) {
	for i := range p.items {
		if p.items[i].Name == prop.Name {
			p.items[i] = prop
			return
		}
	}
	p.items = append(p.items, prop)
}

// UnmarshalJSON decodes a JSON object while preserving key order
func (p *Properties) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("properties: expected JSON object")
	}

	p.items = nil
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("properties: expected string key")
		}

		var prop Property
		if err := dec.Decode(&prop); err != nil {
			return fmt.Errorf("properties: %s: %w", key, err)
		}
		prop.Name = key
		p.set(prop)
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
