package workspace

import "strings"

// Property models one database property value in both request and response
// payloads. Only the field matching the property's type is populated.
type Property struct {
	Type     string        `json:"type,omitempty"`
	Title    []RichText    `json:"title,omitempty"`
	RichText []RichText    `json:"rich_text,omitempty"`
	Number   *float64      `json:"number,omitempty"`
	Select   *SelectOption `json:"select,omitempty"`
	Date     *DateValue    `json:"date,omitempty"`
	URL      string        `json:"url,omitempty"`
	Checkbox *bool         `json:"checkbox,omitempty"`
}

// RichText is one span of formatted text.
type RichText struct {
	Type      string       `json:"type,omitempty"`
	Text      *TextContent `json:"text,omitempty"`
	PlainText string       `json:"plain_text,omitempty"`
}

// TextContent is the writable body of a rich text span.
type TextContent struct {
	Content string `json:"content"`
}

// SelectOption names a select value.
type SelectOption struct {
	Name string `json:"name"`
}

// DateValue carries an ISO-8601 date or datetime.
type DateValue struct {
	Start string `json:"start"`
}

// TitleProp builds a title property value.
func TitleProp(text string) Property {
	return Property{Title: []RichText{{Type: "text", Text: &TextContent{Content: text}}}}
}

// RichTextProp builds a rich_text property value.
func RichTextProp(text string) Property {
	return Property{RichText: []RichText{{Type: "text", Text: &TextContent{Content: text}}}}
}

// NumberProp builds a number property value.
func NumberProp(value float64) Property {
	return Property{Number: &value}
}

// SelectProp builds a select property value.
func SelectProp(name string) Property {
	return Property{Select: &SelectOption{Name: name}}
}

// DateProp builds a date property value.
func DateProp(start string) Property {
	return Property{Date: &DateValue{Start: start}}
}

// URLProp builds a url property value.
func URLProp(link string) Property {
	return Property{URL: link}
}

// CheckboxProp builds a checkbox property value.
func CheckboxProp(checked bool) Property {
	return Property{Checkbox: &checked}
}

// PlainText flattens the spans of a title or rich_text property.
func (p Property) PlainText() string {
	spans := p.Title
	if len(spans) == 0 {
		spans = p.RichText
	}
	var b strings.Builder
	for _, span := range spans {
		if span.PlainText != "" {
			b.WriteString(span.PlainText)
			continue
		}
		if span.Text != nil {
			b.WriteString(span.Text.Content)
		}
	}
	return b.String()
}

// NumberValue returns the number property value, zero when unset.
func (p Property) NumberValue() float64 {
	if p.Number == nil {
		return 0
	}
	return *p.Number
}

// SelectName returns the select property's option name.
func (p Property) SelectName() string {
	if p.Select == nil {
		return ""
	}
	return p.Select.Name
}

// DateStart returns the date property's start value.
func (p Property) DateStart() string {
	if p.Date == nil {
		return ""
	}
	return p.Date.Start
}

// CheckboxValue returns the checkbox state, false when unset.
func (p Property) CheckboxValue() bool {
	return p.Checkbox != nil && *p.Checkbox
}

// Text returns the named title/rich_text property's flattened text.
func (pg *Page) Text(name string) string {
	if pg == nil {
		return ""
	}
	return pg.Properties[name].PlainText()
}

// FilterRichTextEquals builds an exact-match filter on a rich_text property.
func FilterRichTextEquals(property, value string) map[string]any {
	return map[string]any{
		"property":  property,
		"rich_text": map[string]string{"equals": value},
	}
}

// FilterSelectEquals builds an equality filter on a select property.
func FilterSelectEquals(property, value string) map[string]any {
	return map[string]any{
		"property": property,
		"select":   map[string]string{"equals": value},
	}
}

// FilterCheckboxEquals builds an equality filter on a checkbox property.
func FilterCheckboxEquals(property string, value bool) map[string]any {
	return map[string]any{
		"property": property,
		"checkbox": map[string]bool{"equals": value},
	}
}
