// Package inspector renders tagged component structs as plain-text panels.
package inspector

import "strings"

// Section is one titled group of components in a panel.
type Section struct {
	Title      string
	Components []interface{}
}

// Describe renders a panel with a header line and one block per section.
// Component fields are laid out according to their inspect tags.
func Describe(title string, sections ...Section) string {
	var sb strings.Builder
	sb.WriteString(title)
	sb.WriteByte('\n')
	sb.WriteString(strings.Repeat("=", len(title)))
	sb.WriteByte('\n')

	for _, s := range sections {
		if s.Title != "" {
			sb.WriteString(strings.ToUpper(s.Title))
			sb.WriteByte('\n')
		}
		for _, c := range s.Components {
			for _, f := range ExtractFields(c) {
				writeField(&sb, f)
			}
		}
	}
	return sb.String()
}

func writeField(sb *strings.Builder, f Field) {
	switch v := f.Value.(type) {
	case bool:
		if f.Widget == WidgetBool {
			WriteBool(sb, f.Name, v)
			return
		}
	case float64:
		if f.Widget == WidgetBar {
			WriteBar(sb, f.Name, v, f.Max)
			return
		}
	}
	WriteLabel(sb, f)
}
