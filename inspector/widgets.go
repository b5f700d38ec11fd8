package inspector

import (
	"fmt"
	"strings"
)

// Layout of text widgets.
const (
	labelWidth = 12
	barWidth   = 20
)

// WriteLabel writes "name: value".
func WriteLabel(sb *strings.Builder, f Field) {
	fmt.Fprintf(sb, "  %-*s %s\n", labelWidth, f.Name+":", FormatValue(f.Value, f.Format))
}

// WriteBar writes a horizontal bar scaled to the field's max.
func WriteBar(sb *strings.Builder, name string, value, maxVal float64) {
	fmt.Fprintf(sb, "  %-*s [%s] %.2f\n", labelWidth, name+":", bar(value, maxVal), value)
}

// WriteBool writes yes or no.
func WriteBool(sb *strings.Builder, name string, value bool) {
	text := "no"
	if value {
		text = "yes"
	}
	fmt.Fprintf(sb, "  %-*s %s\n", labelWidth, name+":", text)
}

func bar(value, maxVal float64) string {
	ratio := min(max(value/maxVal, 0), 1)
	filled := int(ratio*barWidth + 0.5)
	return strings.Repeat("#", filled) + strings.Repeat(".", barWidth-filled)
}
