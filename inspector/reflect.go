package inspector

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Widget selects how a field is drawn.
type Widget int

const (
	WidgetLabel Widget = iota
	WidgetBar
	WidgetBool
	WidgetSkip
)

// Field is one exported component field with its drawing hints.
type Field struct {
	Name   string
	Value  interface{}
	Widget Widget
	Format string  // fmt verb for labels, empty for the default
	Max    float64 // full-scale value for bars
}

// ParseTag reads an inspect tag of the form `widget[,fmt:%.2f][,max:50]`.
// Unknown or empty widgets draw as labels.
func ParseTag(tag string) (w Widget, format string, maxVal float64) {
	maxVal = 1
	name, rest, _ := strings.Cut(tag, ",")
	switch strings.TrimSpace(name) {
	case "bar":
		w = WidgetBar
	case "bool":
		w = WidgetBool
	case "skip":
		w = WidgetSkip
	}

	for rest != "" {
		var opt string
		opt, rest, _ = strings.Cut(rest, ",")
		key, val, ok := strings.Cut(strings.TrimSpace(opt), ":")
		if !ok {
			continue
		}
		switch key {
		case "fmt":
			format = val
		case "max":
			if m, err := strconv.ParseFloat(val, 64); err == nil && m > 0 {
				maxVal = m
			}
		}
	}
	return w, format, maxVal
}

// ExtractFields lists the drawable fields of a component struct or pointer.
// Untagged bools draw as yes/no.
func ExtractFields(component interface{}) []Field {
	v := reflect.Indirect(reflect.ValueOf(component))
	if v.Kind() != reflect.Struct {
		return nil
	}

	t := v.Type()
	var fields []Field
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		tag, tagged := sf.Tag.Lookup("inspect")
		w, format, maxVal := ParseTag(tag)
		if w == WidgetSkip {
			continue
		}
		if !tagged && sf.Type.Kind() == reflect.Bool {
			w = WidgetBool
		}
		fields = append(fields, Field{
			Name:   sf.Name,
			Value:  v.Field(i).Interface(),
			Widget: w,
			Format: format,
			Max:    maxVal,
		})
	}
	return fields
}

// FormatValue renders a label value. Floats default to two decimals and
// durations to simulated days and hours.
func FormatValue(value interface{}, format string) string {
	if format != "" {
		return fmt.Sprintf(format, value)
	}
	switch v := value.(type) {
	case float64:
		return strconv.FormatFloat(v, 'f', 2, 64)
	case time.Duration:
		return formatDuration(v)
	default:
		return fmt.Sprint(value)
	}
}

func formatDuration(d time.Duration) string {
	days := int(d / (24 * time.Hour))
	hours := (d % (24 * time.Hour)).Hours()
	if days == 0 {
		return fmt.Sprintf("%.1fh", hours)
	}
	return fmt.Sprintf("%dd %.1fh", days, hours)
}
