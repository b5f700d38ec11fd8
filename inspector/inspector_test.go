package inspector

import (
	"strings"
	"testing"
	"time"
)

type sample struct {
	Name    string        `inspect:"label"`
	Level   float64       `inspect:"bar"`
	Heat    float64       `inspect:"bar,max:50"`
	Ratio   float64       `inspect:"label,fmt:%.3f"`
	Age     time.Duration `inspect:"label"`
	Dead    bool
	Count   int
	Hidden  int `inspect:"skip"`
	private int
}

func TestParseTag(t *testing.T) {
	tests := []struct {
		tag    string
		widget Widget
		format string
		max    float64
	}{
		{"", WidgetLabel, "", 1},
		{"bar", WidgetBar, "", 1},
		{"bar,max:50", WidgetBar, "", 50},
		{"bar,max:-2", WidgetBar, "", 1},
		{"label,fmt:%.1f", WidgetLabel, "%.1f", 1},
		{"label,fmt:%.2f°", WidgetLabel, "%.2f°", 1},
		{"bool", WidgetBool, "", 1},
		{"skip", WidgetSkip, "", 1},
		{"unknown", WidgetLabel, "", 1},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			w, format, maxVal := ParseTag(tt.tag)
			if w != tt.widget || format != tt.format || maxVal != tt.max {
				t.Errorf("ParseTag(%q) = %v, %q, %v, want %v, %q, %v",
					tt.tag, w, format, maxVal, tt.widget, tt.format, tt.max)
			}
		})
	}
}

func TestExtractFields(t *testing.T) {
	fields := ExtractFields(&sample{Name: "oink", Dead: true})

	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	want := []string{"Name", "Level", "Heat", "Ratio", "Age", "Dead", "Count"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Fatalf("fields = %v, want %v", names, want)
	}
	if fields[5].Widget != WidgetBool {
		t.Errorf("Dead widget = %v, want WidgetBool", fields[5].Widget)
	}
	if fields[6].Widget != WidgetLabel {
		t.Errorf("Count widget = %v, want WidgetLabel", fields[6].Widget)
	}
	if fields[2].Max != 50 {
		t.Errorf("Heat max = %v, want 50", fields[2].Max)
	}

	if ExtractFields(42) != nil {
		t.Error("non-struct should yield no fields")
	}
	var nilPtr *sample
	if ExtractFields(nilPtr) != nil {
		t.Error("nil pointer should yield no fields")
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		value  interface{}
		format string
		want   string
	}{
		{0.5, "", "0.50"},
		{3, "", "3"},
		{0.12345, "%.3f", "0.123"},
		{26 * time.Hour, "", "1d 2.0h"},
		{90 * time.Minute, "", "1.5h"},
	}
	for _, tt := range tests {
		if got := FormatValue(tt.value, tt.format); got != tt.want {
			t.Errorf("FormatValue(%v, %q) = %q, want %q", tt.value, tt.format, got, tt.want)
		}
	}
}

func TestDescribe(t *testing.T) {
	s := sample{Name: "oink", Level: 0.5, Heat: 25, Dead: true, Count: 4}
	out := Describe("Entity 3", Section{Title: "vitals", Components: []interface{}{s}})

	lines := strings.Split(out, "\n")
	if lines[0] != "Entity 3" || lines[1] != "========" {
		t.Fatalf("unexpected header %q / %q", lines[0], lines[1])
	}
	if lines[2] != "VITALS" {
		t.Errorf("section title = %q, want VITALS", lines[2])
	}
	for _, want := range []string{
		"Name:        oink",
		"[##########..........] 0.50",  // Level, max 1
		"[##########..........] 25.00", // Heat, max 50
		"Dead:        yes",
		"Count:       4",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Describe output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Hidden") {
		t.Error("skipped field rendered")
	}
}
