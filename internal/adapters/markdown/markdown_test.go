package markdown

import (
	"strings"
	"testing"
)

func TestToHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
		deny []string
	}{
		{"emphasis", "Clinics *lose* patients", []string{"<em>lose</em>"}, nil},
		{"hard wraps", "line one\nline two", []string{"<br"}, nil},
		{"raw html escaped", "<script>alert(1)</script>", nil, []string{"<script>"}},
		{"linkify", "see https://example.com", []string{`href="https://example.com"`}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToHTML(tt.in)
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("ToHTML(%q) = %q, missing %q", tt.in, got, w)
				}
			}
			for _, d := range tt.deny {
				if strings.Contains(got, d) {
					t.Errorf("ToHTML(%q) = %q, must not contain %q", tt.in, got, d)
				}
			}
		})
	}
}
