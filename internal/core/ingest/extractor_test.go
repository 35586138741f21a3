package ingest

import "testing"

func TestSanitizePageText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plain text untouched",
			in:   "Notice periods are thirty days.",
			want: "Notice periods are thirty days.",
		},
		{
			name: "interior newlines and tabs kept",
			in:   "Heading\n\nBody line one\n\tindented line",
			want: "Heading\n\nBody line one\n\tindented line",
		},
		{
			name: "bom and replacement char stripped",
			in:   "\uFEFFstart \uFFFDmiddle end",
			want: "start middle end",
		},
		{
			name: "control bytes stripped",
			in:   "clean\x00 text\x07 here",
			want: "clean text here",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizePageText(tt.in); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
