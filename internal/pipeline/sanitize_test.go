package pipeline

import "testing"

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "json fence",
			raw:  "```json\n{\"title\":\"X\"}\n```",
			want: `{"title":"X"}`,
		},
		{
			name: "bare fence",
			raw:  "```\n{\"a\":1}\n```",
			want: `{"a":1}`,
		},
		{
			name: "fence without trailing newline",
			raw:  "```json{\"a\":1}```",
			want: `{"a":1}`,
		},
		{
			name: "surrounding whitespace",
			raw:  "  \n```json\n{\"a\":1}\n```\n\n",
			want: `{"a":1}`,
		},
		{
			name: "prose around fenced block",
			raw:  "Here is the result:\n```json\n{\"a\":1}\n```\nHope this helps!",
			want: `{"a":1}`,
		},
		{
			name: "plain object untouched",
			raw:  `{"a":1}`,
			want: `{"a":1}`,
		},
		{
			name: "fenced code inside a string value survives",
			raw:  "{\"code\":\"```go\\nx := 1\\n```\"}",
			want: "{\"code\":\"```go\\nx := 1\\n```\"}",
		},
		{
			name: "control characters removed",
			raw:  "{\"a\":\x00\"b\x07\x1f\u0085\"}",
			want: `{"a":"b"}`,
		},
		{
			name: "raw newlines between tokens dropped",
			raw:  "{\n\t\"a\": 1\n}",
			want: `{"a": 1}`,
		},
		{
			name: "invalid escape unescaped",
			raw:  `{"a":"O\(n\)"}`,
			want: `{"a":"O(n)"}`,
		},
		{
			name: "valid escapes kept",
			raw:  `{"a":"q\"b\\s\/n\nt\tuA"}`,
			want: `{"a":"q\"b\\s\/n\nt\tuA"}`,
		},
		{
			name: "escaped backslash before a letter kept",
			raw:  `{"re":"\\d+"}`,
			want: `{"re":"\\d+"}`,
		},
		{
			name: "trailing lone backslash kept",
			raw:  `abc\`,
			want: `abc\`,
		},
		{
			name: "empty",
			raw:  "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.raw); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	inputs := []string{
		"```json\n{\"title\":\"X\"}\n```",
		`{"a":"O\(n\)"}`,
		"prose\n```\n{\"a\":[1,2]}\n```",
	}
	for _, in := range inputs {
		once := Sanitize(in)
		if twice := Sanitize(once); twice != once {
			t.Errorf("Sanitize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}
