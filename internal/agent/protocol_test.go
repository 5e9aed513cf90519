package agent

import (
	"strings"
	"testing"
)

func TestParseStructured(t *testing.T) {
	tests := []struct {
		name     string
		output   string
		stage    string
		response string
	}{
		{"structured with CMD prefix", "STAGE=coding;CMD=go test ./...", "coding", "go test ./..."},
		{"structured without CMD prefix", "STAGE=testing; npm test", "testing", "npm test"},
		{"structured wait", "STAGE=waiting;CMD=WAIT", "waiting", "WAIT"},
		{"plain response", "ls -la", "", "ls -la"},
		{"plain WAIT", "WAIT", "", "WAIT"},
		{"STAGE prefix without delimiter", "STAGE=coding", "", "STAGE=coding"},
		{"empty", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stage, response := ParseStructured(tt.output)
			if stage != tt.stage {
				t.Errorf("stage = %q, want %q", stage, tt.stage)
			}
			if response != tt.response {
				t.Errorf("response = %q, want %q", response, tt.response)
			}
		})
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{"plain line", "git status", "git status"},
		{"empty becomes WAIT", "   \n\n  ", "WAIT"},
		{"fenced block", "```bash\ngit status\n```", "git status"},
		{"quoted line", `"git status"`, "git status"},
		{"backquoted line", "`WAIT`", "WAIT"},
		{"first meaningful line wins", "\n\nnpm install\nsecond line", "npm install"},
		{
			"structured fields reassembled",
			"Here is my answer.\nstage: coding\ncmd: go build ./...\nGood luck!",
			"STAGE=coding; CMD=go build ./...",
		},
		{"carriage returns collapsed", "run\rthis", "run this"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.raw); got != tt.expected {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.raw, got, tt.expected)
			}
		})
	}
}

func TestSanitizeTruncates(t *testing.T) {
	long := strings.Repeat("x", 600)
	got := Sanitize(long)
	if len(got) != maxResponseLen {
		t.Errorf("len = %d, want %d", len(got), maxResponseLen)
	}
}

func TestRolePromptFallback(t *testing.T) {
	if RolePrompt("monitor") == "" {
		t.Error("monitor prompt should not be empty")
	}
	if RolePrompt("no-such-role") != RolePrompt("monitor") {
		t.Error("unknown roles should fall back to the monitor prompt")
	}
}
