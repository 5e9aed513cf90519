package agent

import (
	"regexp"
	"strings"
)

// maxResponseLen caps a sanitized agent reply.
const maxResponseLen = 400

var (
	stageFieldRe = regexp.MustCompile(`(?i)\bstage\s*[:=]\s*([a-z-]+)\b`)
	cmdFieldRe   = regexp.MustCompile(`(?i)\bcmd\s*[:=]\s*(.+)`)
)

// ParseStructured splits a STAGE=<stage>;CMD=<command> reply into its
// stage hint and command. The first ';' is the delimiter; a literal CMD=
// prefix on the remainder is stripped if present. Replies without the
// STAGE= prefix are returned whole with an empty stage.
func ParseStructured(output string) (stage, response string) {
	if !strings.HasPrefix(output, "STAGE=") {
		return "", output
	}
	parts := strings.SplitN(output, ";", 2)
	if len(parts) < 2 {
		return "", output
	}
	stage = strings.TrimSpace(strings.TrimPrefix(parts[0], "STAGE="))
	response = strings.TrimSpace(parts[1])
	response = strings.TrimSpace(strings.TrimPrefix(response, "CMD="))
	return stage, response
}

// Sanitize normalizes a raw model reply to the single-line protocol.
// Markdown fences are stripped, structured STAGE/CMD fields are
// reconstructed when the model emits extra prose around them, otherwise
// the first meaningful line wins. Symmetric quotes are removed, carriage
// returns collapse to spaces, overlong replies are truncated, and an
// empty reply becomes WAIT.
func Sanitize(raw string) string {
	text := strings.TrimSpace(raw)

	if strings.HasPrefix(text, "```") {
		lines := strings.Split(text, "\n")
		if len(lines) > 0 && strings.HasPrefix(strings.TrimLeft(lines[0], " \t"), "```") {
			lines = lines[1:]
		}
		if len(lines) > 0 && strings.HasPrefix(strings.TrimSpace(lines[len(lines)-1]), "```") {
			lines = lines[:len(lines)-1]
		}
		text = strings.TrimSpace(strings.Join(lines, "\n"))
	}

	var line string
	stageMatch := stageFieldRe.FindStringSubmatch(text)
	cmdMatch := cmdFieldRe.FindStringSubmatch(text)
	if stageMatch != nil && cmdMatch != nil {
		stage := strings.ToLower(strings.TrimSpace(stageMatch[1]))
		cmd := firstNonEmptyLine(strings.TrimSpace(cmdMatch[1]))
		if cmd == "" {
			cmd = "WAIT"
		}
		line = "STAGE=" + stage + "; CMD=" + cmd
	} else {
		line = firstNonEmptyLine(text)
		if len(line) >= 2 && line[0] == line[len(line)-1] &&
			(line[0] == '\'' || line[0] == '"' || line[0] == '`') {
			line = strings.TrimSpace(line[1 : len(line)-1])
		}
	}

	line = strings.TrimSpace(strings.ReplaceAll(line, "\r", " "))
	if line == "" {
		return "WAIT"
	}
	if len(line) > maxResponseLen {
		line = strings.TrimRight(line[:maxResponseLen], " ")
	}
	return line
}

// firstNonEmptyLine returns the first line with non-blank content.
func firstNonEmptyLine(text string) string {
	for _, l := range strings.Split(text, "\n") {
		if t := strings.TrimSpace(l); t != "" {
			return t
		}
	}
	return ""
}
