package internal

import (
	"regexp"
	"strings"
)

// defaultLanguage is used for fences without a language tag
const defaultLanguage = "text"

var (
	// fenceRe matches ```lang\n<body>``` non-greedily, so each body ends at the first closing fence
	fenceRe = regexp.MustCompile("(?s)```(\\w+)?\\n(.*?)```")

	// commentFilenameRe matches a single-line block comment such as /* utils.ts */
	commentFilenameRe = regexp.MustCompile(`^/\*\s*(.*?)\s*\*/$`)

	// bareFilenameRe matches a bare path ending in a known source extension
	bareFilenameRe = regexp.MustCompile(`^\S+\.(js|ts|py|java|cpp|html|css|json)$`)
)

// ExtractCodeBlocks returns the fenced code blocks in text, in order of appearance.
// Unterminated fences produce no block.
func ExtractCodeBlocks(text string) []CodeBlock {
	matches := fenceRe.FindAllStringSubmatch(text, -1)
	blocks := make([]CodeBlock, 0, len(matches))

	for _, m := range matches {
		lang := m[1]
		if lang == "" {
			lang = defaultLanguage
		}
		code := strings.TrimSpace(m[2])
		blocks = append(blocks, CodeBlock{
			Language: lang,
			Code:     code,
			Filename: ExtractFilename(code),
		})
	}

	return blocks
}

// ExtractFilename guesses a filename from the first line of a code block.
// It returns "" when there is no signal.
func ExtractFilename(code string) string {
	firstLine, _, _ := strings.Cut(strings.TrimSpace(code), "\n")
	firstLine = strings.TrimSpace(firstLine)
	if firstLine == "" {
		return ""
	}

	if m := commentFilenameRe.FindStringSubmatch(firstLine); m != nil {
		return m[1]
	}

	if bareFilenameRe.MatchString(firstLine) {
		return firstLine
	}

	return ""
}
