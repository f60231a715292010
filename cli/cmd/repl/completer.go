package repl

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/hbs/hbs"
)

// ctrlCommands are the available command-mode commands.
var ctrlCommands = []string{"help", "view", "root", "collapse", "clear", "quit"}

// viewNames are the arguments accepted by the view command.
var viewNames = []string{"go", "ops", "paths"}

var (
	// headerKeywords may follow the helper name in a block header.
	headerKeywords = []string{"some", "as"}

	// valueKeywords may appear in a value expression.
	valueKeywords = []string{"else", "this"}
)

// isWordBoundary returns true if the rune delimits a completion word:
// whitespace, template delimiters and markers, member access, and call
// punctuation.
func isWordBoundary(r rune) bool {
	switch r {
	case ' ', '\t',
		'{', '}', '#', '/', '~', '!', '\\',
		'.', '(', ')', ',':
		return true
	}

	return false
}

// wordBounds returns the current word at the cursor position and its byte
// boundaries within input. The word is empty when the cursor sits on a
// boundary.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(max(cursor, 0), len(input))

	start = cursor

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	end = cursor

	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// templateCandidates returns the completions for a word starting at offset
// start of a template line. Only words inside an unclosed tag complete:
// helper names directly after "{{#" or "{{/", header keywords later in a
// block header, and value keywords elsewhere.
func templateCandidates(input string, start int) []string {
	prefix := input[:start]

	open := strings.LastIndex(prefix, "{{")
	if open < 0 || strings.Contains(prefix[open:], "}}") {
		return nil
	}

	inner := strings.TrimLeft(prefix[open+2:], "{~")

	switch {
	case inner == "#" || inner == "/":
		return hbs.Helpers()
	case strings.HasPrefix(inner, "#"):
		return headerKeywords
	case strings.HasPrefix(inner, "/"), strings.HasPrefix(inner, "!"):
		return nil
	default:
		return valueKeywords
	}
}

// ctrlCandidates returns the completions for a command line word.
func ctrlCandidates(input string, start int) []string {
	fields := strings.Fields(input[:start])

	switch {
	case len(fields) == 0:
		return ctrlCommands
	case len(fields) == 1 && fields[0] == "view":
		return viewNames
	case len(fields) == 1 && fields[0] == "collapse":
		return []string{"on", "off"}
	}

	return nil
}

// computeMatches finds the fuzzy matches for the word under the cursor.
// It returns the matches (ranked best-first) and the word boundaries.
func (m model) computeMatches() (matches fuzzy.Matches, wordStart, wordEnd int) {
	input := m.input.Value()

	word, wordStart, wordEnd := wordBounds(input, m.input.Position())
	if word == "" {
		return nil, wordStart, wordEnd
	}

	var candidates []string

	if m.mode == modeCtrl {
		candidates = ctrlCandidates(input, wordStart)
	} else {
		candidates = templateCandidates(input, wordStart)
	}

	if len(candidates) == 0 {
		return nil, wordStart, wordEnd
	}

	return fuzzy.Find(word, candidates), wordStart, wordEnd
}

// renderCandidateBar builds the single-line completion bar, ellipsized to fit
// within the given terminal width. The selected candidate (when tabbing)
// uses the selected style.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	ellipsis := hintStyle.Render("...")
	reserve := lipgloss.Width(sep) + lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		rendered := renderCandidate(match, tabActive && i == suggIdx)

		entryWidth := lipgloss.Width(rendered)
		if i > 0 {
			entryWidth += lipgloss.Width(sep)
		}

		last := i == len(matches)-1
		if i > 0 && !last && used+entryWidth+reserve > width {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += entryWidth
	}

	return b.String()
}

// renderCandidate renders a single candidate with matched characters
// highlighted.
func renderCandidate(match fuzzy.Match, selected bool) string {
	base, highlight := suggestionStyle, matchStyle
	if selected {
		base, highlight = selectedStyle, selectedMatchStyle
	}

	matched := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matched[idx] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		if matched[i] {
			b.WriteString(highlight.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}

	return b.String()
}
