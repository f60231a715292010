package hbs

import (
	"strings"
	"unicode"
)

// Kind classifies a delimited expression found in template source.
type Kind int

const (
	KindComment Kind = iota // comment
	KindEscaped             // escaped
	KindRaw                 // raw
	KindOpen                // open
	KindClose               // close
	KindLiteral             // literal
)

func (k Kind) String() string {
	switch k {
	case KindComment:
		return "comment"
	case KindEscaped:
		return "escaped"
	case KindRaw:
		return "raw"
	case KindOpen:
		return "open"
	case KindClose:
		return "close"
	case KindLiteral:
		return "literal"
	default:
		return "unknown"
	}
}

// Fixed delimiters.
const (
	delimOpen         = "{{"
	delimClose        = "}}"
	delimRawClose     = "}}}"
	delimBlockComment = "--"
	delimCommentClose = "--}}"
	markEscape        = '\\'
	markTrim          = '~'
)

// span is a half-open byte range [start, end) of the template source.
type span struct {
	start, end int
}

func (s span) of(src string) string { return src[s.start:s.end] }

// expression is a single delimited tag located by scan.
//
// prefix is the literal text preceding the tag, content is the text between
// the delimiters with markers and trim marks removed, and next is the
// offset at which scanning resumes.
type expression struct {
	kind    Kind
	prefix  span
	content span
	tag     span // the whole tag, delimiters included
	next    int
}

// scan locates the next expression in src at or after pos.
// It reports false when no opening delimiter remains.
func scan(src string, pos int) (expression, bool, error) {
	idx := strings.Index(src[pos:], delimOpen)
	if idx < 0 {
		return expression{}, false, nil
	}

	start := pos + idx
	second := start + len(delimOpen) + 1

	if second > len(src) {
		return expression{}, false, unterminated(src, start)
	}

	if start > pos && src[start-1] == markEscape {
		expr, ok := closeTag(
			src, KindLiteral, span{pos, start - 1}, start-1, second-1, delimClose,
		)
		if !ok {
			return expression{}, false, unterminated(src, start-1)
		}

		return expr, true, nil
	}

	prefix := span{pos, start}
	marker := src[second-1]

	if marker == markTrim {
		prefix.end = pos + len(strings.TrimRightFunc(prefix.of(src), unicode.IsSpace))
		second++

		if second > len(src) {
			return expression{}, false, unterminated(src, start)
		}

		marker = src[second-1]
	}

	var (
		expr expression
		ok   bool
	)

	switch marker {
	case '{':
		expr, ok = closeTag(src, KindRaw, prefix, start, second, delimRawClose)
	case '!':
		if strings.HasPrefix(src[second:], delimBlockComment) {
			expr, ok = closeTag(
				src, KindComment, prefix, start,
				second+len(delimBlockComment), delimCommentClose,
			)
		} else {
			expr, ok = closeTag(src, KindComment, prefix, start, second, delimClose)
		}
	case '#':
		expr, ok = closeTag(src, KindOpen, prefix, start, second, delimClose)
	case '/':
		expr, ok = closeTag(src, KindClose, prefix, start, second, delimClose)
	default:
		expr, ok = closeTag(src, KindEscaped, prefix, start, second-1, delimClose)
	}

	if !ok {
		return expression{}, false, unterminated(src, start)
	}

	return expr, true, nil
}

// closeTag finds the closing delimiter end at or after from and builds the
// expression whose content spans [from, closer). A trim mark immediately
// before the closer is excluded from the content and strips leading
// whitespace from the text that follows.
func closeTag(
	src string,
	kind Kind,
	prefix span,
	tagStart, from int,
	end string,
) (expression, bool) {
	idx := strings.Index(src[from:], end)
	if idx < 0 {
		return expression{}, false
	}

	closer := from + idx
	next := closer + len(end)
	tag := span{tagStart, next}

	if closer > from && src[closer-1] == markTrim {
		closer--
		next = len(src) - len(strings.TrimLeftFunc(src[next:], unicode.IsSpace))
	}

	return expression{
		kind:    kind,
		prefix:  prefix,
		content: span{from, closer},
		tag:     tag,
		next:    next,
	}, true
}

func unterminated(src string, start int) error {
	end := strings.IndexByte(src[start:], '\n')
	if end < 0 {
		end = len(src)
	} else {
		end += start
	}

	return syntaxError(ErrUnterminatedExpression, src, start, end, "")
}
