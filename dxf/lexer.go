package dxf

import (
	"fmt"
	"strconv"
	"strings"
)

// LexError reports a malformed code/value line pair.
type LexError struct {
	Line    int // 1-based line of the group code
	Message string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("dxf: line %d: %s", e.Line, e.Message)
}

// Lexer splits DXF text into tags. The text is a sequence of line pairs:
// a group code line followed by a value line.
type Lexer struct {
	input string
	pos   int
	line  int
}

// NewLexer creates a lexer for the given DXF text.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// readLine returns the next line without its terminator.
func (l *Lexer) readLine() (string, bool) {
	if l.pos >= len(l.input) {
		return "", false
	}
	rest := l.input[l.pos:]
	end := strings.IndexByte(rest, '\n')
	var line string
	if end < 0 {
		line = rest
		l.pos = len(l.input)
	} else {
		line = rest[:end]
		l.pos += end + 1
	}
	l.line++
	return strings.TrimSuffix(line, "\r"), true
}

// Next returns the next tag. ok is false at end of input.
func (l *Lexer) Next() (tag Tag, ok bool, err error) {
	codeLine, ok := l.readLine()
	if !ok {
		return NoneTag, false, nil
	}
	codeAt := l.line
	if strings.TrimSpace(codeLine) == "" && l.pos >= len(l.input) {
		// trailing blank line
		return NoneTag, false, nil
	}
	code, err := strconv.Atoi(strings.TrimSpace(codeLine))
	if err != nil {
		return NoneTag, false, &LexError{Line: codeAt, Message: fmt.Sprintf("invalid group code %q", codeLine)}
	}
	value, ok := l.readLine()
	if !ok {
		return NoneTag, false, &LexError{Line: codeAt, Message: fmt.Sprintf("missing value for group code %d", code)}
	}
	tag, err = ParseTag(code, value)
	if err != nil {
		return NoneTag, false, &LexError{Line: codeAt + 1, Message: err.Error()}
	}
	return tag, true, nil
}

// Tokenize returns all tags of the input.
func (l *Lexer) Tokenize() (Tags, error) {
	var tags Tags
	for {
		tag, ok, err := l.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return tags, nil
		}
		tags = append(tags, tag)
	}
}

// TagsFromText tokenizes DXF text.
func TagsFromText(text string) (Tags, error) {
	return NewLexer(text).Tokenize()
}
