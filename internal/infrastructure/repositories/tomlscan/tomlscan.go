// Package tomlscan lists the key/value pairs of a TOML document together with
// the byte positions of their string values, so that callers can replace a
// single value without re-encoding the document.
package tomlscan

import (
	"fmt"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2/unstable"

	"github.com/rios0rios0/upd/internal/infrastructure/repositories/fileio"
)

// StringValue is a string literal of the document. Start and End delimit the
// text between the quotes; they are only set when Editable is true, i.e.
// when the literal has no escapes and spans a single line.
type StringValue struct {
	Value    string
	Start    int
	End      int
	Line     int
	Editable bool
}

// Span builds the replacement of the string contents.
func (v StringValue) Span(text string) fileio.Span {
	return fileio.Span{Start: v.Start, End: v.End, Text: text}
}

// Entry is one key/value pair. Path is the table header followed by the
// dotted key, e.g. [tool.poetry.dependencies] requests = "^2" has the path
// tool.poetry.dependencies.requests.
type Entry struct {
	Path []string
	Kind unstable.Kind
	// String is set for string values.
	String StringValue
	// Strings holds the string elements of an array value.
	Strings []StringValue
	// Fields holds the string members of an inline table value.
	Fields map[string]StringValue
	// Keys lists every member key of an inline table value.
	Keys map[string]bool
	Line int
}

// Key returns the last path element.
func (e Entry) Key() string {
	if len(e.Path) == 0 {
		return ""
	}
	return e.Path[len(e.Path)-1]
}

// Parent returns the path without its last element.
func (e Entry) Parent() []string {
	if len(e.Path) == 0 {
		return nil
	}
	return e.Path[:len(e.Path)-1]
}

// Scan parses content and returns its key/value pairs in document order.
func Scan(content string) ([]Entry, error) {
	data := []byte(content)
	p := unstable.Parser{}
	p.Reset(data)

	var entries []Entry
	var table []string
	for p.NextExpression() {
		expr := p.Expression()
		switch expr.Kind {
		case unstable.Table, unstable.ArrayTable:
			table = keyParts(expr)
		case unstable.KeyValue:
			entries = append(entries, newEntry(content, table, expr))
		default:
		}
	}
	if err := p.Error(); err != nil {
		return nil, fmt.Errorf("invalid TOML: %w", err)
	}
	return entries, nil
}

func keyParts(n *unstable.Node) []string {
	var parts []string
	it := n.Key()
	for it.Next() {
		parts = append(parts, string(it.Node().Data))
	}
	return parts
}

func newEntry(content string, table []string, expr *unstable.Node) Entry {
	path := append(append([]string{}, table...), keyParts(expr)...)
	value := expr.Value()
	entry := Entry{Path: path, Kind: value.Kind}

	switch value.Kind {
	case unstable.String:
		entry.String = stringValue(content, value)
		entry.Line = entry.String.Line
	case unstable.Array:
		children := value.Children()
		for children.Next() {
			if child := children.Node(); child.Kind == unstable.String {
				entry.Strings = append(entry.Strings, stringValue(content, child))
			}
		}
	case unstable.InlineTable:
		entry.Fields = make(map[string]StringValue)
		entry.Keys = make(map[string]bool)
		children := value.Children()
		for children.Next() {
			member := children.Node()
			if member.Kind != unstable.KeyValue {
				continue
			}
			key := strings.Join(keyParts(member), ".")
			entry.Keys[key] = true
			if v := member.Value(); v.Kind == unstable.String {
				entry.Fields[key] = stringValue(content, v)
			}
		}
	default:
	}
	if entry.Line == 0 {
		entry.Line = lineOf(content, value)
	}
	return entry
}

func lineOf(content string, n *unstable.Node) int {
	if n.Raw.Length == 0 {
		return 0
	}
	return fileio.LineAt(content, int(n.Raw.Offset))
}

func stringValue(content string, n *unstable.Node) StringValue {
	start := int(n.Raw.Offset)
	end := start + int(n.Raw.Length)
	sv := StringValue{Value: string(n.Data)}
	if n.Raw.Length == 0 || end > len(content) {
		return sv
	}
	sv.Line = fileio.LineAt(content, start)
	raw := content[start:end]
	if len(raw) >= 2 && raw[1:len(raw)-1] == sv.Value && !strings.Contains(raw, "\n") {
		sv.Start, sv.End, sv.Editable = start+1, end-1, true
	}
	return sv
}

// HasPrefix reports whether path starts with prefix.
func HasPrefix(path, prefix []string) bool {
	return len(path) >= len(prefix) && slices.Equal(path[:len(prefix)], prefix)
}
