package packagejson

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rios0rios0/upd/internal/infrastructure/repositories/fileio"
)

// member is a string value of a dependency section with its byte span,
// quotes excluded.
type member struct {
	section  string
	name     string
	value    string
	start    int
	end      int
	line     int
	editable bool
}

var errNotObject = errors.New("package.json root is not an object")

// scanSections walks the top-level object of content and returns the string
// members of the given sections in document order.
func scanSections(content string, sections []string) ([]member, error) {
	wanted := make(map[string]bool, len(sections))
	for _, s := range sections {
		wanted[s] = true
	}

	dec := json.NewDecoder(strings.NewReader(content))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("invalid package.json: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errNotObject
	}

	var members []member
	for dec.More() {
		key, keyErr := stringToken(dec)
		if keyErr != nil {
			return nil, keyErr
		}
		if !wanted[key] {
			if err = skipValue(dec); err != nil {
				return nil, err
			}
			continue
		}
		found, sectionErr := scanSection(dec, content, key)
		if sectionErr != nil {
			return nil, sectionErr
		}
		members = append(members, found...)
	}
	if _, err = dec.Token(); err != nil {
		return nil, fmt.Errorf("invalid package.json: %w", err)
	}
	if _, err = dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("invalid package.json: trailing data after the root object")
	}
	return members, nil
}

func scanSection(dec *json.Decoder, content, section string) ([]member, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("invalid package.json: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, skipRest(dec, tok)
	}
	var members []member
	for dec.More() {
		name, keyErr := stringToken(dec)
		if keyErr != nil {
			return nil, keyErr
		}
		keyEnd := int(dec.InputOffset())
		valueTok, valueErr := dec.Token()
		if valueErr != nil {
			return nil, fmt.Errorf("invalid package.json: %w", valueErr)
		}
		value, isString := valueTok.(string)
		if !isString {
			if err = skipRest(dec, valueTok); err != nil {
				return nil, err
			}
			continue
		}
		end := int(dec.InputOffset())
		start := strings.IndexByte(content[keyEnd:end], '"') + keyEnd
		raw := content[start:end]
		members = append(members, member{
			section:  section,
			name:     name,
			value:    value,
			start:    start + 1,
			end:      end - 1,
			line:     fileio.LineAt(content, start),
			editable: len(raw) >= 2 && raw[1:len(raw)-1] == value,
		})
	}
	if _, err = dec.Token(); err != nil {
		return nil, fmt.Errorf("invalid package.json: %w", err)
	}
	return members, nil
}

func stringToken(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", fmt.Errorf("invalid package.json: %w", err)
	}
	s, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("invalid package.json: unexpected %v", tok)
	}
	return s, nil
}

// skipValue consumes the next value, however deeply nested.
func skipValue(dec *json.Decoder) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("invalid package.json: %w", err)
	}
	return skipRest(dec, tok)
}

// skipRest consumes the remainder of a value whose first token was tok.
func skipRest(dec *json.Decoder, tok json.Token) error {
	delim, ok := tok.(json.Delim)
	if !ok || (delim != '{' && delim != '[') {
		return nil
	}
	for depth := 1; depth > 0; {
		next, err := dec.Token()
		if err != nil {
			return fmt.Errorf("invalid package.json: %w", err)
		}
		if d, isDelim := next.(json.Delim); isDelim {
			switch d {
			case '{', '[':
				depth++
			case '}', ']':
				depth--
			}
		}
	}
	return nil
}
