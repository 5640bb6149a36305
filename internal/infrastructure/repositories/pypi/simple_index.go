package pypi

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// parseSimpleHTML extracts the text of every anchor in a PEP 503 page, skipping
// anchors marked data-yanked.
func parseSimpleHTML(body []byte) []string {
	var filenames []string
	tokenizer := html.NewTokenizer(bytes.NewReader(body))

	inAnchor, yanked := false, false
	var text strings.Builder
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return filenames
		case html.StartTagToken:
			token := tokenizer.Token()
			if token.Data != "a" {
				continue
			}
			inAnchor, yanked = true, false
			text.Reset()
			for _, attr := range token.Attr {
				if attr.Key == "data-yanked" {
					yanked = true
				}
			}
		case html.TextToken:
			if inAnchor {
				text.Write(tokenizer.Text())
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			if string(name) != "a" || !inAnchor {
				continue
			}
			inAnchor = false
			if filename := strings.TrimSpace(text.String()); !yanked && filename != "" {
				filenames = append(filenames, filename)
			}
		}
	}
}

var distributionSuffixes = []string{".tar.gz", ".zip", ".whl", ".egg", ".tar.bz2"}

// versionFromFilename extracts the version of a distribution file name for the
// normalized package name (sdist "name-1.0.tar.gz", wheel "name-1.0-py3-none-any.whl").
func versionFromFilename(filename, normalized string) (string, bool) {
	stem := filename
	for _, suffix := range distributionSuffixes {
		if strings.HasSuffix(stem, suffix) {
			stem = strings.TrimSuffix(stem, suffix)
			break
		}
	}

	lowered := strings.ToLower(stem)
	var rest string
	switch {
	case strings.HasPrefix(lowered, normalized+"-"):
		rest = stem[len(normalized)+1:]
	case strings.HasPrefix(lowered, strings.ReplaceAll(normalized, "-", "_")+"-"):
		rest = stem[len(normalized)+1:]
	case strings.HasPrefix(lowered, strings.ReplaceAll(normalized, "-", ".")+"-"):
		rest = stem[len(normalized)+1:]
	default:
		return "", false
	}

	if strings.HasSuffix(filename, ".whl") || strings.HasSuffix(filename, ".egg") {
		rest, _, _ = strings.Cut(rest, "-")
	}
	if rest == "" {
		return "", false
	}
	return rest, true
}

func versionsFromFilenames(filenames []string, normalized string) []string {
	versions := make([]string, 0, len(filenames))
	for _, f := range filenames {
		if v, ok := versionFromFilename(f, normalized); ok {
			versions = append(versions, v)
		}
	}
	return versions
}
