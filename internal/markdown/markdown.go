// Package markdown renders note content and applies the small text
// rewrites the note windows rely on.
package markdown

import (
	"bytes"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/starford/stickies/internal/apperr"
)

var (
	assetLinkRe = regexp.MustCompile(`!\[([^\]]*)\]\(app-asset:///([^)]+)\)`)
	checkboxRe  = regexp.MustCompile(`^(\s*)- \[[ x]\]`)
)

// Images are linked with file:// URLs, which goldmark treats as unsafe
// unless raw output is allowed. Notes are local, single-user documents.
var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(
		html.WithHardWraps(),
		html.WithUnsafe(),
	),
)

// Render converts Markdown source to HTML.
func Render(src string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("markdown: render: %w", err)
	}
	return buf.String(), nil
}

// FileURL returns the file:// URL for an absolute path.
func FileURL(abs string) string {
	p := filepath.ToSlash(abs)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return "file://" + p
}

// ConvertAssetLinks rewrites legacy ![alt](app-asset:///rel) image links to
// file:// links under installRoot. It reports whether anything changed.
func ConvertAssetLinks(content, installRoot string) (string, bool) {
	if !strings.Contains(content, "app-asset:///") {
		return content, false
	}
	out := assetLinkRe.ReplaceAllStringFunc(content, func(m string) string {
		sub := assetLinkRe.FindStringSubmatch(m)
		abs := filepath.Join(installRoot, filepath.FromSlash(sub[2]))
		return fmt.Sprintf("![%s](%s)", sub[1], FileURL(abs))
	})
	return out, out != content
}

// ToggleCheckbox sets the state of the index-th task list item (counting
// from zero, top to bottom) and returns the rewritten content. Indentation
// is preserved.
func ToggleCheckbox(content string, index int, checked bool) (string, error) {
	if index < 0 {
		return "", fmt.Errorf("markdown: checkbox %d: %w", index, apperr.ErrNotFound)
	}
	mark := " "
	if checked {
		mark = "x"
	}
	lines := strings.Split(content, "\n")
	found := 0
	for i, line := range lines {
		loc := checkboxRe.FindStringSubmatchIndex(line)
		if loc == nil {
			continue
		}
		if found == index {
			indent := line[loc[2]:loc[3]]
			lines[i] = indent + "- [" + mark + "]" + line[loc[1]:]
			return strings.Join(lines, "\n"), nil
		}
		found++
	}
	return "", fmt.Errorf("markdown: checkbox %d: %w", index, apperr.ErrNotFound)
}

// ImageMarkdown returns the snippet inserted into a note for an image.
func ImageMarkdown(name, abs string) string {
	return fmt.Sprintf("![%s](%s)", name, FileURL(abs))
}
