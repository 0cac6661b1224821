package markdown

import (
	"errors"
	"strings"
	"testing"

	"github.com/starford/stickies/internal/apperr"
)

func TestRender(t *testing.T) {
	html, err := Render("# Title\nline one\nline two\n\n- [x] done\n- [ ] todo\n")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	for _, want := range []string{"<h1>Title</h1>", "<br", `type="checkbox"`, "checked"} {
		if !strings.Contains(html, want) {
			t.Errorf("output missing %q:\n%s", want, html)
		}
	}
}

func TestRender_FileImage(t *testing.T) {
	html, err := Render("![shot](file:///tmp/notes/images/a.png)")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(html, `src="file:///tmp/notes/images/a.png"`) {
		t.Errorf("file image not rendered: %s", html)
	}
}

func TestConvertAssetLinks(t *testing.T) {
	in := "before ![logo](app-asset:///assets/logo.png) after ![x](https://e.com/a.png)"
	out, changed := ConvertAssetLinks(in, "/opt/stickies")
	if !changed {
		t.Fatal("expected change")
	}
	want := "before ![logo](file:///opt/stickies/assets/logo.png) after ![x](https://e.com/a.png)"
	if out != want {
		t.Errorf("got  %q\nwant %q", out, want)
	}

	same, changed := ConvertAssetLinks("plain text", "/opt")
	if changed || same != "plain text" {
		t.Errorf("unexpected rewrite: %q", same)
	}
}

func TestToggleCheckbox(t *testing.T) {
	content := "# list\n- [ ] one\n  - [x] two\ntext\n- [ ] three"

	got, err := ToggleCheckbox(content, 1, false)
	if err != nil {
		t.Fatalf("ToggleCheckbox: %v", err)
	}
	if !strings.Contains(got, "\n  - [ ] two\n") {
		t.Errorf("indent or state lost: %q", got)
	}

	got, err = ToggleCheckbox(content, 2, true)
	if err != nil {
		t.Fatalf("ToggleCheckbox: %v", err)
	}
	if !strings.HasSuffix(got, "- [x] three") {
		t.Errorf("third box not checked: %q", got)
	}

	if _, err := ToggleCheckbox(content, 3, true); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("out of range err = %v", err)
	}
	if _, err := ToggleCheckbox(content, -1, true); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("negative index err = %v", err)
	}
}

func TestImageMarkdown(t *testing.T) {
	got := ImageMarkdown("a.png", "/n/images/a.png")
	if got != "![a.png](file:///n/images/a.png)" {
		t.Errorf("got %q", got)
	}
}
