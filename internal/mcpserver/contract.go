package mcpserver

// NoteFormat describes how sticky notes are stored so that agents write
// content the list view and note windows display correctly.
const NoteFormat = `# Sticky Note Format

Each note is one plain UTF-8 Markdown file in the notes directory.

## Rules

1. **No frontmatter.** The file holds only the note body.
2. **Title** is the first line, trimmed and cut to 30 characters. An empty
   first line shows as "(No title)".
3. **File names** are generated (` + "`" + `note-<timestamp>.md` + "`" + `); agents refer to notes by
   the name returned from ` + "`" + `list_notes` + "`" + ` or ` + "`" + `create_note` + "`" + `.
4. **Task lists** use ` + "`" + `- [ ] item` + "`" + ` / ` + "`" + `- [x] item` + "`" + `; windows toggle them in place.
5. **Line breaks** inside a paragraph are kept when rendered.

## Images

- Attach images with the ` + "`" + `attach_image` + "`" + ` tool. It stores the file under
  ` + "`" + `images/` + "`" + ` and returns a ` + "`" + `markdown` + "`" + ` field ready to paste into the note.
- Images are linked with absolute ` + "`" + `file://` + "`" + ` URLs.
- Supported formats: png, jpg, jpeg, gif, webp.

## Example

` + "```" + `markdown
Groceries
- [x] milk
- [ ] bread

![receipt](file:///home/me/notes/images/1709622489123-a1b2c3.png)
` + "```" + `
`
