// Package markdown assembles the generated document from selected archive
// entries: one heading per file followed by its content in a fenced code
// block, or a placeholder for content that is not valid text.
package markdown

import (
	"fmt"
	"io"
	"unicode/utf8"
)

// OutputFilename is the download filename for generated documents.
const OutputFilename = "output.md"

// Section is one file's contribution to the generated document.
type Section struct {
	// Path is the display path used as the section heading.
	Path string
	// Content is the raw entry content.
	Content []byte
}

// WriteDocument writes the Markdown document for the given sections, in
// order. Content that is not valid UTF-8 is replaced by a placeholder
// noting the byte length.
func WriteDocument(w io.Writer, sections []Section) error {
	for _, sec := range sections {
		if _, err := fmt.Fprintf(w, "\n\n# %s\n\n", sec.Path); err != nil {
			return err
		}

		if utf8.Valid(sec.Content) {
			if _, err := fmt.Fprintf(w, "```\n%s\n```\n", sec.Content); err != nil {
				return err
			}
			continue
		}

		if _, err := fmt.Fprintf(w, "[Binary file - %d bytes]\n", len(sec.Content)); err != nil {
			return err
		}
	}

	return nil
}
