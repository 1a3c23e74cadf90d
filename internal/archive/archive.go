// Package archive parses uploaded ZIP containers into normalized entry
// listings and reads individual entry contents. It is stateless; every
// function is a pure transformation of the provided bytes.
package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrMalformed indicates the provided bytes do not parse as a ZIP container.
var ErrMalformed = errors.New("malformed archive")

// Entry is one file inside an archive, paired with the path shown to the
// caller. DisplayPath is the internal path with any single common root
// directory stripped; ZipPath is the entry's actual path in the container.
type Entry struct {
	DisplayPath string
	ZipPath     string
}

// Index enumerates all file entries of the ZIP container in their original
// order, excluding directory markers. If every entry shares exactly one
// common first path segment, that segment is stripped from the display
// paths. An archive with zero file entries yields an empty listing.
func Index(data []byte) ([]Entry, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformed, err)
	}

	var names []string
	for _, f := range reader.File {
		if strings.HasSuffix(f.Name, "/") {
			continue
		}
		names = append(names, f.Name)
	}

	commonRoot := detectCommonRoot(names)

	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		display := name
		if commonRoot != "" && strings.HasPrefix(name, commonRoot+"/") {
			display = name[len(commonRoot)+1:]
		}
		entries = append(entries, Entry{DisplayPath: display, ZipPath: name})
	}

	return entries, nil
}

// ReadEntry returns the contents of the named entry inside the ZIP
// container. The name must be an internal (zip) path, not a display path.
func ReadEntry(data []byte, zipPath string) ([]byte, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformed, err)
	}

	for _, f := range reader.File {
		if f.Name != zipPath {
			continue
		}

		rc, openErr := f.Open()
		if openErr != nil {
			return nil, fmt.Errorf("open archive entry %q: %w", zipPath, openErr)
		}
		defer rc.Close()

		content, readErr := io.ReadAll(rc)
		if readErr != nil {
			return nil, fmt.Errorf("read archive entry %q: %w", zipPath, readErr)
		}
		return content, nil
	}

	return nil, fmt.Errorf("archive entry %q not found", zipPath)
}

// detectCommonRoot returns the shared first path segment if every name
// contains a separator and all first segments are identical, or "".
func detectCommonRoot(names []string) string {
	if len(names) == 0 {
		return ""
	}

	root := ""
	for i, name := range names {
		idx := strings.Index(name, "/")
		if idx < 0 {
			return ""
		}
		first := name[:idx]
		if i == 0 {
			root = first
		} else if first != root {
			return ""
		}
	}

	return root
}
