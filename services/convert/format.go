package convert

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// FormatTag is the closed set of formats the pipeline distinguishes.
type FormatTag int

const (
	Unsupported FormatTag = iota
	PlainText
	ConvertibleDocument
)

func (f FormatTag) String() string {
	switch f {
	case PlainText:
		return "plain-text"
	case ConvertibleDocument:
		return "convertible-document"
	default:
		return "unsupported"
	}
}

var ErrUnsupported = errors.New("unsupported format")

type UnsupportedError struct {
	Path     string
	MIMEType string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported format %s: %s", e.MIMEType, e.Path)
}

func (e *UnsupportedError) Is(target error) bool {
	return target == ErrUnsupported
}

var textExtensions = map[string]bool{
	".txt": true, ".md": true, ".markdown": true, ".rst": true, ".org": true,
	".go": true, ".js": true, ".ts": true, ".py": true, ".java": true,
	".cpp": true, ".c": true, ".h": true, ".cs": true, ".rs": true,
	".rb": true, ".php": true, ".sh": true, ".swift": true, ".kt": true,
	".html": true, ".htm": true, ".css": true, ".json": true, ".xml": true,
	".yaml": true, ".yml": true, ".toml": true, ".ini": true, ".conf": true,
	".cfg": true, ".csv": true, ".tsv": true, ".sql": true, ".log": true,
	".tex": true,
}

var convertibleExtensions = map[string]bool{
	".docx": true, ".odt": true, ".epub": true, ".rtf": true,
}

// Classify decides how a file can be turned into text. Known extensions are
// trusted; anything else is sniffed and kept only if it looks like text.
func Classify(path string) (FormatTag, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case textExtensions[ext]:
		return PlainText, nil
	case convertibleExtensions[ext]:
		return ConvertibleDocument, nil
	}

	detected, err := mimetype.DetectFile(path)
	if err != nil {
		return Unsupported, &ConversionError{Path: path, Err: fmt.Errorf("could not detect format: %w", err)}
	}

	for mt := detected; mt != nil; mt = mt.Parent() {
		if mt.Is("text/plain") {
			return PlainText, nil
		}
	}

	return Unsupported, &UnsupportedError{Path: path, MIMEType: detected.String()}
}
