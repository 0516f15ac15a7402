package convert

import (
	"context"
	"fmt"
	"io"
	"os"
)

// maxPlainTextSize caps how much of a plain-text file is indexed.
const maxPlainTextSize = 10 * 1024 * 1024

type ConversionError struct {
	Path string
	Err  error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("could not convert %s: %s", e.Path, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// External turns a rich document into plain text.
type External interface {
	Convert(ctx context.Context, path string) (string, error)
}

type Converter struct {
	external External
}

func New(external External) *Converter {
	return &Converter{external: external}
}

// Convert returns the plain text of the file at path. Plain text is read
// directly; only convertible documents go through the external converter.
func (c *Converter) Convert(ctx context.Context, tag FormatTag, path string) (string, error) {
	switch tag {
	case PlainText:
		content, err := readTextFile(path)
		if err != nil {
			return "", &ConversionError{Path: path, Err: err}
		}
		return content, nil
	case ConvertibleDocument:
		if c.external == nil {
			return "", &ConversionError{Path: path, Err: fmt.Errorf("no converter configured for %s", tag)}
		}
		content, err := c.external.Convert(ctx, path)
		if err != nil {
			return "", &ConversionError{Path: path, Err: err}
		}
		return content, nil
	default:
		return "", &UnsupportedError{Path: path, MIMEType: tag.String()}
	}
}

func readTextFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	// Large files are truncated rather than rejected
	content, err := io.ReadAll(io.LimitReader(file, maxPlainTextSize))
	if err != nil {
		return "", err
	}

	return string(content), nil
}
