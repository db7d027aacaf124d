// Package pdfutil inspects PDFs before they are uploaded as resources.
package pdfutil

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	pdf "github.com/ledongthuc/pdf"
)

// Info summarizes a PDF.
type Info struct {
	Pages   int
	Snippet string
}

const snippetLen = 120

var (
	// ErrEmpty is returned for documents without pages.
	ErrEmpty = errors.New("pdf has no pages")
	// ErrMalformed is returned when the parser gives up on a broken stream.
	ErrMalformed = errors.New("malformed pdf")
)

// Inspect parses data and returns its page count and the first line of text
// found, which the console offers as a title suggestion.
func Inspect(data []byte) (info Info, err error) {
	err = guard(func() error {
		info, err = inspect(data)
		return err
	})
	return info, err
}

// guard runs fn, turning a parser panic into ErrMalformed.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrMalformed, r)
		}
	}()
	return fn()
}

func inspect(data []byte) (Info, error) {
	doc, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Info{}, fmt.Errorf("new pdf reader: %w", err)
	}
	info := Info{Pages: doc.NumPage()}
	if info.Pages == 0 {
		return info, ErrEmpty
	}
	for page := 1; page <= info.Pages && info.Snippet == ""; page++ {
		p := doc.Page(page)
		if p.V.IsNull() {
			continue
		}
		content, err := p.GetPlainText(nil)
		if err != nil {
			// Text extraction is best effort; a page we cannot read is skipped.
			continue
		}
		info.Snippet = firstLine(content)
	}
	return info, nil
}

// InspectReader drains r before passing along to Inspect.
func InspectReader(r io.Reader) (Info, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Info{}, fmt.Errorf("read pdf: %w", err)
	}
	return Inspect(data)
}

func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			continue
		}
		if r := []rune(line); len(r) > snippetLen {
			line = string(r[:snippetLen])
		}
		return line
	}
	return ""
}
