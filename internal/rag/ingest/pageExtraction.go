package ingest

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dslipak/pdf"

	"docvault/internal/config"
)

// ExtractText reads a PDF and returns the concatenated per-page plain text.
// Pages that extract are newline-terminated; pages with no extractable text
// contribute nothing. An unreadable or corrupt file fails the whole document.
func ExtractText(path string) (string, error) {
	f, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	var sb strings.Builder
	numPages := f.NumPage()
	for i := 1; i <= numPages; i++ {
		page := f.Page(i)
		if page.V.IsNull() {
			continue
		}

		content, err := protectExtract(page)
		if err != nil {
			return "", fmt.Errorf("failed to extract page %d: %w", i, err)
		}
		if content == "" {
			continue
		}
		sb.WriteString(content)
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}

// protectExtract runs the page parser on its own goroutine so a pathological
// PDF cannot wedge the ingestion worker.
func protectExtract(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(config.ExtractionTimeout):
		return "", errors.New("page extraction timed out")
	}
}
