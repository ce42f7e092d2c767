package extract

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"distill/internal/services"
	"distill/internal/state"
	"distill/internal/textutil"
)

const (
	defaultRequestTimeout = 30 * time.Second
	defaultUserAgent      = "Distill/0.1"
	defaultMaxBodyKiB     = 4096
	defaultMaxPDFPages    = 200
)

// Service turns a raw source into an extracted document.
type Service interface {
	Extract(ctx context.Context, source string, inputType state.InputType) (state.Document, error)
}

// Extractor is the production Service: plain-text passthrough, URL
// fetch with HTML-to-text, PDF text extraction, and a degraded path for
// images.
type Extractor struct {
	httpClient  *http.Client
	userAgent   string
	maxBodyKiB  int
	maxPDFPages int
}

// Option customizes the extractor.
type Option func(*Extractor)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(e *Extractor) {
		if client != nil {
			e.httpClient = client
		}
	}
}

// WithRequestTimeout bounds each URL fetch.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(e *Extractor) {
		if timeout > 0 {
			e.httpClient.Timeout = timeout
		}
	}
}

// WithUserAgent sets the User-Agent header for URL fetches.
func WithUserAgent(agent string) Option {
	return func(e *Extractor) {
		if strings.TrimSpace(agent) != "" {
			e.userAgent = agent
		}
	}
}

// WithMaxBodyKiB caps how much of a fetched page is read.
func WithMaxBodyKiB(kib int) Option {
	return func(e *Extractor) {
		if kib > 0 {
			e.maxBodyKiB = kib
		}
	}
}

// WithMaxPDFPages caps how many pages of a PDF are extracted.
func WithMaxPDFPages(pages int) Option {
	return func(e *Extractor) {
		if pages > 0 {
			e.maxPDFPages = pages
		}
	}
}

// NewExtractor constructs an extractor with the supplied options.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		httpClient:  &http.Client{Timeout: defaultRequestTimeout},
		userAgent:   defaultUserAgent,
		maxBodyKiB:  defaultMaxBodyKiB,
		maxPDFPages: defaultMaxPDFPages,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract dispatches on the detected input type.
func (e *Extractor) Extract(ctx context.Context, source string, inputType state.InputType) (state.Document, error) {
	switch inputType {
	case state.InputURL:
		return e.extractURL(ctx, source)
	case state.InputDocument:
		return e.extractDocument(source)
	case state.InputImage:
		return extractImage(source), nil
	default:
		return extractText(source)
	}
}

// extractText treats the source as a file path when one exists, and as
// literal content otherwise.
func extractText(source string) (state.Document, error) {
	content := source
	title := ""
	if info, err := os.Stat(source); err == nil && !info.IsDir() {
		data, err := os.ReadFile(source)
		if err != nil {
			return state.Document{}, services.Wrap(services.ErrNotFound, "", "extract",
				fmt.Sprintf("read %q", source), err)
		}
		content = string(data)
		title = strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return state.Document{}, services.Wrap(services.ErrValidation, "", "extract", "empty source", nil)
	}
	if heading := textutil.FirstLine(content); heading != "" {
		title = heading
	}
	if title == "" {
		title = "Untitled"
	}
	return state.Document{
		Title:     textutil.Truncate(title, 120),
		Content:   content,
		Sections:  textutil.SectionHeadings(content),
		WordCount: textutil.WordCount(content),
	}, nil
}

func (e *Extractor) extractDocument(source string) (state.Document, error) {
	ext := strings.ToLower(filepath.Ext(source))
	if ext != ".pdf" {
		return state.Document{}, services.Wrap(services.ErrValidation, "", "extract",
			fmt.Sprintf("unsupported document format %q (only PDF is supported)", ext), nil)
	}
	return e.extractPDF(source)
}

// extractImage is the degraded path: without OCR there is nothing to
// read, so the run proceeds on a placeholder note instead of failing.
func extractImage(source string) state.Document {
	title := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	if title == "" {
		title = "Image"
	}
	content := fmt.Sprintf(
		"An image file (%s) was provided as the content source. "+
			"Text extraction from images is not available, so this run "+
			"describes the source rather than its contents.",
		filepath.Base(source))
	return state.Document{
		Title:     title,
		Content:   content,
		WordCount: textutil.WordCount(content),
		Degraded:  true,
	}
}
