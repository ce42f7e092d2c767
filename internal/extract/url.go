package extract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/net/html"

	"distill/internal/services"
	"distill/internal/state"
	"distill/internal/textutil"
)

func (e *Extractor) extractURL(ctx context.Context, source string) (state.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return state.Document{}, services.Wrap(services.ErrValidation, "", "extract",
			fmt.Sprintf("build request for %q", source), err)
	}
	req.Header.Set("User-Agent", e.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.8")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return state.Document{}, services.Wrap(services.ErrTransient, "", "extract",
			fmt.Sprintf("fetch %q", source), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		marker := services.ErrTransient
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			marker = services.ErrNotFound
		}
		return state.Document{}, services.Wrap(marker, "", "extract",
			fmt.Sprintf("fetch %q: http %d", source, resp.StatusCode), nil)
	}

	limited := io.LimitReader(resp.Body, int64(e.maxBodyKiB)*1024)
	title, content, err := htmlToText(limited)
	if err != nil {
		return state.Document{}, services.Wrap(services.ErrValidation, "", "extract",
			fmt.Sprintf("parse %q", source), err)
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return state.Document{}, services.Wrap(services.ErrValidation, "", "extract",
			fmt.Sprintf("no readable text at %q", source), nil)
	}
	if title == "" {
		title = textutil.FirstLine(content)
	}
	if title == "" {
		title = source
	}
	return state.Document{
		Title:     textutil.Truncate(title, 120),
		Content:   content,
		WordCount: textutil.WordCount(content),
	}, nil
}

// htmlToText walks the token stream collecting visible text. Script,
// style, and similar non-content subtrees are skipped; block elements
// become line breaks.
func htmlToText(r io.Reader) (title, content string, err error) {
	tokenizer := html.NewTokenizer(r)

	var sb strings.Builder
	var titleBuf strings.Builder
	skipDepth := 0
	inTitle := false

	flushLine := func() {
		if sb.Len() > 0 && !strings.HasSuffix(sb.String(), "\n") {
			sb.WriteByte('\n')
		}
	}

	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			if tokenizer.Err() == io.EOF {
				return strings.TrimSpace(titleBuf.String()), collapseBlankLines(sb.String()), nil
			}
			return "", "", tokenizer.Err()
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			switch string(name) {
			case "script", "style", "noscript", "template", "svg", "head":
				skipDepth++
			case "title":
				inTitle = true
			case "p", "div", "section", "article", "br", "li",
				"h1", "h2", "h3", "h4", "h5", "h6", "tr", "blockquote", "pre":
				flushLine()
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			switch string(name) {
			case "script", "style", "noscript", "template", "svg", "head":
				if skipDepth > 0 {
					skipDepth--
				}
			case "title":
				inTitle = false
			case "p", "div", "section", "article", "li",
				"h1", "h2", "h3", "h4", "h5", "h6", "tr", "blockquote", "pre":
				flushLine()
			}
		case html.TextToken:
			text := string(tokenizer.Text())
			if inTitle {
				titleBuf.WriteString(text)
				continue
			}
			if skipDepth > 0 {
				continue
			}
			trimmed := strings.TrimSpace(text)
			if trimmed == "" {
				continue
			}
			if sb.Len() > 0 && !strings.HasSuffix(sb.String(), "\n") {
				sb.WriteByte(' ')
			}
			sb.WriteString(strings.Join(strings.Fields(trimmed), " "))
		}
	}
}

func collapseBlankLines(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
