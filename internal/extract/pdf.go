package extract

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"

	"distill/internal/services"
	"distill/internal/state"
	"distill/internal/textutil"
)

func (e *Extractor) extractPDF(source string) (state.Document, error) {
	pdfCtx, err := api.ReadContextFile(source)
	if err != nil {
		return state.Document{}, services.Wrap(services.ErrValidation, "", "extract",
			fmt.Sprintf("read pdf %q", source), err)
	}

	pages := pdfCtx.PageCount
	if pages > e.maxPDFPages {
		pages = e.maxPDFPages
	}

	var sb strings.Builder
	for page := 1; page <= pages; page++ {
		reader, err := pdfcpu.ExtractPageContent(pdfCtx, page)
		if err != nil {
			return state.Document{}, services.Wrap(services.ErrValidation, "", "extract",
				fmt.Sprintf("extract pdf %q page %d", source, page), err)
		}
		raw, err := io.ReadAll(reader)
		if err != nil {
			return state.Document{}, services.Wrap(services.ErrValidation, "", "extract",
				fmt.Sprintf("read pdf %q page %d", source, page), err)
		}
		text := contentStreamText(raw)
		if text != "" {
			if sb.Len() > 0 {
				sb.WriteString("\n\n")
			}
			sb.WriteString(text)
		}
	}

	content := strings.TrimSpace(sb.String())
	if content == "" {
		return state.Document{}, services.Wrap(services.ErrValidation, "", "extract",
			fmt.Sprintf("no extractable text in %q", source), nil)
	}
	title := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	return state.Document{
		Title:     textutil.Truncate(title, 120),
		Content:   content,
		WordCount: textutil.WordCount(content),
	}, nil
}

// contentStreamText pulls the literal strings that feed the Tj and TJ
// text-showing operators out of a decoded PDF content stream. It is a
// lexical scan, not a full interpreter: positioning, fonts, and CID
// encodings are ignored, which is sufficient for plain prose pages.
func contentStreamText(stream []byte) string {
	var out strings.Builder
	var literal strings.Builder
	depth := 0
	escaped := false

	flushWord := func() {
		word := strings.TrimSpace(literal.String())
		literal.Reset()
		if word == "" {
			return
		}
		if out.Len() > 0 {
			out.WriteByte(' ')
		}
		out.WriteString(word)
	}

	for i := 0; i < len(stream); i++ {
		c := stream[i]
		if depth == 0 {
			if c == '(' {
				depth = 1
			}
			continue
		}
		if escaped {
			switch c {
			case 'n', 'r', 't':
				literal.WriteByte(' ')
			case '(', ')', '\\':
				literal.WriteByte(c)
			}
			escaped = false
			continue
		}
		switch c {
		case '\\':
			escaped = true
		case '(':
			depth++
			literal.WriteByte(c)
		case ')':
			depth--
			if depth == 0 {
				flushWord()
			} else {
				literal.WriteByte(c)
			}
		default:
			literal.WriteByte(c)
		}
	}
	return strings.Join(strings.Fields(out.String()), " ")
}
