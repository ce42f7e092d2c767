package artifacts

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"distill/internal/fileutil"
	"distill/internal/textutil"
)

// TimestampFormat is the filename timestamp layout. Readers of the
// output directory depend on it.
const TimestampFormat = "20060102-150405"

// Filename returns the artifact name for one layer:
// <timestamp>_<slug>_level-<n>.md
func Filename(timestamp time.Time, slug string, level int) string {
	return fmt.Sprintf("%s_%s_level-%d.md", timestamp.Format(TimestampFormat), slug, level)
}

// Meta is the frontmatter header every artifact carries. The field set
// and ordering are a compatibility surface.
type Meta struct {
	Title      string
	Level      int
	LevelName  string
	SourceType string
	Created    time.Time
	WordCount  int
	Author     string
}

// Render produces the full artifact body: frontmatter, a readable
// heading, then the layer text.
func Render(meta Meta, body string) []byte {
	var sb strings.Builder
	sb.WriteString("---\n")
	fmt.Fprintf(&sb, "title: %q\n", meta.Title)
	fmt.Fprintf(&sb, "level: %d\n", meta.Level)
	fmt.Fprintf(&sb, "level_name: %q\n", meta.LevelName)
	fmt.Fprintf(&sb, "source_type: %s\n", meta.SourceType)
	fmt.Fprintf(&sb, "created: %s\n", meta.Created.UTC().Format(time.RFC3339))
	fmt.Fprintf(&sb, "word_count: %d\n", meta.WordCount)
	if strings.TrimSpace(meta.Author) != "" {
		fmt.Fprintf(&sb, "author: %q\n", meta.Author)
	}
	sb.WriteString("---\n\n")
	fmt.Fprintf(&sb, "# %s - %s\n\n", meta.Title, meta.LevelName)
	sb.WriteString(strings.TrimSpace(body))
	sb.WriteString("\n")
	return []byte(sb.String())
}

// Writer persists one rendered artifact and returns its stored path.
type Writer interface {
	Save(directory, filename string, data []byte) (string, error)
}

// FileWriter writes artifacts to the local filesystem atomically,
// creating the destination directory when absent.
type FileWriter struct{}

func (FileWriter) Save(directory, filename string, data []byte) (string, error) {
	if err := fileutil.EnsureDir(directory); err != nil {
		return "", err
	}
	path := filepath.Join(directory, textutil.SanitizeFileName(filename))
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
