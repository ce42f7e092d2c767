package state

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"distill/internal/services"
)

// InputType labels the detected kind of a content source.
type InputType string

const (
	InputText     InputType = "text"
	InputDocument InputType = "document"
	InputImage    InputType = "image"
	InputURL      InputType = "url"
)

// LayerCount is the number of derivative documents a run produces.
const LayerCount = 5

// Document is extracted source content ready for layer generation.
type Document struct {
	Title     string
	Author    string
	Date      string
	Content   string
	Sections  []string
	WordCount int
	Degraded  bool
}

// State is the shared container a run's stages communicate through.
//
// Every field is write-once: the first assignment wins and any second
// assignment for the same key is rejected. Write counts are kept per
// key so a finished run can prove single-assignment held.
type State struct {
	mu     sync.Mutex
	writes map[string]int

	runID       string
	source      string
	focus       string
	finalFormat string
	inputType   InputType
	document  Document
	layers    [LayerCount]string
	timestamp time.Time
	slug      string
	saved     []string
}

// Option sets an immutable run preference at construction time.
type Option func(*State)

// WithFocus sets the optional focus lens prompts steer toward.
func WithFocus(focus string) Option {
	return func(s *State) { s.focus = focus }
}

// WithFinalFormat sets the optional format request for the last layer.
func WithFinalFormat(format string) Option {
	return func(s *State) { s.finalFormat = format }
}

// New returns an empty State for the given run.
func New(runID, source string, opts ...Option) *State {
	s := &State{
		writes: make(map[string]int),
		runID:  runID,
		source: source,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RunID returns the identifier assigned when the run started.
func (s *State) RunID() string { return s.runID }

// Source returns the raw source argument the run was invoked with.
func (s *State) Source() string { return s.source }

// Focus returns the optional focus lens, empty when unset.
func (s *State) Focus() string { return s.focus }

// FinalFormat returns the optional final-layer format, empty when unset.
func (s *State) FinalFormat() string { return s.finalFormat }

func (s *State) record(key string) error {
	s.writes[key]++
	if s.writes[key] > 1 {
		return services.Wrap(services.ErrValidation, "", "state",
			fmt.Sprintf("field %q assigned %d times", key, s.writes[key]), nil)
	}
	return nil
}

// SetInputType records the classified source kind.
func (s *State) SetInputType(t InputType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("input_type"); err != nil {
		return err
	}
	s.inputType = t
	return nil
}

// InputType returns the classified source kind.
func (s *State) InputType() InputType {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inputType
}

// SetDocument records the extracted source content.
func (s *State) SetDocument(doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("document"); err != nil {
		return err
	}
	s.document = doc
	return nil
}

// Document returns the extracted source content.
func (s *State) Document() Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.document
}

// SetNaming records the run timestamp and file slug derived from the
// document title. Both feed artifact filenames.
func (s *State) SetNaming(timestamp time.Time, slug string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("naming"); err != nil {
		return err
	}
	s.timestamp = timestamp
	s.slug = slug
	return nil
}

// Timestamp returns the run timestamp used for artifact naming.
func (s *State) Timestamp() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timestamp
}

// Slug returns the filename slug derived from the document title.
func (s *State) Slug() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slug
}

// SetLayer records the generated text for one refinement level (1..5).
func (s *State) SetLayer(level int, content string) error {
	if level < 1 || level > LayerCount {
		return services.Wrap(services.ErrValidation, "", "state",
			fmt.Sprintf("level %d out of range", level), nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record(fmt.Sprintf("layer_%d", level)); err != nil {
		return err
	}
	s.layers[level-1] = content
	return nil
}

// Layer returns the generated text for one refinement level (1..5).
func (s *State) Layer(level int) (string, error) {
	if level < 1 || level > LayerCount {
		return "", services.Wrap(services.ErrValidation, "", "state",
			fmt.Sprintf("level %d out of range", level), nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layers[level-1], nil
}

// Layers returns all generated layer texts in level order.
func (s *State) Layers() [LayerCount]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layers
}

// SetSavedPaths records the artifact paths written by the save stage.
// On a partial failure the prefix that made it to disk is recorded.
func (s *State) SetSavedPaths(paths []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("saved_paths"); err != nil {
		return err
	}
	s.saved = append([]string(nil), paths...)
	return nil
}

// SavedPaths returns the artifact paths written so far.
func (s *State) SavedPaths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.saved...)
}

// WriteCounts returns a copy of the per-field assignment counts.
func (s *State) WriteCounts() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[string]int, len(s.writes))
	for k, v := range s.writes {
		counts[k] = v
	}
	return counts
}

// VerifySingleAssignment reports an error naming any field written more
// than once. Run it after a workflow finishes.
func (s *State) VerifySingleAssignment() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var violated []string
	for key, count := range s.writes {
		if count > 1 {
			violated = append(violated, fmt.Sprintf("%s=%d", key, count))
		}
	}
	if len(violated) == 0 {
		return nil
	}
	sort.Strings(violated)
	return services.Wrap(services.ErrValidation, "", "state",
		fmt.Sprintf("fields assigned more than once: %v", violated), nil)
}
