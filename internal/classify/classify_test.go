package classify_test

import (
	"context"
	"testing"

	"distill/internal/classify"
	"distill/internal/state"
)

func TestDetect(t *testing.T) {
	cases := []struct {
		source string
		want   state.InputType
	}{
		{"https://example.com/article", state.InputURL},
		{"http://example.com", state.InputURL},
		{"ftp://example.com/file.txt", state.InputText},
		{"report.pdf", state.InputDocument},
		{"/home/user/Notes.DOCX", state.InputDocument},
		{"diagram.png", state.InputImage},
		{"photo.JPeG", state.InputImage},
		{"notes.txt", state.InputText},
		{"just a sentence of raw text", state.InputText},
		{"", state.InputText},
	}
	for _, tc := range cases {
		if got := classify.Detect(tc.source); got != tc.want {
			t.Errorf("Detect(%q) = %q, want %q", tc.source, got, tc.want)
		}
	}
}

func TestNodeRecordsTypeAndRoutesOnIt(t *testing.T) {
	node := classify.NewNode()
	st := state.New("run-1", "https://example.com/post")
	ctx := context.Background()

	prepared, err := node.Prepare(ctx, st)
	if err != nil {
		t.Fatal(err)
	}
	result, err := node.Execute(ctx, prepared)
	if err != nil {
		t.Fatal(err)
	}
	outcome, err := node.Finalize(ctx, st, prepared, result)
	if err != nil {
		t.Fatal(err)
	}
	if string(outcome) != string(state.InputURL) {
		t.Fatalf("outcome = %q", outcome)
	}
	if st.InputType() != state.InputURL {
		t.Fatalf("state type = %q", st.InputType())
	}
}
