package api

import "fridgechef/internal/recipe"

// View modes of the single-screen assistant.
const (
	ViewGenerator = "generator"
	ViewSaved     = "saved"
)

// viewState is the transient per-session state behind the single screen.
// None of it is persisted; a new image selection resets results and error.
// Guarded by Handler.mu.
type viewState struct {
	view        string
	imageData   []byte
	imageMIME   string
	previewURL  string
	previewPath string
	recipes     []recipe.Recipe
	errMsg      string
	generating  bool
	// seq increments on every image selection. A generation captures the
	// value at launch and discards its result if the value moved on, so a
	// late response never overwrites newer state.
	seq      uint64
	expanded int
}

func newViewState() viewState {
	return viewState{view: ViewGenerator, expanded: -1}
}
