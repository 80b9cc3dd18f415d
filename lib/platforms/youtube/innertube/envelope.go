package innertube

import "ytfeed/lib/platforms/youtube/page"

// Shape tags the envelope variants a continuation response can take.
type Shape int

const (
	ShapeUnrecognized Shape = iota
	// ShapeAppend carries items at
	// onResponseReceivedActions[0].appendContinuationItemsAction.continuationItems.
	ShapeAppend
	// ShapeContinuationContents carries items at
	// continuationContents.<renderer>.contents.
	ShapeContinuationContents
)

func (s Shape) String() string {
	switch s {
	case ShapeAppend:
		return "append"
	case ShapeContinuationContents:
		return "continuation_contents"
	}
	return "unrecognized"
}

// Envelope is a decoded innertube response.
type Envelope struct {
	Root page.Node
}

func (e *Envelope) appendItems() page.Node {
	return e.Root.Lookup(
		"onResponseReceivedActions", 0,
		"appendContinuationItemsAction", "continuationItems",
	)
}

// continuationRenderer returns the single renderer object under
// continuationContents.
func (e *Envelope) continuationRenderer() page.Node {
	contents := e.Root.Get("continuationContents")
	keys := contents.Keys()
	if len(keys) != 1 {
		return page.Missing("continuationContents.*")
	}
	return contents.Get(keys[0])
}

func (e *Envelope) Shape() Shape {
	if _, err := e.appendItems().List(); err == nil {
		return ShapeAppend
	}
	if _, err := e.continuationRenderer().Get("contents").List(); err == nil {
		return ShapeContinuationContents
	}
	return ShapeUnrecognized
}

// Items returns the item list of a recognized envelope.
func (e *Envelope) Items() ([]page.Node, error) {
	switch e.Shape() {
	case ShapeAppend:
		return e.appendItems().List()
	case ShapeContinuationContents:
		return e.continuationRenderer().Get("contents").List()
	}
	return nil, &page.MissingFieldError{Path: "onResponseReceivedActions", Reason: "unrecognized envelope"}
}

// Continuations is the sibling continuation list of a
// ShapeContinuationContents envelope, it is missing for other shapes.
func (e *Envelope) Continuations() page.Node {
	if e.Shape() != ShapeContinuationContents {
		return page.Missing("continuationContents.*.continuations")
	}
	return e.continuationRenderer().Get("continuations")
}
