package pipeline

import "errors"

var (
	// ErrPromptTooShort rejects submissions below the minimum prompt length.
	ErrPromptTooShort = errors.New("prompt must be at least 10 characters")

	// ErrNotRenderable rejects a render trigger on a request whose status is
	// not render-eligible. The request is left untouched.
	ErrNotRenderable = errors.New("request is not ready to render")

	// ErrNoMarkup rejects a refinement on a request that has no animation
	// draft yet.
	ErrNoMarkup = errors.New("request has no animation markup to refine")
)
