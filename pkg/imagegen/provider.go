// Package imagegen implements the Image Client (C4): the six-step
// text-to-image pipeline from prompt to a confirmed, stably-addressable
// media id.
package imagegen

import "context"

// TextToImageRequest is the normalized request to a text-to-image Provider.
type TextToImageRequest struct {
	PositivePrompt string
	NegativePrompt string
	Width          int
	Height         int
	Model          string
}

// TextToImageResult carries the provider's ephemeral result URL.
type TextToImageResult struct {
	ImageURL string
}

// Provider is the HTTP transport backing a Client; RunwareProvider is the
// only implementation.
type Provider interface {
	GenerateImage(ctx context.Context, req *TextToImageRequest) (*TextToImageResult, error)
}

// NegativePrompt is the fixed negative prompt appended to every submission
// (spec.md §4.4 step 2).
const NegativePrompt = "blurry, deformed, disfigured, bad anatomy, ugly, text, watermark"
