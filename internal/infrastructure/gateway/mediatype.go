package gateway

// MediaType is the fixed external-contract enum for Media.GetPresignedUploadURL
// (spec.md §4.2). Values are part of the wire contract and must never be
// renumbered.
type MediaType int32

const (
	MediaTypeUnknown         MediaType = 0
	MediaTypeWorldHeader     MediaType = 1
	MediaTypeWorldIcon       MediaType = 2
	MediaTypeCharacterAvatar MediaType = 3
	MediaTypePostImage       MediaType = 4
)
