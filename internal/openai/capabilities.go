package openai

import "strings"

// Capabilities lists the optional image-edit fields a model accepts.
type Capabilities struct {
	Quality       bool
	OutputFormat  bool
	InputFidelity bool
}

var imageModels = map[string]Capabilities{
	"gpt-image-1":      {Quality: true, OutputFormat: true, InputFidelity: true},
	"gpt-image-1-mini": {Quality: true, OutputFormat: true},
	"gpt-image-1.5":    {Quality: true, OutputFormat: true, InputFidelity: true},
	"dall-e-2":         {},
}

// CapabilitiesFor returns the descriptor for model. Unknown models get the
// empty set, so only the required fields are sent.
func CapabilitiesFor(model string) Capabilities {
	return imageModels[strings.ToLower(strings.TrimSpace(model))]
}
