package plugin

import "image/color"

// PluginInfo contains metadata about a plugin.
type PluginInfo struct {
	Name            string `json:"name"`
	Version         string `json:"version"`
	ProtocolVersion string `json:"protocol_version"`
	Description     string `json:"description"`
	PluginProtocol  string `json:"plugin_protocol"` // "json-stdio" or "go-plugin"
}

// ExtractRequest asks a palette source for colours.
type ExtractRequest struct {
	// Image holds the encoded source image bytes exactly as they were read.
	Image []byte `json:"image"`
	// Count is the number of colours wanted, most dominant first.
	Count int `json:"count"`
}

// RGB is the wire form of an opaque colour.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// ExtractResponse carries the colours back to the host. Error is set by
// json-stdio plugins that fail.
type ExtractResponse struct {
	Colours []RGB  `json:"colours"`
	Error   string `json:"error,omitempty"`
}

// EncodeColours converts colours to their wire form, dropping alpha.
func EncodeColours(colours []color.Color) []RGB {
	out := make([]RGB, len(colours))
	for i, c := range colours {
		n := color.NRGBAModel.Convert(c).(color.NRGBA)
		out[i] = RGB{R: n.R, G: n.G, B: n.B}
	}
	return out
}

// DecodeColours converts wire colours to opaque colours.
func DecodeColours(rgb []RGB) []color.Color {
	out := make([]color.Color, len(rgb))
	for i, c := range rgb {
		out[i] = color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255}
	}
	return out
}
