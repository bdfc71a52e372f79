// Package plugin is the public API for thumbweave palette-source plugins.
// Plugin authors implement PaletteSource and call Serve from main.
package plugin

import (
	"github.com/hashicorp/go-plugin"
)

const (
	// ProtocolVersion defines the current plugin API version.
	// Format: MAJOR.MINOR.PATCH.
	// - Increment MAJOR for breaking changes (incompatible API changes).
	// - Increment MINOR for backward-compatible additions.
	// - Increment PATCH for backward-compatible bug fixes.
	ProtocolVersion = "1.0.0"

	// MinCompatibleVersion is the oldest protocol version the host accepts.
	MinCompatibleVersion = "1.0.0"

	// PluginName is the name a palette source is dispensed under.
	PluginName = "palette"

	// InfoFlag makes a plugin print its PluginInfo as JSON and exit.
	InfoFlag = "--plugin-info"
)

// Handshake is the handshake configuration for go-plugin protocol.
// go-plugin only compares the major version; the full semantic check
// happens through InfoFlag and IsCompatible.
var Handshake = plugin.HandshakeConfig{
	ProtocolVersion:  uint(GetCurrentVersion().Major),
	MagicCookieKey:   "THUMBWEAVE_PLUGIN",
	MagicCookieValue: "thumbweave_palette_source",
}

// PluginType defines the type of plugin communication protocol.
type PluginType string

const (
	// PluginTypeGoPlugin indicates the plugin uses HashiCorp go-plugin RPC protocol.
	PluginTypeGoPlugin PluginType = "go-plugin"

	// PluginTypeJSON indicates the plugin uses simple JSON over stdin/stdout.
	PluginTypeJSON PluginType = "json-stdio"
)
