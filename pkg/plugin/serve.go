package plugin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-plugin"
)

// Serve runs impl as a plugin process. It answers InfoFlag with the plugin's
// metadata, speaks json-stdio when the metadata asks for it and go-plugin
// RPC otherwise. It exits the process on completion.
func Serve(impl PaletteSource) {
	info := impl.GetMetadata()

	if len(os.Args) > 1 && os.Args[1] == InfoFlag {
		if err := WriteInfo(os.Stdout, info); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding plugin info: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	if PluginType(info.PluginProtocol) == PluginTypeJSON {
		if err := ServeJSON(context.Background(), impl, os.Stdin, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: Handshake,
		Plugins: map[string]plugin.Plugin{
			PluginName: &PaletteSourceRPC{Impl: impl},
		},
	})
}

// WriteInfo writes info as indented JSON.
func WriteInfo(w io.Writer, info PluginInfo) error {
	if info.ProtocolVersion == "" {
		info.ProtocolVersion = ProtocolVersion
	}
	if info.PluginProtocol == "" {
		info.PluginProtocol = string(PluginTypeGoPlugin)
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(info)
}

// ServeJSON answers one ExtractRequest read from r with an ExtractResponse
// written to w. Extraction failures are reported in the response and also
// returned.
func ServeJSON(ctx context.Context, impl PaletteSource, r io.Reader, w io.Writer) error {
	var req ExtractRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return fmt.Errorf("failed to decode request: %w", err)
	}

	var resp ExtractResponse
	colours, extractErr := impl.Extract(ctx, req)
	if extractErr != nil {
		resp.Error = extractErr.Error()
	} else {
		resp.Colours = EncodeColours(colours)
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}
	return extractErr
}
