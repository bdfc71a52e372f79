package plugin

import (
	"context"
	"fmt"
	"image/color"
	"net/rpc"

	"github.com/hashicorp/go-plugin"
)

// PaletteSourceRPC implements the go-plugin Plugin interface for palette
// sources.
type PaletteSourceRPC struct {
	plugin.Plugin
	Impl PaletteSource
}

// Server returns an RPC server for this plugin.
func (p *PaletteSourceRPC) Server(*plugin.MuxBroker) (any, error) {
	return &PaletteSourceRPCServer{Impl: p.Impl}, nil
}

// Client returns an RPC client for this plugin.
func (p *PaletteSourceRPC) Client(_ *plugin.MuxBroker, c *rpc.Client) (any, error) {
	return &PaletteSourceRPCClient{client: c}, nil
}

// PaletteSourceRPCServer is the RPC server implementation for palette sources.
type PaletteSourceRPCServer struct {
	Impl PaletteSource
}

// Extract implements the RPC method for palette extraction.
func (s *PaletteSourceRPCServer) Extract(req ExtractRequest, resp *[]RGB) error {
	colours, err := s.Impl.Extract(context.Background(), req)
	if err != nil {
		return err
	}
	*resp = EncodeColours(colours)
	return nil
}

// GetMetadata implements the RPC method for fetching plugin metadata.
func (s *PaletteSourceRPCServer) GetMetadata(_ any, resp *PluginInfo) error {
	*resp = s.Impl.GetMetadata()
	return nil
}

// PaletteSourceRPCClient is the RPC client implementation for palette sources.
type PaletteSourceRPCClient struct {
	client *rpc.Client
}

// Extract calls the remote Extract method. The call is abandoned when ctx is
// done; the plugin process is expected to be killed by the caller.
func (c *PaletteSourceRPCClient) Extract(ctx context.Context, req ExtractRequest) ([]color.Color, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var resp []RGB
	call := c.client.Go("Plugin.Extract", req, &resp, nil)
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-call.Done:
	}
	if call.Error != nil {
		return nil, fmt.Errorf("plugin extract failed: %w", call.Error)
	}
	return DecodeColours(resp), nil
}

// GetMetadata calls the remote GetMetadata method. Errors yield empty
// metadata.
func (c *PaletteSourceRPCClient) GetMetadata() PluginInfo {
	var info PluginInfo
	if err := c.client.Call("Plugin.GetMetadata", new(any), &info); err != nil {
		return PluginInfo{}
	}
	return info
}
