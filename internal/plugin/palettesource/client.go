// Package palettesource runs palette-source plugins on behalf of the host,
// speaking either go-plugin RPC or JSON over stdin/stdout.
package palettesource

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image/color"
	"os"
	"os/exec"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"

	pluginapi "github.com/jmylchreest/thumbweave/pkg/plugin"
)

// Options configures a Client.
type Options struct {
	Logger hclog.Logger
	// Runner overrides the process runner, mainly for tests.
	Runner ProcessRunner
}

// Client runs one palette-source plugin. It is not safe for concurrent use.
type Client struct {
	path         string
	info         pluginapi.PluginInfo
	protocolType pluginapi.PluginType
	runner       ProcessRunner
	logger       hclog.Logger

	client    *plugin.Client
	rpcClient *pluginapi.PaletteSourceRPCClient
}

// New creates a Client by detecting the plugin's protocol. The go-plugin
// process is started lazily on the first Extract.
func New(ctx context.Context, path string, opts Options) (*Client, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to access plugin: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("plugin path is a directory: %s", path)
	}

	runner := opts.Runner
	if runner == nil {
		runner = NewRealProcessRunner()
	}
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	result, err := DetectProtocol(ctx, runner, path)
	if err != nil {
		return nil, fmt.Errorf("failed to detect plugin protocol: %w", err)
	}
	logger.Debug("detected plugin", "path", path, "name", result.Info.Name, "protocol", result.Type)

	return &Client{
		path:         path,
		info:         result.Info,
		protocolType: result.Type,
		runner:       runner,
		logger:       logger,
	}, nil
}

// Info returns the metadata the plugin reported.
func (c *Client) Info() pluginapi.PluginInfo {
	return c.info
}

// Name returns a label for the plugin, used in errors.
func (c *Client) Name() string {
	if c.info.Name != "" {
		return c.info.Name
	}
	return c.path
}

// Extract asks the plugin for count colours from the encoded image.
func (c *Client) Extract(ctx context.Context, image []byte, count int) ([]color.Color, error) {
	req := pluginapi.ExtractRequest{Image: image, Count: count}
	switch c.protocolType {
	case pluginapi.PluginTypeGoPlugin:
		return c.extractGoPlugin(ctx, req)
	case pluginapi.PluginTypeJSON:
		return c.extractJSON(ctx, req)
	default:
		return nil, fmt.Errorf("unsupported protocol type: %s", c.protocolType)
	}
}

// Close kills the plugin process if one is running.
func (c *Client) Close() {
	if c.client != nil {
		c.client.Kill()
		c.client = nil
		c.rpcClient = nil
	}
}

func (c *Client) getRPCClient() (*pluginapi.PaletteSourceRPCClient, error) {
	if c.rpcClient != nil {
		return c.rpcClient, nil
	}

	c.client = plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig: pluginapi.Handshake,
		Plugins: map[string]plugin.Plugin{
			pluginapi.PluginName: &pluginapi.PaletteSourceRPC{},
		},
		Cmd:              exec.Command(c.path), // #nosec G204 -- plugin path is chosen by the user
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolNetRPC},
		Logger:           c.logger.Named("plugin"),
	})

	rpcClient, err := c.client.Client()
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to get RPC client: %w", err)
	}

	raw, err := rpcClient.Dispense(pluginapi.PluginName)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to dispense plugin: %w", err)
	}

	client, ok := raw.(*pluginapi.PaletteSourceRPCClient)
	if !ok {
		c.Close()
		return nil, fmt.Errorf("plugin returned unexpected client type %T", raw)
	}
	c.rpcClient = client
	return client, nil
}

func (c *Client) extractGoPlugin(ctx context.Context, req pluginapi.ExtractRequest) ([]color.Color, error) {
	client, err := c.getRPCClient()
	if err != nil {
		return nil, err
	}
	colours, err := client.Extract(ctx, req)
	if err != nil && ctx.Err() != nil {
		// The RPC call cannot be interrupted; drop the process instead.
		c.Close()
	}
	return colours, err
}

func (c *Client) extractJSON(ctx context.Context, req pluginapi.ExtractRequest) ([]color.Color, error) {
	reqJSON, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	stdout, stderr, runErr := c.runner.Run(ctx, c.path, nil, bytes.NewReader(reqJSON))
	if errors.Is(runErr, context.Canceled) || errors.Is(runErr, context.DeadlineExceeded) {
		return nil, runErr
	}

	var resp pluginapi.ExtractResponse
	if err := json.Unmarshal(stdout, &resp); err != nil {
		if runErr != nil {
			return nil, fmt.Errorf("plugin execution failed: %w%s", runErr, stderrSuffix(stderr))
		}
		return nil, fmt.Errorf("failed to parse plugin output: %w\nOutput: %s", err, stdout)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("plugin reported an error: %s", resp.Error)
	}
	if runErr != nil {
		return nil, fmt.Errorf("plugin execution failed: %w%s", runErr, stderrSuffix(stderr))
	}

	return pluginapi.DecodeColours(resp.Colours), nil
}
