package palettesource

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	pluginapi "github.com/jmylchreest/thumbweave/pkg/plugin"
)

// detectTimeout bounds the --plugin-info query.
const detectTimeout = 5 * time.Second

// DetectorResult contains information about a detected plugin protocol.
type DetectorResult struct {
	// Type indicates which protocol the plugin uses.
	Type pluginapi.PluginType

	// Info contains metadata from --plugin-info.
	Info pluginapi.PluginInfo
}

// DetectProtocol queries the plugin with --plugin-info and checks that its
// protocol version is compatible.
func DetectProtocol(ctx context.Context, runner ProcessRunner, pluginPath string) (*DetectorResult, error) {
	ctx, cancel := context.WithTimeout(ctx, detectTimeout)
	defer cancel()

	stdout, stderr, err := runner.Run(ctx, pluginPath, []string{pluginapi.InfoFlag}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query plugin: %w%s", err, stderrSuffix(stderr))
	}

	var info pluginapi.PluginInfo
	if err := json.Unmarshal(stdout, &info); err != nil {
		return nil, fmt.Errorf("failed to parse plugin info: %w", err)
	}

	result := &DetectorResult{Info: info}

	// Determine protocol type from plugin_protocol field.
	switch pluginapi.PluginType(info.PluginProtocol) {
	case pluginapi.PluginTypeGoPlugin, "":
		result.Type = pluginapi.PluginTypeGoPlugin
	case pluginapi.PluginTypeJSON:
		result.Type = pluginapi.PluginTypeJSON
	default:
		return nil, fmt.Errorf("unknown plugin_protocol: %s", info.PluginProtocol)
	}

	if info.ProtocolVersion != "" {
		if ok, err := pluginapi.IsCompatible(info.ProtocolVersion); !ok {
			return nil, fmt.Errorf("plugin %s is not compatible: %w", info.Name, err)
		}
	}

	return result, nil
}

func stderrSuffix(stderr []byte) string {
	s := strings.TrimSpace(string(stderr))
	if s == "" {
		return ""
	}
	return "\nStderr: " + s
}
