// random - Random Palette Source (thumbweave palette plugin)
//
// Ignores the image's pixels and returns random colours seeded from a hash
// of its bytes, so the same image always yields the same palette. Useful for
// trying layouts with colours an extractor would never pick.
//
// Build:
//
//	go build -o thumbweave-random ./contrib/plugins/palette/random
//
// Usage:
//
//	thumbweave --palette-plugin ./thumbweave-random wallpaper.jpg
//
// Environment:
//
//	THUMBWEAVE_RANDOM_PROTOCOL=json-stdio  serve JSON over stdin/stdout
//	                                       instead of go-plugin RPC
package main

import (
	"context"
	"encoding/binary"
	"errors"
	"hash/fnv"
	"image/color"
	mathrand "math/rand/v2"
	"os"

	pluginapi "github.com/jmylchreest/thumbweave/pkg/plugin"
)

// RandomSource implements pluginapi.PaletteSource.
type RandomSource struct {
	protocol pluginapi.PluginType
}

// Extract returns req.Count colours seeded from the image bytes.
func (s *RandomSource) Extract(ctx context.Context, req pluginapi.ExtractRequest) ([]color.Color, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(req.Image) == 0 {
		return nil, errors.New("empty image")
	}
	if req.Count < 1 {
		return nil, errors.New("count must be at least 1")
	}
	return generate(seedFor(req.Image), req.Count), nil
}

// GetMetadata returns plugin metadata.
func (s *RandomSource) GetMetadata() pluginapi.PluginInfo {
	return pluginapi.PluginInfo{
		Name:            "random",
		Version:         "0.1.0",
		ProtocolVersion: pluginapi.ProtocolVersion,
		Description:     "Random colours seeded by the image bytes",
		PluginProtocol:  string(s.protocol),
	}
}

func seedFor(data []byte) uint64 {
	h := fnv.New64a()
	_, _ = h.Write(data)
	return h.Sum64()
}

// generate creates n colours from seed.
func generate(seed uint64, n int) []color.Color {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:8], seed)
	// #nosec G404 -- deterministic colours, not cryptography
	rng := mathrand.New(mathrand.NewChaCha8(key))

	colours := make([]color.Color, n)
	for i := range n {
		colours[i] = color.NRGBA{
			R: uint8(rng.IntN(256)), // #nosec G115 -- IntN(256) fits in uint8
			G: uint8(rng.IntN(256)), // #nosec G115
			B: uint8(rng.IntN(256)), // #nosec G115
			A: 255,
		}
	}
	return colours
}

func main() {
	protocol := pluginapi.PluginTypeGoPlugin
	if os.Getenv("THUMBWEAVE_RANDOM_PROTOCOL") == string(pluginapi.PluginTypeJSON) {
		protocol = pluginapi.PluginTypeJSON
	}
	pluginapi.Serve(&RandomSource{protocol: protocol})
}
