// Package golight controls networked light bulbs over the LAN protocol:
// discovery, state queries, color and power control, and animated effects.
//
// Usage is through a Client:
//
//	client, err := golight.NewClient()
//	if err != nil {
//		// no usable network
//	}
//	devices, err := client.Discover(context.Background())
//	// ...
//	client.SetColor(`Kitchen`, color, 500*time.Millisecond)
//	client.RunEffect(`Kitchen`, `flame`, effects.Params{})
package golight

import (
	"github.com/lumenlabs/golight/common"
)

// VERSION is the library version
const VERSION = `1.0.0`

// SetLogger wires a logger into the library.  By default log messages are
// discarded; pass anything satisfying common.Logger to see them.
func SetLogger(logger common.Logger) {
	common.SetLogger(logger)
}
