// Package tools exposes the bots' single-turn operations as MCP tools.
package tools

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/vthunder/parley/internal/bots"
)

// Version is reported to MCP clients
const Version = "1.0.0"

// Dependencies holds the responders the tools call into. Nil fields
// leave the matching tools unregistered.
type Dependencies struct {
	Alien         *bots.Alien
	AlienFallback string

	Cantina         *bots.Cantina
	CantinaFallback string
}

// NewServer creates an MCP server with every available tool registered
func NewServer(deps *Dependencies) *server.MCPServer {
	s := server.NewMCPServer(
		"parley",
		Version,
		server.WithToolCapabilities(true),
	)
	RegisterAll(s, deps)
	return s
}

// RegisterAll adds the tools whose dependencies are present
func RegisterAll(s *server.MCPServer, deps *Dependencies) {
	if deps.Alien != nil {
		s.AddTool(alienReplyTool(), alienReplyHandler(deps))
	}
	if deps.Cantina != nil {
		s.AddTool(cantinaRespondTool(), cantinaRespondHandler(deps))
		s.AddTool(extractEntityTool(), extractEntityHandler(deps))
		s.AddTool(scoreOverlapTool(), scoreOverlapHandler(deps))
	}
}
