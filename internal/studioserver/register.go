// Package studioserver registers the go_studio MCP tools: task CRUD,
// AI task organization, checklist persistence and navigation, and
// YouTube video metadata/transcript lookup.
package studioserver

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RegisterTools registers all studio tools on the given MCP server.
func RegisterTools(server *mcp.Server) {
	registerTaskAdd(server)
	registerTaskList(server)
	registerTaskComplete(server)
	registerTaskDelete(server)

	registerOrganizeTasks(server)

	registerChecklistSave(server)
	registerChecklistGet(server)
	registerChecklistToggle(server)
	registerChecklistStep(server)

	registerVideoInfo(server)
	registerVideoTranscript(server)
}
