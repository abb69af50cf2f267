package pod

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/prathamesh1010/mcp-k8s/internal/server"
	"github.com/prathamesh1010/mcp-k8s/internal/tools"
)

// Tool names.
const (
	ToolListPods       = "list_pods"
	ToolCreateNginxPod = "create_nginx_pod"
	ToolGetPodLogs     = "get_pod_logs"
	ToolDeletePod      = "delete_pod"
)

// RegisterPodTools registers all pod management tools with the MCP server
func RegisterPodTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	listPodsTool := mcp.NewTool(ToolListPods,
		mcp.WithDescription("List pods in a namespace with their phase and IP"),
		tools.NamespaceParam(sc),
	)
	s.AddTool(listPodsTool, tools.WrapWithAuditLogging(ToolListPods, handleListPods, sc))

	createTool := mcp.NewTool(ToolCreateNginxPod,
		mcp.WithDescription("Create a pod running nginx:latest on port 80"),
		mcp.WithString("pod_name",
			mcp.Required(),
			mcp.Description("Name of the pod to create"),
		),
		tools.NamespaceParam(sc),
	)
	s.AddTool(createTool, tools.WrapWithAuditLogging(ToolCreateNginxPod, handleCreateNginxPod, sc))

	logsTool := mcp.NewTool(ToolGetPodLogs,
		mcp.WithDescription("Get the logs of a pod"),
		mcp.WithString("pod_name",
			mcp.Required(),
			mcp.Description("Name of the pod to get logs from"),
		),
		mcp.WithNumber("tail_lines",
			mcp.Description("Return only the last N lines of the log (default: the whole log)"),
			mcp.Min(0),
		),
		tools.NamespaceParam(sc),
	)
	s.AddTool(logsTool, tools.WrapWithAuditLogging(ToolGetPodLogs, handleGetPodLogs, sc))

	deleteTool := mcp.NewTool(ToolDeletePod,
		mcp.WithDescription("Delete a pod"),
		mcp.WithString("pod_name",
			mcp.Required(),
			mcp.Description("Name of the pod to delete"),
		),
		tools.NamespaceParam(sc),
	)
	s.AddTool(deleteTool, tools.WrapWithAuditLogging(ToolDeletePod, handleDeletePod, sc))

	return nil
}
