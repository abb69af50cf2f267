package pod

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/prathamesh1010/mcp-k8s/internal/executor"
	"github.com/prathamesh1010/mcp-k8s/internal/k8s"
	"github.com/prathamesh1010/mcp-k8s/internal/server"
	"github.com/prathamesh1010/mcp-k8s/internal/tools"
)

// ListPodsResponse is the list_pods result. Pods is an empty array, not
// null, when the namespace has no pods.
type ListPodsResponse struct {
	tools.Response
	Pods []executor.PodRecord `json:"pods"`
}

// MessageResponse is returned by the create and delete tools.
type MessageResponse struct {
	tools.Response
	Message string `json:"message"`
}

// LogsResponse is the get_pod_logs result.
type LogsResponse struct {
	tools.Response
	Logs string `json:"logs"`
}

func handleListPods(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	namespace := tools.Namespace(request.GetArguments(), sc)

	result := sc.Executor().ListPods(ctx, namespace)
	if !result.Success {
		return tools.JSONResult(tools.ErrorResponse(result.Message))
	}

	pods := result.Pods
	if pods == nil {
		pods = []executor.PodRecord{}
	}
	return tools.JSONResult(ListPodsResponse{
		Response: tools.Response{Success: true},
		Pods:     pods,
	})
}

func handleCreateNginxPod(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	podName, errResult := tools.RequiredString(args, "pod_name")
	if errResult != nil {
		return errResult, nil
	}
	if blocked := tools.CheckMutatingOperation(sc, k8s.OperationCreate); blocked != nil {
		return blocked, nil
	}

	result := sc.Executor().CreatePod(ctx, tools.Namespace(args, sc), podName)
	return messageResult(result)
}

func handleGetPodLogs(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	podName, errResult := tools.RequiredString(args, "pod_name")
	if errResult != nil {
		return errResult, nil
	}

	tailLines, errResult := tools.OptionalNonNegativeInt(args, "tail_lines")
	if errResult != nil {
		return errResult, nil
	}

	result := sc.Executor().GetLogs(ctx, tools.Namespace(args, sc), podName, tailLines)
	if !result.Success {
		return tools.JSONResult(tools.ErrorResponse(result.Message))
	}
	return tools.JSONResult(LogsResponse{
		Response: tools.Response{Success: true},
		Logs:     result.Logs,
	})
}

func handleDeletePod(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	podName, errResult := tools.RequiredString(args, "pod_name")
	if errResult != nil {
		return errResult, nil
	}
	if blocked := tools.CheckMutatingOperation(sc, k8s.OperationDelete); blocked != nil {
		return blocked, nil
	}

	result := sc.Executor().DeletePod(ctx, tools.Namespace(args, sc), podName)
	return messageResult(result)
}

func messageResult(result executor.Result) (*mcp.CallToolResult, error) {
	if !result.Success {
		return tools.JSONResult(tools.ErrorResponse(result.Message))
	}
	return tools.JSONResult(MessageResponse{
		Response: tools.Response{Success: true},
		Message:  result.Message,
	})
}
