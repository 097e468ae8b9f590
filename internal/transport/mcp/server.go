// Package mcp serves search as a JSON-RPC tool over the Model Context
// Protocol streamable HTTP transport.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	gochi "github.com/go-chi/chi/v5"
	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/kailas-cloud/questsearch/internal/domain"
	"github.com/kailas-cloud/questsearch/internal/domain/question"
	"github.com/kailas-cloud/questsearch/internal/domain/search/request"
	"github.com/kailas-cloud/questsearch/internal/metrics"
	searchuc "github.com/kailas-cloud/questsearch/internal/usecase/search"
)

// ToolSearchQuestions is the name of the search tool.
const ToolSearchQuestions = "searchQuestions"

type searchResponse struct {
	Questions []question.Record `json:"questions"`
}

// NewServer creates an MCP server exposing the searchQuestions tool.
func NewServer(search searchuc.Searcher, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"questsearch",
		version,
		server.WithToolCapabilities(false),
		server.WithInstructions("questsearch: keyword search over quiz questions, filterable by type."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcpgo.NewTool(ToolSearchQuestions,
			mcpgo.WithDescription("Search questions by title keywords. Returns one page of matches in relevance order."),
			mcpgo.WithString(request.ArgQuery, mcpgo.Description("Search text"), mcpgo.Required()),
			mcpgo.WithNumber(request.ArgPage, mcpgo.Description("1-based page number (default 1)")),
			mcpgo.WithNumber(request.ArgPageSize, mcpgo.Description("Results per page (default 10)")),
			mcpgo.WithString(request.ArgType, mcpgo.Description("Only return questions of this type, e.g. MCQ or ANAGRAM")),
		),
		searchQuestions(search),
	)

	return s
}

// NewHandler mounts the streamable HTTP transport at endpointPath behind the
// metrics and logging middleware. auth guards the endpoint; pass nil to
// leave it open.
func NewHandler(s *server.MCPServer, endpointPath string, logger *zap.Logger, auth func(http.Handler) http.Handler) http.Handler {
	streamable := server.NewStreamableHTTPServer(s,
		server.WithEndpointPath(endpointPath),
		server.WithStateLess(true),
	)

	r := gochi.NewRouter()
	r.Use(requestLogger(logger))
	if auth != nil {
		r.Use(auth)
	}
	r.Use(metrics.Middleware("rpc"))
	r.Handle(endpointPath, streamable)
	return r
}

func searchQuestions(search searchuc.Searcher) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
		params, err := request.ParamsFromArgs(req.GetArguments())
		if err != nil {
			return mcpgo.NewToolResultError(err.Error()), nil
		}
		if strings.TrimSpace(params.Query) == "" {
			return mcpgo.NewToolResultError("query is required"), nil
		}

		q, err := params.Build()
		if err != nil {
			return mcpgo.NewToolResultError(err.Error()), nil
		}

		records, err := search.Run(ctx, q)
		if err != nil {
			if errors.Is(err, domain.ErrValidation) {
				return mcpgo.NewToolResultError(err.Error()), nil
			}
			// surfaces as a JSON-RPC internal error
			return nil, fmt.Errorf("error during search: %w", err)
		}
		if records == nil {
			records = []question.Record{}
		}

		data, err := json.Marshal(searchResponse{Questions: records})
		if err != nil {
			return nil, fmt.Errorf("error during search: encode results: %w", err)
		}
		return mcpgo.NewToolResultText(string(data)), nil
	}
}
