package mcp

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/specei/recall/pkg/model"
	"github.com/specei/recall/pkg/usecase/recall"
)

// Server exposes the recall pipeline over MCP stdio so agent hosts can use
// memory search and grounded answering as tools.
type Server struct {
	searcher recall.Searcher
	pipeline *recall.UseCase
	version  string
}

// NewServer creates an MCP server on top of the recall components.
func NewServer(searcher recall.Searcher, pipeline *recall.UseCase, version string) *Server {
	return &Server{
		searcher: searcher,
		pipeline: pipeline,
		version:  version,
	}
}

type searchParams struct {
	OwnerID string `json:"owner_id" jsonschema:"Owner whose memories are searched"`
	Query   string `json:"query" jsonschema:"Natural language search query"`
	Limit   int    `json:"limit,omitempty" jsonschema:"Maximum number of evidence entries (default 10)"`
}

type askParams struct {
	OwnerID string `json:"owner_id" jsonschema:"Owner whose memories are queried"`
	Query   string `json:"query" jsonschema:"Question about past captured experience"`
}

func (s *Server) searchMemories(ctx context.Context, req *mcp.CallToolRequest, params *searchParams) (*mcp.CallToolResult, any, error) {
	if params.OwnerID == "" || params.Query == "" {
		return nil, nil, goerr.New("owner_id and query are required")
	}

	limit := params.Limit
	if limit <= 0 {
		limit = recall.DefaultMaxEvidence
	}

	candidates, err := s.searcher.Search(ctx, model.OwnerID(params.OwnerID), params.Query, recall.DefaultMaxCandidates)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "memory search failed")
	}

	evidence := recall.Assemble(candidates, limit)
	text := evidence.Render()
	if text == "" {
		text = "No matching memories found."
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}, nil, nil
}

func (s *Server) askMemory(ctx context.Context, req *mcp.CallToolRequest, params *askParams) (*mcp.CallToolResult, any, error) {
	if params.OwnerID == "" || params.Query == "" {
		return nil, nil, goerr.New("owner_id and query are required")
	}

	result, err := s.pipeline.Ask(ctx, model.OwnerID(params.OwnerID), params.Query)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "recall pipeline failed")
	}

	if !result.Intent.IsMemoryQuery {
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: "Not a memory-recall question; no retrieval was performed."},
			},
		}, nil, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: result.Answer},
		},
	}, nil, nil
}

// Run serves MCP over stdio until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "recall",
		Version: s.version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_memories",
		Description: "Search a user's captured memories (photos, videos, audio transcripts, detected objects) and return the ranked evidence entries.",
	}, s.searchMemories)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "ask_memory",
		Description: "Answer a question about a user's past captured experience strictly from recorded evidence, or refuse when evidence is insufficient.",
	}, s.askMemory)

	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return goerr.Wrap(err, "mcp server failed")
	}

	return nil
}
