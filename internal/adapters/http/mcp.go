package httpadapter

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kirillkom/saarthi-qa-gateway/internal/core/domain"
	"github.com/kirillkom/saarthi-qa-gateway/internal/core/ports"
)

const (
	mcpServerName    = "saarthi-qa-gateway"
	mcpServerVersion = "1.0.0"
	askQuestionTool  = "ask_question"
)

func newMCPServer(answerer ports.QuestionAnswerer) *server.MCPServer {
	s := server.NewMCPServer(mcpServerName, mcpServerVersion, server.WithToolCapabilities(false))
	s.AddTool(
		mcp.NewTool(askQuestionTool,
			mcp.WithDescription("Answer an agriculture question from the knowledge base, optionally enhanced by the generative model."),
			mcp.WithString("question", mcp.Required(), mcp.Description("Free-text question.")),
			mcp.WithNumber("top_k", mcp.Description("Number of snippets to retrieve (default 10).")),
			mcp.WithBoolean("use_enhancer", mcp.Description("Set false to skip the generative model.")),
		),
		askQuestionHandler(answerer),
	)
	return s
}

func newMCPHandler(answerer ports.QuestionAnswerer) http.Handler {
	return server.NewStreamableHTTPServer(newMCPServer(answerer), server.WithStateLess(true))
}

func askQuestionHandler(answerer ports.QuestionAnswerer) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question, err := request.RequireString("question")
		if err != nil {
			return mcp.NewToolResultError(missingQuestionError), nil
		}

		result, err := answerer.Answer(ctx, domain.QueryRequest{
			Question:    question,
			TopK:        request.GetInt("top_k", 0),
			UseEnhancer: request.GetBool("use_enhancer", true),
		})
		if err != nil {
			if domain.IsKind(err, domain.ErrInvalidInput) {
				return mcp.NewToolResultError(missingQuestionError), nil
			}
			return mcp.NewToolResultErrorFromErr(answerFailedMessage, err), nil
		}

		payload, err := json.Marshal(toQueryResponse(result))
		if err != nil {
			return nil, err
		}
		return mcp.NewToolResultText(string(payload)), nil
	}
}
