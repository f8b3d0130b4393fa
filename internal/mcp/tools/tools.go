package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/vthunder/parley/internal/corpus"
	"github.com/vthunder/parley/internal/logging"
	"github.com/vthunder/parley/internal/overlap"
)

func alienReplyTool() mcp.Tool {
	return mcp.NewTool("alien_reply",
		mcp.WithDescription("Classify an utterance against the alien bot's intent table and return the intent and the alien's reply."),
		mcp.WithString("utterance",
			mcp.Required(),
			mcp.Description("What the human said"),
		),
	)
}

type alienReply struct {
	Intent string            `json:"intent"`
	Kind   string            `json:"kind"`
	Groups map[string]string `json:"groups,omitempty"`
	Reply  string            `json:"reply"`
	Error  string            `json:"error,omitempty"`
}

func alienReplyHandler(deps *Dependencies) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := req.Params.Arguments.(map[string]any)
		utterance, _ := args["utterance"].(string)
		if strings.TrimSpace(utterance) == "" {
			return mcp.NewToolResultError("utterance is required"), nil
		}

		m := deps.Alien.Match(utterance)
		out := alienReply{Intent: m.Intent, Kind: string(m.Kind), Groups: m.Extracted}
		reply, err := deps.Alien.Respond(ctx, utterance)
		if err != nil {
			logging.Info("mcp", "alien_reply fallback: %v", err)
			out.Error = err.Error()
			reply = deps.AlienFallback
		}
		out.Reply = reply
		return jsonResult(out)
	}
}

func cantinaRespondTool() mcp.Tool {
	return mcp.NewTool("cantina_respond",
		mcp.WithDescription("Pick the cantina response with the most word overlap and fill in the entity extracted from the utterance."),
		mcp.WithString("utterance",
			mcp.Required(),
			mcp.Description("What the customer said"),
		),
	)
}

type cantinaReply struct {
	Index    int    `json:"index"`
	Scores   []int  `json:"scores"`
	Entity   string `json:"entity"`
	Response string `json:"response"`
}

func cantinaRespondHandler(deps *Dependencies) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := req.Params.Arguments.(map[string]any)
		utterance, _ := args["utterance"].(string)
		if strings.TrimSpace(utterance) == "" {
			return mcp.NewToolResultError("utterance is required"), nil
		}

		best := deps.Cantina.Scorer().Best(utterance)
		out := cantinaReply{
			Index:  best.Index,
			Scores: best.Scores,
			Entity: deps.Cantina.Extractor().Extract(ctx, utterance),
		}
		out.Response = deps.CantinaFallback
		if best.Index >= 0 {
			out.Response = corpus.Fill(best.Response, out.Entity)
		}
		return jsonResult(out)
	}
}

func extractEntityTool() mcp.Tool {
	return mcp.NewTool("extract_entity",
		mcp.WithDescription("Return the noun in the utterance most similar to the cantina placeholder concept, or the placeholder itself when none can be found."),
		mcp.WithString("utterance",
			mcp.Required(),
			mcp.Description("Text to extract the entity from"),
		),
		mcp.WithBoolean("ranked",
			mcp.Description("Also return every noun with its similarity, ascending. Default: false"),
		),
	)
}

func extractEntityHandler(deps *Dependencies) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := req.Params.Arguments.(map[string]any)
		utterance, _ := args["utterance"].(string)
		ranked, _ := args["ranked"].(bool)

		ex := deps.Cantina.Extractor()
		entity := ex.Extract(ctx, utterance)
		if !ranked {
			return mcp.NewToolResultText(entity), nil
		}

		candidates, err := ex.Rank(ctx, utterance)
		if err != nil {
			logging.Debug("mcp", "rank %q: %v", logging.Truncate(utterance, 40), err)
		}
		return jsonResult(map[string]any{
			"entity":     entity,
			"candidates": candidates,
		})
	}
}

func scoreOverlapTool() mcp.Tool {
	return mcp.NewTool("score_overlap",
		mcp.WithDescription("Score candidate sentences by bag-of-words overlap with an utterance and return the index of the best one (first wins on ties). Uses the cantina responses when no candidates are given."),
		mcp.WithString("utterance",
			mcp.Required(),
			mcp.Description("Utterance to score against"),
		),
		mcp.WithArray("candidates",
			mcp.Description("Candidate sentences (e.g., [\"Tell me more\", \"I come in peace\"])"),
			mcp.Items(map[string]any{"type": "string"}),
		),
	)
}

func scoreOverlapHandler(deps *Dependencies) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := req.Params.Arguments.(map[string]any)
		utterance, _ := args["utterance"].(string)

		scorer := deps.Cantina.Scorer()
		if raw, ok := args["candidates"].([]any); ok && len(raw) > 0 {
			candidates := make([]string, 0, len(raw))
			for i, item := range raw {
				s, ok := item.(string)
				if !ok {
					return mcp.NewToolResultError(fmt.Sprintf("candidates[%d] is not a string", i)), nil
				}
				candidates = append(candidates, s)
			}
			scorer = overlap.NewScorer(deps.Cantina.Tokenizer(), candidates)
		}

		best := scorer.Best(utterance)
		return jsonResult(map[string]any{
			"index":    best.Index,
			"scores":   best.Scores,
			"response": best.Response,
		})
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(output)), nil
}
