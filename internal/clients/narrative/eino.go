package narrative

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	dmerr "github.com/mythgate/dungeonmind/internal/errors"
)

// ClientConfig holds configuration for the eino-backed narration client
type ClientConfig struct {
	ChatModel model.ChatModel
}

// einoClient implements Generator on top of a compiled eino chain
type einoClient struct {
	chain compose.Runnable[map[string]any, *schema.Message]
}

// NewClient creates a narration client. The prompt chain is compiled once;
// every Generate call reuses it.
func NewClient(ctx context.Context, cfg *ClientConfig) (Generator, error) {
	if cfg.ChatModel == nil {
		panic("chat model is required")
	}

	template := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(template)
	chain.AppendChatModel(cfg.ChatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, dmerr.WrapWithCode(err, dmerr.CodeInternal, "failed to compile narration chain")
	}

	return &einoClient{chain: runnable}, nil
}

// Generate runs the chain and returns the model's text content
func (c *einoClient) Generate(ctx context.Context, system, query string) (string, error) {
	response, err := c.chain.Invoke(ctx, map[string]any{
		"system": system,
		"query":  query,
	})
	if err != nil {
		return "", dmerr.WrapWithCode(err, triage(err), "narration model call failed")
	}

	return response.Content, nil
}

// triage separates credential problems from transient failures so callers can
// tell the player which one they hit
func triage(err error) dmerr.Code {
	message := strings.ToLower(err.Error())
	for _, marker := range []string{"401", "unauthorized", "authentication", "api key", "invalid key"} {
		if strings.Contains(message, marker) {
			return dmerr.CodeUnauthenticated
		}
	}
	return dmerr.CodeUnavailable
}
