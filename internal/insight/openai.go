package insight

import (
	"context"
	"fmt"
	"strings"

	"github.com/andresuchdata/stockcast/internal/domain"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
)

const maxPromptRows = 15

// OpenAIGenerator summarizes a plan through the OpenAI Responses API.
type OpenAIGenerator struct {
	client *openai.Client
	model  string
}

func NewOpenAIGenerator(apiKey, model string) *OpenAIGenerator {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	if model == "" {
		model = string(shared.ChatModelGPT4o)
	}
	return &OpenAIGenerator{client: &client, model: model}
}

func (g *OpenAIGenerator) Summarize(ctx context.Context, plan *domain.PlanResult) (string, error) {
	resp, err := g.client.Responses.New(ctx, responses.ResponseNewParams{
		Model: shared.ResponsesModel(g.model),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: param.NewOpt(buildPrompt(plan)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai responses error: %w", err)
	}

	return strings.TrimSpace(resp.OutputText()), nil
}

func buildPrompt(plan *domain.PlanResult) string {
	var b strings.Builder
	b.WriteString("You are an inventory operations analyst. Summarize the state of the stock plan below in 3-5 plain sentences for an operations manager. Focus on what needs attention first and why.\n\n")

	b.WriteString("Stockout risks (most urgent first):\n")
	for i, r := range plan.Risks {
		if i >= maxPromptRows {
			fmt.Fprintf(&b, "... and %d more\n", len(plan.Risks)-i)
			break
		}
		fmt.Fprintf(&b, "- %s (%s): %d days of stock left, risk %s, demand %s\n",
			r.SKU, r.Name, r.DaysUntilStockout, r.RiskLevel, r.TrendMetrics.Direction)
	}

	b.WriteString("\nSuggested actions:\n")
	for i, a := range plan.Actions {
		if i >= maxPromptRows {
			fmt.Fprintf(&b, "... and %d more\n", len(plan.Actions)-i)
			break
		}
		fmt.Fprintf(&b, "- %s %d x %s by %s (%s priority): %s\n",
			a.Type, a.Quantity, a.SKU, a.ActionDate.Format("2006-01-02"), a.Priority, a.Reason)
	}

	return b.String()
}
