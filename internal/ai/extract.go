package ai

import (
	"strings"

	"github.com/openai/openai-go/v3/responses"
)

// extractText scans the output items of a response in order and returns the
// first plain-text content block. Responses with no text block (refusals,
// reasoning-only output) yield an empty string rather than an error.
func extractText(resp *responses.Response) string {
	for _, item := range resp.Output {
		for _, block := range item.Content {
			if block.Type == "output_text" {
				return strings.TrimSpace(block.Text)
			}
		}
	}

	return ""
}
