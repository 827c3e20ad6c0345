package service

import (
	"context"
	"fmt"
	"strings"
)

// CompletionService is the external text-completion collaborator: given a
// prompt it eventually returns generated text, or fails/times out.
type CompletionService interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ExtractCompletionText normalizes the response shapes completion backends
// return (plain string, {content: ...} map, or anything with a Content
// field rendered via fmt) into one trimmed string. Every internal call
// site depends only on this normalized form.
func ExtractCompletionText(response interface{}) string {
	switch r := response.(type) {
	case string:
		return strings.TrimSpace(r)
	case map[string]interface{}:
		if content, ok := r["content"].(string); ok {
			return strings.TrimSpace(content)
		}
		return strings.TrimSpace(fmt.Sprintf("%v", r))
	case interface{ GetContent() string }:
		return strings.TrimSpace(r.GetContent())
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", r))
	}
}
