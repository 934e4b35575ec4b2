package pipeline

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"github.com/jnystrom/contentpipe/models"
)

// CanonicalHash computes the stable content digest of the structured output.
// The output is round-tripped through a generic map so encoding/json emits
// keys in sorted order, making the digest independent of struct field order.
// The processed_at timestamp is excluded so identical content hashes
// identically across runs.
func CanonicalHash(content models.OptimizedContent) (string, error) {
	raw, err := json.Marshal(content)
	if err != nil {
		return "", fmt.Errorf("failed to serialize content: %w", err)
	}

	var generic map[string]any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return "", fmt.Errorf("failed to canonicalize content: %w", err)
	}

	if info, ok := generic["processing_info"].(map[string]any); ok {
		delete(info, "processed_at")
	}

	canonical, err := json.Marshal(generic)
	if err != nil {
		return "", fmt.Errorf("failed to serialize canonical form: %w", err)
	}

	digest := sha256.Sum256(canonical)
	return fmt.Sprintf("%x", digest), nil
}
