package ports

import "context"

// SecretReader resolves a secret reference such as "hnglance/openai_api_key" to its value.
type SecretReader interface {
	Get(ctx context.Context, key string) (string, error)
}
