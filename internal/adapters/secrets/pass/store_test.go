package pass

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReaderGetUsesPassShowAndKeepsFirstLine(t *testing.T) {
	t.Parallel()

	reader := &Reader{
		run: func(ctx context.Context, args ...string) (string, string, error) {
			assert.Equal(t, []string{"show", "hnglance/openai_api_key"}, args)
			return "sk-secret\nurl: https://platform.openai.com\n", "", nil
		},
	}

	value, err := reader.Get(context.Background(), "hnglance/openai_api_key")
	require.NoError(t, err)
	assert.Equal(t, "sk-secret", value)
}

func TestReaderGetReturnsClearError(t *testing.T) {
	t.Parallel()

	reader := &Reader{
		run: func(context.Context, ...string) (string, string, error) {
			return "", "Error: hnglance/gemini_api_key is not in the password store.", errors.New("exit status 1")
		},
	}

	_, err := reader.Get(context.Background(), "hnglance/gemini_api_key")
	require.Error(t, err)
	assert.ErrorContains(t, err, "pass get")
	assert.ErrorContains(t, err, "hnglance/gemini_api_key")
	assert.ErrorContains(t, err, "not in the password store")
}

func TestReaderGetRejectsEmptyEntry(t *testing.T) {
	t.Parallel()

	reader := &Reader{
		run: func(context.Context, ...string) (string, string, error) {
			return "\n", "", nil
		},
	}

	_, err := reader.Get(context.Background(), "hnglance/openai_api_key")
	assert.ErrorContains(t, err, "entry is empty")
}

func TestReaderGetHonorsCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reader := &Reader{
		run: func(context.Context, ...string) (string, string, error) {
			t.Fatal("pass must not run after cancellation")
			return "", "", nil
		},
	}

	_, err := reader.Get(ctx, "hnglance/openai_api_key")
	assert.ErrorIs(t, err, context.Canceled)
}
