package advisory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/task-tracker/internal/config"
)

func TestDisabledAdvisor(t *testing.T) {
	var adv Advisor = Disabled{}
	_, err := adv.Complete(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, "none", adv.Provider())
}

func TestNewWithoutKeyIsDisabled(t *testing.T) {
	adv := New(context.Background(), config.AdvisoryConfig{Model: "gemini-2.0-flash"}, zap.NewNop())
	assert.IsType(t, Disabled{}, adv)
}

func TestNewGeminiAdvisorValidatesConfig(t *testing.T) {
	_, err := NewGeminiAdvisor(context.Background(), config.AdvisoryConfig{Model: "gemini-2.0-flash"}, zap.NewNop())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = NewGeminiAdvisor(context.Background(), config.AdvisoryConfig{GeminiAPIKey: "k"}, zap.NewNop())
	require.Error(t, err)
}
