package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/task-tracker/internal/advisory"
	"github.com/spec-kit/task-tracker/internal/domain"
)

type scriptedAdvisor struct {
	reply   string
	err     error
	prompts []string
	block   bool
}

func (a *scriptedAdvisor) Complete(ctx context.Context, prompt string) (string, error) {
	a.prompts = append(a.prompts, prompt)
	if a.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return a.reply, a.err
}

func (a *scriptedAdvisor) Provider() string { return "scripted" }
func (a *scriptedAdvisor) Model() string    { return "test-model" }

func newAdvisoryService(t *testing.T, adv advisory.Advisor) (*AdvisoryService, *fixture) {
	t.Helper()
	f := newFixture(t)
	return NewAdvisoryService(adv, f.svc, 50*time.Millisecond, zap.NewNop()), f
}

func TestParseTaskUsesProviderJSON(t *testing.T) {
	adv := &scriptedAdvisor{reply: "```json\n{\"title\": \"Buy groceries\", \"description\": \"Milk and eggs\", \"priority\": \"high\"}\n```"}
	svc, _ := newAdvisoryService(t, adv)

	got := svc.ParseTask(context.Background(), "buy groceries tomorrow, milk and eggs!")
	assert.Equal(t, ParsedTask{Title: "Buy groceries", Description: "Milk and eggs", Priority: domain.TaskPriorityHigh}, got)
	require.Len(t, adv.prompts, 1)
	assert.Contains(t, adv.prompts[0], "buy groceries tomorrow")
}

func TestParseTaskFallbacks(t *testing.T) {
	long := strings.Repeat("é", 60)

	tests := []struct {
		name string
		adv  advisory.Advisor
	}{
		{name: "disabled", adv: advisory.Disabled{}},
		{name: "provider error", adv: &scriptedAdvisor{err: errors.New("quota exceeded")}},
		{name: "not json", adv: &scriptedAdvisor{reply: "Sure! Here is your task."}},
		{name: "timeout", adv: &scriptedAdvisor{block: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newAdvisoryService(t, tt.adv)
			got := svc.ParseTask(context.Background(), long)
			assert.Equal(t, strings.Repeat("é", 50), got.Title)
			assert.Equal(t, long, got.Description)
			assert.Equal(t, domain.TaskPriorityMedium, got.Priority)
		})
	}
}

func TestRecommendPriority(t *testing.T) {
	tests := []struct {
		reply string
		err   error
		want  domain.TaskPriority
	}{
		{reply: "HIGH", want: domain.TaskPriorityHigh},
		{reply: " low.\n", want: domain.TaskPriorityLow},
		{reply: "It depends", want: domain.TaskPriorityMedium},
		{err: errors.New("down"), want: domain.TaskPriorityMedium},
	}
	for _, tt := range tests {
		svc, _ := newAdvisoryService(t, &scriptedAdvisor{reply: tt.reply, err: tt.err})
		assert.Equal(t, tt.want, svc.RecommendPriority(context.Background(), "Fix prod", "ASAP"), tt.reply)
	}
}

func TestSuggestions(t *testing.T) {
	adv := &scriptedAdvisor{reply: "1. Write release notes\n- Tag the release\n\nAnnounce it\nExtra line"}
	svc, f := newAdvisoryService(t, adv)
	ctx := context.Background()

	empty, err := svc.Suggestions(ctx, f.alice)
	require.NoError(t, err)
	assert.Empty(t, empty.Titles)
	assert.Equal(t, suggestionsInsight, empty.Insight)
	assert.Empty(t, adv.prompts)

	f.create(t, f.alice, "Ship v1", domain.TaskStatusDone, domain.TaskPriorityHigh)

	got, err := svc.Suggestions(ctx, f.alice)
	require.NoError(t, err)
	assert.Equal(t, []string{"Write release notes", "Tag the release", "Announce it"}, got.Titles)
	require.NotEmpty(t, adv.prompts)
	assert.Contains(t, adv.prompts[0], "- Ship v1 (Status: DONE)")
}

func TestSuggestionLinesStripOnlyListMarkers(t *testing.T) {
	raw := "1. Write notes\n2) Review PR\n- Tag it\n* Ping QA\n• Merge\n3D-print bracket\n10 minute standup\n-5 degree test"
	assert.Equal(t, []string{
		"Write notes",
		"Review PR",
		"Tag it",
		"Ping QA",
		"Merge",
		"3D-print bracket",
		"10 minute standup",
		"-5 degree test",
	}, suggestionLines(raw, 10))

	assert.Equal(t, []string{"3D-print bracket"}, suggestionLines("  3D-print bracket  \n\n", 3))
}

func TestSuggestionsFallbackWhenProviderFails(t *testing.T) {
	svc, f := newAdvisoryService(t, &scriptedAdvisor{err: errors.New("boom")})
	f.create(t, f.alice, "Ship v1", "", "")

	got, err := svc.Suggestions(context.Background(), f.alice)
	require.NoError(t, err)
	assert.Empty(t, got.Titles)
	assert.Equal(t, suggestionsInsight, got.Insight)
}

func TestProductivityInsight(t *testing.T) {
	svc, f := newAdvisoryService(t, advisory.Disabled{})
	insight, err := svc.ProductivityInsight(context.Background(), f.alice)
	require.NoError(t, err)
	assert.Equal(t, fallbackInsight, insight)

	svc, f = newAdvisoryService(t, &scriptedAdvisor{reply: "You finish tasks quickly."})
	insight, err = svc.ProductivityInsight(context.Background(), f.alice)
	require.NoError(t, err)
	assert.Equal(t, "You finish tasks quickly.", insight)
}

func TestAdvisoryStatus(t *testing.T) {
	svc, _ := newAdvisoryService(t, advisory.Disabled{})
	st := svc.Status(context.Background())
	assert.False(t, st.Available)
	assert.Equal(t, "none", st.Provider)

	svc, _ = newAdvisoryService(t, &scriptedAdvisor{reply: "OK"})
	st = svc.Status(context.Background())
	assert.True(t, st.Available)
	assert.Equal(t, "test-model", st.Model)
}
