package service

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/task-tracker/internal/advisory"
	"github.com/spec-kit/task-tracker/internal/domain"
)

const (
	maxTitleRunes      = 50
	suggestionContext  = 10
	maxSuggestions     = 3
	fallbackInsight    = "Keep up the great work! Focus on completing high-priority tasks first to maximize productivity."
	suggestionsInsight = "Based on your task patterns, here are some suggestions to help you stay organized."
)

// listMarker matches a leading bullet or "1." / "1)" enumerator.
var listMarker = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s+`)

// ParsedTask is a task draft extracted from free text.
type ParsedTask struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Priority    domain.TaskPriority `json:"priority"`
}

// Suggestions bundles follow-up task ideas with a short insight.
type Suggestions struct {
	Titles  []string `json:"suggestions"`
	Insight string   `json:"insight"`
}

// AdvisoryStatus describes the configured provider.
type AdvisoryStatus struct {
	Available bool   `json:"available"`
	Provider  string `json:"provider"`
	Model     string `json:"model"`
}

// AdvisoryService wraps the AI collaborator. Provider failures are logged and
// replaced by fixed fallbacks; only storage failures reach the caller.
type AdvisoryService struct {
	advisor advisory.Advisor
	tasks   *TaskService
	timeout time.Duration
	logger  *zap.Logger
}

// NewAdvisoryService constructs the service.
func NewAdvisoryService(advisor advisory.Advisor, tasks *TaskService, timeout time.Duration, logger *zap.Logger) *AdvisoryService {
	if advisor == nil {
		advisor = advisory.Disabled{}
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdvisoryService{advisor: advisor, tasks: tasks, timeout: timeout, logger: logger.Named("advisory")}
}

// ParseTask turns free text into a task draft.
func (s *AdvisoryService) ParseTask(ctx context.Context, text string) ParsedTask {
	text = strings.TrimSpace(text)
	fallback := ParsedTask{Title: truncateRunes(text, maxTitleRunes), Description: text, Priority: domain.TaskPriorityMedium}

	prompt := fmt.Sprintf(`Parse the following task description into a structured format.
Input: %q

Extract:
- title: Short task title (max 50 characters)
- description: Detailed description
- priority: LOW, MEDIUM, or HIGH based on urgency keywords

Return ONLY valid JSON in this format:
{"title": "...", "description": "...", "priority": "MEDIUM"}

If no clear priority is indicated, default to MEDIUM.`, text)

	raw, ok := s.complete(ctx, "parse_task", prompt)
	if !ok {
		return fallback
	}

	var parsed struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Priority    string `json:"priority"`
	}
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &parsed); err != nil || strings.TrimSpace(parsed.Title) == "" {
		s.logger.Warn("unusable parse_task response", zap.Error(err))
		return fallback
	}

	out := ParsedTask{
		Title:       truncateRunes(strings.TrimSpace(parsed.Title), maxTitleRunes),
		Description: strings.TrimSpace(parsed.Description),
		Priority:    domain.TaskPriorityMedium,
	}
	if p, err := domain.ParseTaskPriority(parsed.Priority); err == nil {
		out.Priority = p
	}
	if out.Description == "" {
		out.Description = text
	}
	return out
}

// RecommendPriority suggests a priority for a task, MEDIUM when unsure.
func (s *AdvisoryService) RecommendPriority(ctx context.Context, title, description string) domain.TaskPriority {
	prompt := fmt.Sprintf(`Analyze this task and recommend a priority level.
Title: %q
Description: %q

Consider:
- Urgency keywords (urgent, ASAP, critical, important)
- Time sensitivity (today, tomorrow, deadline)
- Exclamation marks or strong language

Respond with ONLY one word: LOW, MEDIUM, or HIGH`, title, description)

	raw, ok := s.complete(ctx, "recommend_priority", prompt)
	if !ok {
		return domain.TaskPriorityMedium
	}
	p, err := domain.ParseTaskPriority(strings.Trim(raw, " .\n\t\"'"))
	if err != nil {
		return domain.TaskPriorityMedium
	}
	return p
}

// Suggestions proposes follow-up tasks from the principal's most recent tasks.
func (s *AdvisoryService) Suggestions(ctx context.Context, principal *domain.Principal) (*Suggestions, error) {
	recent, err := s.tasks.Recent(ctx, principal, suggestionContext)
	if err != nil {
		return nil, err
	}
	out := &Suggestions{Titles: []string{}, Insight: suggestionsInsight}
	if len(recent) == 0 {
		return out, nil
	}

	var sb strings.Builder
	for _, task := range recent {
		fmt.Fprintf(&sb, "- %s (Status: %s)\n", task.Title, task.Status)
	}
	prompt := fmt.Sprintf(`Based on these recent tasks:
%s
Suggest 3 related or follow-up tasks the user might want to add.
Consider:
- Task patterns and themes
- Logical next steps
- Commonly associated tasks

Return ONLY 3 task titles, one per line, without numbers or bullets.`, sb.String())

	if raw, ok := s.complete(ctx, "suggestions", prompt); ok {
		out.Titles = suggestionLines(raw, maxSuggestions)
	}

	stats, err := s.tasks.GetStats(ctx, principal)
	if err != nil {
		return nil, err
	}
	if insight, ok := s.insight(ctx, recent, stats.AverageCompletionTimeHours); ok {
		out.Insight = insight
	}
	return out, nil
}

// ProductivityInsight summarizes the principal's completion patterns in a few sentences.
func (s *AdvisoryService) ProductivityInsight(ctx context.Context, principal *domain.Principal) (string, error) {
	tasks, err := s.tasks.ListAll(ctx, principal)
	if err != nil {
		return "", err
	}
	stats, err := s.tasks.GetStats(ctx, principal)
	if err != nil {
		return "", err
	}
	if insight, ok := s.insight(ctx, tasks, stats.AverageCompletionTimeHours); ok {
		return insight, nil
	}
	return fallbackInsight, nil
}

// Status probes the provider with a trivial prompt.
func (s *AdvisoryService) Status(ctx context.Context) AdvisoryStatus {
	_, ok := s.complete(ctx, "status", "Reply with OK.")
	return AdvisoryStatus{Available: ok, Provider: s.advisor.Provider(), Model: s.advisor.Model()}
}

func (s *AdvisoryService) insight(ctx context.Context, tasks []domain.Task, avgHours float64) (string, bool) {
	var completed, high int
	for _, task := range tasks {
		if task.Status.IsTerminal() {
			completed++
		}
		if task.Priority == domain.TaskPriorityHigh {
			high++
		}
	}
	prompt := fmt.Sprintf(`Analyze this task management data and provide a brief productivity insight.

Stats:
- Total tasks: %d
- Completed tasks: %d
- High priority tasks: %d
- Average completion time: %.1f hours

Provide a friendly, encouraging insight (2-3 sentences) about their productivity.
Focus on patterns, suggestions for improvement, or positive reinforcement.`, len(tasks), completed, high, avgHours)

	return s.complete(ctx, "insight", prompt)
}

// complete calls the advisor with a bounded deadline and reports whether a usable answer came back.
func (s *AdvisoryService) complete(ctx context.Context, op, prompt string) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.advisor.Complete(ctx, prompt)
	if err != nil {
		s.logger.Warn("advisory call failed; using fallback", zap.String("op", op), zap.Error(err))
		return "", false
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	return raw, true
}

func stripCodeFence(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "```") {
		return raw
	}
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimPrefix(raw, "json")
	raw = strings.TrimSuffix(strings.TrimSpace(raw), "```")
	return strings.TrimSpace(raw)
}

func suggestionLines(raw string, limit int) []string {
	out := make([]string, 0, limit)
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(listMarker.ReplaceAllString(line, ""))
		if line == "" {
			continue
		}
		out = append(out, line)
		if len(out) == limit {
			break
		}
	}
	return out
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
