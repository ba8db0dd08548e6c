package dto

// ParseTaskRequest carries free text to turn into a task draft.
type ParseTaskRequest struct {
	Text string `json:"text" validate:"required,max=2000"`
}

// RecommendPriorityQuery is bound from the query string.
type RecommendPriorityQuery struct {
	Title       string `query:"title" validate:"required,max=200"`
	Description string `query:"description" validate:"max=2000"`
}

// PriorityRecommendation response.
type PriorityRecommendation struct {
	Priority string `json:"priority"`
}

// InsightResponse response.
type InsightResponse struct {
	Insight string `json:"insight"`
}
