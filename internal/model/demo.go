package model

// DemoTheme is one recurring theme found in demo input.
type DemoTheme struct {
	Theme           string   `json:"theme"`
	Confidence      float64  `json:"confidence"`
	Evidence        []string `json:"evidence"`
	RelatedConcepts []string `json:"relatedConcepts"`
}

// DemoActionItem is a concrete task suggested by the demo analyzer.
type DemoActionItem struct {
	ID                string `json:"id"`
	Task              string `json:"task"`
	Priority          string `json:"priority"`
	Category          string `json:"category"`
	EstimatedDuration string `json:"estimatedDuration"`
	SuggestedTime     string `json:"suggestedTime"`
	Completed         bool   `json:"completed"`
}

type TwitterDraft struct {
	Content  string   `json:"content"`
	Hashtags []string `json:"hashtags"`
}

type LinkedInDraft struct {
	Content  string `json:"content"`
	PostType string `json:"post_type"`
}

type InstagramDraft struct {
	Content string `json:"content"`
	Style   string `json:"style"`
}

// ContentSuggestions holds per-network post drafts; absent networks are omitted.
type ContentSuggestions struct {
	Twitter   *TwitterDraft   `json:"twitter,omitempty"`
	LinkedIn  *LinkedInDraft  `json:"linkedin,omitempty"`
	Instagram *InstagramDraft `json:"instagram,omitempty"`
}

type ResearchSuggestion struct {
	Topic     string   `json:"topic"`
	Sources   []string `json:"sources"`
	Relevance float64  `json:"relevance"`
}

// CalendarBlock suggests a focused time block; Duration is in minutes.
type CalendarBlock struct {
	Title          string   `json:"title"`
	Duration       int      `json:"duration"`
	Priority       string   `json:"priority"`
	SuggestedTimes []string `json:"suggestedTimes"`
}

type DemoInsights struct {
	KeyThemes           []DemoTheme          `json:"keyThemes"`
	ActionItems         []DemoActionItem     `json:"actionItems"`
	ContentSuggestions  ContentSuggestions   `json:"contentSuggestions"`
	ResearchSuggestions []ResearchSuggestion `json:"researchSuggestions"`
	CalendarBlocks      []CalendarBlock      `json:"calendarBlocks"`
}

type DemoMetadata struct {
	WordCount  int      `json:"wordCount"`
	Sentiment  string   `json:"sentiment"`
	Complexity string   `json:"complexity"`
	Topics     []string `json:"topics"`
}

// DemoAnalysis is the ephemeral result of a demo run. It is never persisted.
type DemoAnalysis struct {
	ID             string       `json:"id"`
	ProcessingTime float64      `json:"processingTime"`
	Insights       DemoInsights `json:"insights"`
	Metadata       DemoMetadata `json:"metadata"`
}
