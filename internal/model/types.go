package model

import (
	"errors"
	"time"
)

// Sentinel errors shared by stores and services. Callers match with errors.Is.
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
)

const (
	// MaxBoardSize is the largest number of personas a board may hold.
	MaxBoardSize = 8
	// HistoryLimit is the number of synthesis history entries retained per user.
	HistoryLimit = 20
	// CustomIDPrefix marks user-authored persona ids.
	CustomIDPrefix = "custom-"
)

// Tier ranks a persona card.
type Tier string

const (
	TierLegendary Tier = "legendary"
	TierElite     Tier = "elite"
	TierExpert    Tier = "expert"
	TierInsider   Tier = "insider"
)

// Tiers lists every tier from highest to lowest.
var Tiers = []Tier{TierLegendary, TierElite, TierExpert, TierInsider}

// Valid reports whether t is one of the known tiers.
func (t Tier) Valid() bool {
	for _, v := range Tiers {
		if t == v {
			return true
		}
	}
	return false
}

// Persona is a named advisor whose voice text conditions oracle prompts.
type Persona struct {
	ID        string     `json:"id" yaml:"id"`
	Name      string     `json:"name" yaml:"name"`
	Role      string     `json:"role" yaml:"role"`
	Avatar    string     `json:"avatar" yaml:"avatar"`
	Voice     string     `json:"voice" yaml:"voice"`
	Category  string     `json:"category" yaml:"category"`
	Tier      Tier       `json:"tier" yaml:"tier"`
	IsCustom  bool       `json:"isCustom,omitempty" yaml:"-"`
	UserID    string     `json:"-" yaml:"-"`
	CreatedAt *time.Time `json:"createdAt,omitempty" yaml:"-"`
}

// PersonaDraft is the user-supplied part of a custom persona.
type PersonaDraft struct {
	Name     string `json:"name"`
	Role     string `json:"role"`
	Avatar   string `json:"avatar"`
	Voice    string `json:"voice"`
	Category string `json:"category"`
}

// AdvisorInsight is one persona's answer inside a synthesis result.
type AdvisorInsight struct {
	Name    string `json:"name"`
	Avatar  string `json:"avatar"`
	Tier    Tier   `json:"tier"`
	Insight string `json:"insight"`
}

// SynthesisResult is the combined multi-persona answer.
type SynthesisResult struct {
	Advisors        []AdvisorInsight `json:"advisors"`
	CombinedSummary string           `json:"combinedSummary"`
	KeyThemes       []string         `json:"keyThemes"`
	ActionPlan      []string         `json:"actionPlan"`
	Timestamp       time.Time        `json:"timestamp"`
	ProcessingTime  float64          `json:"processingTime"`
}

// HistoryEntry is a persisted synthesis for one user.
type HistoryEntry struct {
	ID         string           `json:"id"`
	UserID     string           `json:"userId"`
	InputText  string           `json:"inputText"`
	AdvisorIDs []string         `json:"advisorIds"`
	Results    *SynthesisResult `json:"results"`
	CreatedAt  time.Time        `json:"createdAt"`
}

// BoardTemplate is a public, shareable persona board.
type BoardTemplate struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	AdvisorIDs  []string `json:"advisorIds" yaml:"advisorIds"`
	Category    string   `json:"category" yaml:"category"`
	UsageCount  int      `json:"usageCount" yaml:"-"`
	IsPublic    bool     `json:"-" yaml:"-"`
}

// BoardState is everything needed to hydrate a board session.
type BoardState struct {
	Selection      []Persona      `json:"selection"`
	CustomPersonas []Persona      `json:"customPersonas"`
	History        []HistoryEntry `json:"history"`
}
