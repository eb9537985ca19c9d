package services

import (
	"fmt"
	"strings"

	"github.com/ronnydonkey/scatterbrain-ai/internal/model"
)

func personaSystemPrompt(p model.Persona) string {
	return fmt.Sprintf("You are an expert at embodying the mindset and voice of %s. "+
		"Respond exactly as they would, with their specific terminology, priorities, and perspective.", p.Name)
}

func personaPrompt(p model.Persona, input string) string {
	return fmt.Sprintf(`You are %[1]s, %[2]s.

Your core beliefs, thinking style, and approach: %[3]s

A user is asking for advice on: "%[4]s"

Respond as %[1]s would, drawing on your specific perspective, expertise, and unique viewpoint. Give actionable advice that reflects your philosophy. Keep the response to 2-3 sentences in the first person.

Response as %[1]s:`, p.Name, p.Role, p.Voice, input)
}

const summarySystemPrompt = "You are an expert at synthesizing multiple perspectives into coherent, " +
	"action-oriented advice. Always respond with valid JSON only."

func summaryPrompt(input string, insights []model.AdvisorInsight) string {
	parts := make([]string, 0, len(insights))
	for _, a := range insights {
		parts = append(parts, a.Name+": "+a.Insight)
	}
	return fmt.Sprintf(`Based on these advisor perspectives on "%s":

%s

Provide a JSON response with:
1. A cohesive 2-3 sentence summary that synthesizes the key recommendations
2. 3-5 key themes that emerge across the advice
3. 5-7 specific action items for implementation

Format as JSON:
{
  "summary": "Cohesive synthesis of the advice...",
  "themes": ["Theme 1", "Theme 2", "Theme 3"],
  "actionPlan": ["Action 1", "Action 2", "Action 3", "Action 4", "Action 5"]
}`, input, strings.Join(parts, "\n\n"))
}

// fallbackInsight is the canned answer used when a persona's oracle call fails.
func fallbackInsight(p model.Persona) string {
	focus := strings.ToLower(strings.TrimSpace(strings.SplitN(p.Voice, ",", 2)[0]))
	if focus == "" {
		focus = "first principles"
	}
	return fmt.Sprintf("As %s, I'd approach this challenge by focusing on %s. "+
		"This situation requires strategic thinking and decisive action based on core principles.", p.Name, focus)
}

const demoSystemPrompt = "You are an expert at analyzing thoughts and creating compelling, actionable insights " +
	"that showcase the power of AI analysis. Always respond with valid JSON only."

func demoPrompt(input string) string {
	return fmt.Sprintf(`Analyze this thought and extract insights in the following JSON format.
Make the insights compelling and actionable.

{
  "keyThemes": [
    {
      "theme": "clear, powerful theme name",
      "confidence": 0.85-0.95,
      "evidence": ["specific keywords from input"],
      "relatedConcepts": ["relevant concepts"]
    }
  ],
  "actionItems": [
    {
      "task": "specific, actionable task that feels immediately valuable",
      "priority": "high|medium",
      "category": "planning|creative|research|communication",
      "estimatedDuration": "15-60 minutes",
      "suggestedTime": "morning|afternoon|evening"
    }
  ],
  "contentSuggestions": {
    "twitter": {
      "content": "engaging tweet content",
      "hashtags": ["#relevant", "#hashtags"]
    },
    "linkedin": {
      "content": "professional LinkedIn post that gets engagement",
      "post_type": "insight_sharing"
    },
    "instagram": {
      "content": "visual-friendly caption that drives action",
      "style": "motivational"
    }
  },
  "researchSuggestions": [
    {
      "topic": "specific research topic",
      "sources": ["credible sources"],
      "relevance": 0.8-0.95
    }
  ],
  "calendarBlocks": [
    {
      "title": "calendar event title",
      "duration": 30-120,
      "priority": "high|medium",
      "suggestedTimes": ["specific time suggestions"]
    }
  ],
  "metadata": {
    "sentiment": "optimistic|determined|focused|ambitious",
    "complexity": "medium|complex",
    "topics": ["main topics identified"]
  }
}

Input to analyze: "%s"

Focus on insights that feel uncannily accurate and actions that feel immediately valuable.

Return only valid JSON, no explanations.`, input)
}
