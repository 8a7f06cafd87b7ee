package services

import (
	"strings"

	"enterprise-knowledge-platform/models"
)

// classificationRule pairs a keyword set with the category it selects.
type classificationRule struct {
	keywords []string
	category models.Category
}

// Classifier assigns a category tag to segment text by case-insensitive
// keyword matching over an ordered rule list, first match wins. Segments
// matching no rule fall back to General_Info. Classification is pure and
// deterministic.
type Classifier struct {
	rules    []classificationRule
	fallback models.Category
}

// NewClassifier returns the classifier with the default rule order: HR
// keywords are checked before technical keywords.
func NewClassifier() *Classifier {
	return &Classifier{
		rules: []classificationRule{
			{keywords: []string{"salary", "leave", "benefits"}, category: models.CategoryHRPolicy},
			{keywords: []string{"api", "python", "deploy"}, category: models.CategoryTechnicalDocs},
		},
		fallback: models.CategoryGeneralInfo,
	}
}

// Classify returns the category for the given text.
func (c *Classifier) Classify(text string) models.Category {
	lower := strings.ToLower(text)
	for _, rule := range c.rules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lower, keyword) {
				return rule.category
			}
		}
	}
	return c.fallback
}

// Annotate attaches category and word count to every segment in place.
func (c *Classifier) Annotate(segments []models.Segment) {
	for i := range segments {
		segments[i].Category = c.Classify(segments[i].Text)
		segments[i].WordCount = WordCount(segments[i].Text)
	}
}

// WordCount counts whitespace-delimited tokens.
func WordCount(text string) int {
	return len(strings.Fields(text))
}
