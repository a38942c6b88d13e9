package story

import (
	"errors"
	"fmt"
)

// ErrInvalidCategory is returned when a category value is outside the fixed set.
var ErrInvalidCategory = errors.New("invalid story category")

// Category is one of the fixed story categories.
type Category string

const (
	CategoryAdventure   Category = "adventure"
	CategoryFantasy     Category = "fantasy"
	CategoryEducational Category = "educational"
	CategoryFriendship  Category = "friendship"
	CategoryCourage     Category = "courage"
	CategoryAnimal      Category = "animal"
)

var categories = []Category{
	CategoryAdventure,
	CategoryFantasy,
	CategoryEducational,
	CategoryFriendship,
	CategoryCourage,
	CategoryAnimal,
}

// Categories returns the fixed categories in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// Valid reports whether c is a member of the fixed category set.
func (c Category) Valid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string {
	return string(c)
}

// ParseCategory converts a raw value into a Category. Matching is exact, the
// same way the model is instructed to answer.
func ParseCategory(raw string) (Category, error) {
	c := Category(raw)
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, raw)
	}
	return c, nil
}

// Request is the structured interpretation of a free-text story request.
type Request struct {
	UserInput  string   `json:"user_input"`
	Category   Category `json:"category"`
	Themes     []string `json:"themes"`
	Characters []string `json:"characters"`
	Setting    string   `json:"setting"`
	Tone       string   `json:"tone"`
}

// Arc is the five-part narrative skeleton of a story.
type Arc struct {
	Setup         string `json:"setup"`
	RisingAction  string `json:"rising_action"`
	Climax        string `json:"climax"`
	FallingAction string `json:"falling_action"`
	Resolution    string `json:"resolution"`
}

// Evaluation holds the rubric scores for one draft.
type Evaluation struct {
	AgeAppropriateness int     `json:"age_appropriateness"`
	StoryStructure     int     `json:"story_structure"`
	Engagement         int     `json:"engagement"`
	EducationalValue   int     `json:"educational_value"`
	OverallScore       float64 `json:"overall_score"`
	Feedback           string  `json:"feedback"`
}

// Mean returns the arithmetic mean of the four sub-scores.
func (e Evaluation) Mean() float64 {
	sum := e.AgeAppropriateness + e.StoryStructure + e.Engagement + e.EducationalValue
	return float64(sum) / 4.0
}

// Approved reports whether the overall score meets threshold.
func (e Evaluation) Approved(threshold float64) bool {
	return e.OverallScore >= threshold
}
