package recipe

import (
	"encoding/json"
	"fmt"
	"strings"
)

// MaxSuggestions caps how many recipes a single generation may return.
const MaxSuggestions = 3

// ErrInvalidSuggestion is returned when a decoded recipe is missing mandatory fields.
var ErrInvalidSuggestion = fmt.Errorf("recipe suggestion is missing required fields")

// NutritionalInfo holds estimated nutrition figures. All four fields are
// required together whenever the block is present.
type NutritionalInfo struct {
	Calories      string `json:"calories"`
	Protein       string `json:"protein"`
	Carbohydrates string `json:"carbohydrates"`
	Fats          string `json:"fats"`
}

// Recipe represents a single generated recipe suggestion. RecipeName is the
// dedup key inside the saved store; it is not unique within one result set.
type Recipe struct {
	RecipeName      string           `json:"recipeName"`
	Ingredients     []string         `json:"ingredients"`
	Instructions    []string         `json:"instructions"`
	ServingSize     string           `json:"servingSize,omitempty"`
	NutritionalInfo *NutritionalInfo `json:"nutritionalInfo,omitempty"`
}

// Validate checks the mandatory-field schema rather than trusting the
// provider's structured-output contract.
func (r *Recipe) Validate() error {
	if strings.TrimSpace(r.RecipeName) == "" {
		return fmt.Errorf("%w: recipeName is empty", ErrInvalidSuggestion)
	}
	if len(r.Ingredients) == 0 {
		return fmt.Errorf("%w: %q has no ingredients", ErrInvalidSuggestion, r.RecipeName)
	}
	if len(r.Instructions) == 0 {
		return fmt.Errorf("%w: %q has no instructions", ErrInvalidSuggestion, r.RecipeName)
	}
	if n := r.NutritionalInfo; n != nil {
		if n.Calories == "" || n.Protein == "" || n.Carbohydrates == "" || n.Fats == "" {
			return fmt.Errorf("%w: %q has a partial nutritionalInfo block", ErrInvalidSuggestion, r.RecipeName)
		}
	}
	return nil
}

// DecodeSuggestions parses a JSON array of recipes from model output text,
// validates each entry and caps the result at MaxSuggestions.
func DecodeSuggestions(raw string) ([]Recipe, error) {
	var recipes []Recipe
	if err := json.Unmarshal([]byte(raw), &recipes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recipe suggestions: %w", err)
	}

	for i := range recipes {
		if err := recipes[i].Validate(); err != nil {
			return nil, err
		}
	}

	if len(recipes) > MaxSuggestions {
		recipes = recipes[:MaxSuggestions]
	}

	return recipes, nil
}
