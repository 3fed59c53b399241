package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSuggestions(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantLen int
		wantErr error
	}{
		{
			name: "two valid recipes",
			raw: `[
				{"recipeName":"Tomato Soup","ingredients":["2 tomatoes","salt"],"instructions":["boil","blend"],"servingSize":"2 servings","nutritionalInfo":{"calories":"120 kcal","protein":"3g","carbohydrates":"15g","fats":"4g"}},
				{"recipeName":"Bruschetta","ingredients":["1 baguette","2 tomatoes"],"instructions":["toast bread","top with tomatoes"]}
			]`,
			wantLen: 2,
		},
		{
			name:    "empty array",
			raw:     `[]`,
			wantLen: 0,
		},
		{
			name:    "missing recipe name",
			raw:     `[{"ingredients":["rice"],"instructions":["cook"]}]`,
			wantErr: ErrInvalidSuggestion,
		},
		{
			name:    "missing ingredients",
			raw:     `[{"recipeName":"Plain Rice","instructions":["cook"]}]`,
			wantErr: ErrInvalidSuggestion,
		},
		{
			name:    "missing instructions",
			raw:     `[{"recipeName":"Plain Rice","ingredients":["rice"]}]`,
			wantErr: ErrInvalidSuggestion,
		},
		{
			name:    "partial nutrition block",
			raw:     `[{"recipeName":"Plain Rice","ingredients":["rice"],"instructions":["cook"],"nutritionalInfo":{"calories":"200 kcal"}}]`,
			wantErr: ErrInvalidSuggestion,
		},
		{
			name: "more than three recipes is capped",
			raw: `[
				{"recipeName":"A","ingredients":["x"],"instructions":["y"]},
				{"recipeName":"B","ingredients":["x"],"instructions":["y"]},
				{"recipeName":"C","ingredients":["x"],"instructions":["y"]},
				{"recipeName":"D","ingredients":["x"],"instructions":["y"]}
			]`,
			wantLen: MaxSuggestions,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recipes, err := DecodeSuggestions(tt.raw)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, recipes, tt.wantLen)
		})
	}
}

func TestDecodeSuggestions_MalformedJSON(t *testing.T) {
	_, err := DecodeSuggestions("suggest up to 3 recipes: sorry, I cannot do that")
	assert.Error(t, err)
}

func TestRecipeValidate_FullNutrition(t *testing.T) {
	r := Recipe{
		RecipeName:   "Lentil Curry",
		Ingredients:  []string{"1 cup lentils", "1 onion"},
		Instructions: []string{"saute onion", "simmer lentils"},
		ServingSize:  "4 servings",
		NutritionalInfo: &NutritionalInfo{
			Calories:      "320 kcal",
			Protein:       "18g",
			Carbohydrates: "45g",
			Fats:          "6g",
		},
	}
	assert.NoError(t, r.Validate())
}
