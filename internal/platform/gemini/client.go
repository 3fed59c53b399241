package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"fridgechef/internal/recipe"
)

// ErrEmptyResponse is returned when the model produces no usable candidate.
var ErrEmptyResponse = fmt.Errorf("empty response from Gemini")

const suggestionPrompt = "Analyze the food ingredients shown in this image and suggest up to 3 recipes that can be made with them. For each recipe include the recipe name, the ingredients with their quantities, step-by-step instructions, the serving size, and estimated nutritional information."

// recipeListSchema constrains the model output to a JSON array of recipe
// objects matching recipe.Recipe.
var recipeListSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"recipeName": {Type: genai.TypeString},
			"ingredients": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
			"instructions": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
			"servingSize": {Type: genai.TypeString},
			"nutritionalInfo": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"calories":      {Type: genai.TypeString},
					"protein":       {Type: genai.TypeString},
					"carbohydrates": {Type: genai.TypeString},
					"fats":          {Type: genai.TypeString},
				},
				Required: []string{"calories", "protein", "carbohydrates", "fats"},
			},
		},
		Required: []string{"recipeName", "ingredients", "instructions", "servingSize", "nutritionalInfo"},
	},
}

// Client is a client for the Gemini API.
type Client struct {
	model *genai.GenerativeModel
}

// NewClient creates a new Gemini client with JSON structured output enabled.
func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	model := client.GenerativeModel("gemini-1.5-flash")
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = recipeListSchema
	return &Client{model: model}, nil
}

// GenerateRecipes sends the image and the fixed instruction prompt to Gemini
// and decodes the schema-constrained response.
func (c *Client) GenerateRecipes(ctx context.Context, imageData []byte, mimeType string) ([]recipe.Recipe, error) {
	prompt := []genai.Part{
		genai.ImageData(imageFormat(mimeType), imageData),
		genai.Text(suggestionPrompt),
	}

	resp, err := c.model.GenerateContent(ctx, prompt...)
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, ErrEmptyResponse
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return nil, fmt.Errorf("unexpected response format from Gemini")
	}

	return recipe.DecodeSuggestions(string(text))
}

// imageFormat maps a MIME type to the format label the genai SDK expects.
func imageFormat(mimeType string) string {
	return strings.TrimPrefix(mimeType, "image/")
}
