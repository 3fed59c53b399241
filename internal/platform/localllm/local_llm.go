package localllm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"fridgechef/internal/recipe"
)

// DefaultAPIURL is the endpoint of a locally hosted OpenAI-compatible server.
const DefaultAPIURL = "http://localhost:1234/v1/chat/completions"

const suggestionPrompt = "Analyze the food ingredients shown in this image and suggest up to 3 recipes that can be made with them. For each recipe include the recipe name, the ingredients with their quantities, step-by-step instructions, the serving size, and estimated nutritional information (calories, protein, carbohydrates, fats). Return only a JSON array of objects with the keys 'recipeName' (string), 'ingredients' (array of strings), 'instructions' (array of strings), 'servingSize' (string), and 'nutritionalInfo' (object with 'calories', 'protein', 'carbohydrates', 'fats' as strings). Do not include any markdown formatting."

// Client represents a client for the local LLM.
type Client struct {
	httpClient *http.Client
	apiURL     string
}

// NewClient creates a new client for the local LLM. An empty apiURL falls
// back to DefaultAPIURL.
func NewClient(apiURL string) *Client {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	return &Client{
		httpClient: &http.Client{},
		apiURL:     apiURL,
	}
}

// Request represents the request body for the local LLM.
type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

// Message represents a message in the request.
type Message struct {
	Role    string    `json:"role"`
	Content []Content `json:"content"`
}

// Content represents the content of a message.
type Content struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// ImageURL represents the image URL in the content.
type ImageURL struct {
	URL string `json:"url"`
}

// Response represents the response from the local LLM.
type Response struct {
	Choices []Choice `json:"choices"`
}

// Choice represents a choice in the response.
type Choice struct {
	Message ResponseMessage `json:"message"`
}

// ResponseMessage represents a message in the response.
type ResponseMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// generateContent sends one multimodal chat-completion request and returns
// the raw response text.
func (c *Client) generateContent(ctx context.Context, text, mimeType string, imageData []byte) (string, error) {
	encodedImage := base64.StdEncoding.EncodeToString(imageData)
	reqBody := Request{
		Model: "gemma-3-12b-it:2",
		Messages: []Message{
			{
				Role: "user",
				Content: []Content{
					{
						Type: "text",
						Text: text,
					},
					{
						Type: "image_url",
						ImageURL: &ImageURL{
							URL: "data:" + mimeType + ";base64," + encodedImage,
						},
					},
				},
			},
		},
		Temperature: 1,
		MaxTokens:   2048,
	}

	reqBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewBuffer(reqBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("received non-OK status code: %d", resp.StatusCode)
	}

	var llmResp Response
	if err := json.NewDecoder(resp.Body).Decode(&llmResp); err != nil {
		return "", fmt.Errorf("failed to decode response body: %w", err)
	}

	if len(llmResp.Choices) == 0 {
		return "", fmt.Errorf("no content found in response")
	}

	return llmResp.Choices[0].Message.Content, nil
}

// GenerateRecipes asks the local LLM for recipe suggestions from an image.
// The local model is not schema-constrained, so the JSON array is extracted
// from whatever surrounds it before decoding.
func (c *Client) GenerateRecipes(ctx context.Context, imageData []byte, mimeType string) ([]recipe.Recipe, error) {
	responseText, err := c.generateContent(ctx, suggestionPrompt, mimeType, imageData)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	cleaned := strings.TrimPrefix(strings.TrimSpace(responseText), "```json")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	startIndex := strings.Index(cleaned, "[")
	endIndex := strings.LastIndex(cleaned, "]")
	if startIndex == -1 || endIndex == -1 || startIndex > endIndex {
		return nil, fmt.Errorf("could not find JSON array in response: %s", responseText)
	}

	return recipe.DecodeSuggestions(cleaned[startIndex : endIndex+1])
}
