package localllm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completionResponse(content string) Response {
	return Response{Choices: []Choice{{Message: ResponseMessage{Role: "assistant", Content: content}}}}
}

func TestGenerateRecipes(t *testing.T) {
	var received Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		json.NewEncoder(w).Encode(completionResponse("```json\n[{\"recipeName\":\"Shakshuka\",\"ingredients\":[\"4 eggs\",\"2 tomatoes\"],\"instructions\":[\"simmer tomatoes\",\"poach eggs in sauce\"],\"servingSize\":\"2 servings\",\"nutritionalInfo\":{\"calories\":\"300 kcal\",\"protein\":\"15g\",\"carbohydrates\":\"12g\",\"fats\":\"20g\"}}]\n```"))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	recipes, err := client.GenerateRecipes(context.Background(), []byte("fake image bytes"), "image/png")
	require.NoError(t, err)
	require.Len(t, recipes, 1)
	assert.Equal(t, "Shakshuka", recipes[0].RecipeName)
	assert.Equal(t, "300 kcal", recipes[0].NutritionalInfo.Calories)

	// The request must carry both the instruction text and the image as a
	// base64 data URL with the right MIME type.
	require.Len(t, received.Messages, 1)
	require.Len(t, received.Messages[0].Content, 2)
	assert.Equal(t, "text", received.Messages[0].Content[0].Type)
	assert.NotEmpty(t, received.Messages[0].Content[0].Text)
	require.NotNil(t, received.Messages[0].Content[1].ImageURL)
	assert.True(t, strings.HasPrefix(received.Messages[0].Content[1].ImageURL.URL, "data:image/png;base64,"))
}

func TestGenerateRecipes_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.GenerateRecipes(context.Background(), []byte("fake image bytes"), "image/jpeg")
	assert.Error(t, err)
}

func TestGenerateRecipes_NoArrayInResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(completionResponse("I could not identify any food in this image."))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.GenerateRecipes(context.Background(), []byte("fake image bytes"), "image/jpeg")
	assert.Error(t, err)
}

func TestNewClient_DefaultURL(t *testing.T) {
	client := NewClient("")
	assert.Equal(t, DefaultAPIURL, client.apiURL)
}
