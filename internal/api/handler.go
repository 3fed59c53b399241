package api

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nfnt/resize"

	"fridgechef/internal/recipe"
)

// User-visible messages. Generation failures are collapsed into one generic
// message regardless of cause; the cause is logged.
const (
	msgNoImage          = "No image selected. Please choose a photo of your ingredients first."
	msgGenerationFailed = "Failed to generate recipes. Please try again."
	msgGenerationBusy   = "A generation is already in progress."
	msgInvalidFileType  = "Invalid file type. Only JPEG, JPG, and PNG images are allowed."
	msgInvalidRecipe    = "Recipe is missing required fields."
)

// RecipeGenerator defines the interface for a recipe inference provider.
type RecipeGenerator interface {
	GenerateRecipes(ctx context.Context, imageData []byte, mimeType string) ([]recipe.Recipe, error)
}

// SavedRecipeStore defines the interface for the persisted saved-recipe list.
type SavedRecipeStore interface {
	Save(ctx context.Context, r recipe.Recipe) error
	Delete(ctx context.Context, index int) error
	List() []recipe.Recipe
	Contains(name string) bool
	Len() int
}

// Handler handles HTTP requests for the single-screen assistant.
type Handler struct {
	GeminiClient   RecipeGenerator
	LocalLLMClient RecipeGenerator
	RecipeStore    SavedRecipeStore

	mu    sync.Mutex
	state viewState
}

// NewHandler creates a new Handler.
func NewHandler(geminiClient, localLLMClient RecipeGenerator, recipeStore SavedRecipeStore) *Handler {
	return &Handler{
		GeminiClient:   geminiClient,
		LocalLLMClient: localLLMClient,
		RecipeStore:    recipeStore,
		state:          newViewState(),
	}
}

// SelectImage accepts an image upload, writes a resized preview and resets
// the previous result set and error.
func (h *Handler) SelectImage(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		log.Printf("Error getting form file: %v", err)
		c.String(http.StatusBadRequest, fmt.Sprintf("get form err: %s", err.Error()))
		return
	}

	allowedExtensions := map[string]bool{
		".jpeg": true,
		".jpg":  true,
		".png":  true,
	}
	extension := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[extension] {
		c.String(http.StatusBadRequest, msgInvalidFileType)
		return
	}

	src, err := file.Open()
	if err != nil {
		c.String(http.StatusInternalServerError, fmt.Sprintf("open file err: %s", err.Error()))
		return
	}
	defer src.Close()

	imageData, err := io.ReadAll(src)
	if err != nil {
		c.String(http.StatusInternalServerError, fmt.Sprintf("read image err: %s", err.Error()))
		return
	}

	previewPath, err := savePreviewImage(imageData, imageHash(imageData), extension)
	if err != nil {
		c.String(http.StatusInternalServerError, fmt.Sprintf("failed to save preview: %s", err.Error()))
		return
	}
	previewURL := "/" + filepath.ToSlash(previewPath)

	h.mu.Lock()
	oldPreview := h.state.previewPath
	h.state.imageData = imageData
	h.state.imageMIME = mimeFromExtension(extension)
	h.state.previewPath = previewPath
	h.state.previewURL = previewURL
	h.state.recipes = nil
	h.state.errMsg = ""
	h.state.seq++
	h.mu.Unlock()

	// Release the previous preview so selections don't leak files.
	if oldPreview != "" && oldPreview != previewPath {
		if err := os.Remove(oldPreview); err != nil {
			log.Printf("failed to remove old preview %s: %v", oldPreview, err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"preview_url": previewURL})
}

// Generate produces recipe suggestions for the selected image using Gemini.
func (h *Handler) Generate(c *gin.Context) {
	h.generateWith(c, h.GeminiClient, "gemini")
}

// GenerateLocal produces recipe suggestions using the local LLM.
func (h *Handler) GenerateLocal(c *gin.Context) {
	h.generateWith(c, h.LocalLLMClient, "local llm")
}

func (h *Handler) generateWith(c *gin.Context, generator RecipeGenerator, label string) {
	h.mu.Lock()
	if len(h.state.imageData) == 0 {
		h.mu.Unlock()
		c.String(http.StatusBadRequest, msgNoImage)
		return
	}
	if h.state.generating {
		h.mu.Unlock()
		c.String(http.StatusConflict, msgGenerationBusy)
		return
	}
	h.state.generating = true
	seq := h.state.seq
	imageData := h.state.imageData
	mimeType := h.state.imageMIME
	h.mu.Unlock()

	ctx, cancel := context.WithTimeout(c.Request.Context(), 45*time.Second)
	defer cancel()

	recipes, err := generator.GenerateRecipes(ctx, imageData, mimeType)

	h.mu.Lock()
	h.state.generating = false
	stale := h.state.seq != seq
	if !stale {
		if err != nil {
			h.state.errMsg = msgGenerationFailed
		} else {
			h.state.recipes = recipes
			h.state.errMsg = ""
		}
	}
	h.mu.Unlock()

	if err != nil {
		log.Printf("%s generation failed: %v", label, err)
		if errors.Is(err, context.DeadlineExceeded) {
			c.String(http.StatusRequestTimeout, msgGenerationFailed)
			return
		}
		c.String(http.StatusInternalServerError, msgGenerationFailed)
		return
	}

	if stale {
		log.Printf("Discarding stale %s generation result", label)
	}

	if recipes == nil {
		recipes = []recipe.Recipe{}
	}
	c.JSON(http.StatusOK, recipes)
}

// recipeView annotates a suggestion with whether it is already saved.
type recipeView struct {
	recipe.Recipe
	Saved bool `json:"saved"`
}

// GetState projects the current transient state for rendering.
func (h *Handler) GetState(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	views := make([]recipeView, 0, len(h.state.recipes))
	for _, r := range h.state.recipes {
		views = append(views, recipeView{Recipe: r, Saved: h.RecipeStore.Contains(r.RecipeName)})
	}

	c.JSON(http.StatusOK, gin.H{
		"view":          h.state.view,
		"previewUrl":    h.state.previewURL,
		"loading":       h.state.generating,
		"error":         h.state.errMsg,
		"recipes":       views,
		"savedRecipes":  h.RecipeStore.List(),
		"expandedIndex": h.state.expanded,
	})
}

// SetView switches between the generator and saved views.
func (h *Handler) SetView(c *gin.Context) {
	var body struct {
		Mode string `json:"mode"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.String(http.StatusBadRequest, fmt.Sprintf("invalid body: %s", err.Error()))
		return
	}
	if body.Mode != ViewGenerator && body.Mode != ViewSaved {
		c.String(http.StatusBadRequest, fmt.Sprintf("unknown view mode: %s", body.Mode))
		return
	}

	h.mu.Lock()
	h.state.view = body.Mode
	h.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"view": body.Mode})
}

// GetSaved returns the persisted recipe list.
func (h *Handler) GetSaved(c *gin.Context) {
	c.JSON(http.StatusOK, h.RecipeStore.List())
}

// SaveRecipe persists a recipe. Saving a name that already exists is a
// silent no-op, so the endpoint is idempotent.
func (h *Handler) SaveRecipe(c *gin.Context) {
	var r recipe.Recipe
	if err := c.ShouldBindJSON(&r); err != nil {
		c.String(http.StatusBadRequest, fmt.Sprintf("invalid body: %s", err.Error()))
		return
	}
	if err := r.Validate(); err != nil {
		log.Printf("Rejecting save: %v", err)
		c.String(http.StatusBadRequest, msgInvalidRecipe)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.RecipeStore.Save(ctx, r); err != nil {
		c.String(http.StatusInternalServerError, fmt.Sprintf("failed to save recipe: %s", err.Error()))
		return
	}

	c.JSON(http.StatusOK, h.RecipeStore.List())
}

// DeleteSaved removes the saved recipe at the given position. Out-of-range
// positions are a no-op.
func (h *Handler) DeleteSaved(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.String(http.StatusBadRequest, fmt.Sprintf("invalid index: %s", c.Param("index")))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.RecipeStore.Delete(ctx, index); err != nil {
		c.String(http.StatusInternalServerError, fmt.Sprintf("failed to delete recipe: %s", err.Error()))
		return
	}

	h.mu.Lock()
	h.state.expanded = -1
	h.mu.Unlock()

	c.JSON(http.StatusOK, h.RecipeStore.List())
}

// ToggleExpand expands the saved entry at the given position, or collapses
// it if it is already expanded.
func (h *Handler) ToggleExpand(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.String(http.StatusBadRequest, fmt.Sprintf("invalid index: %s", c.Param("index")))
		return
	}
	if index < 0 || index >= h.RecipeStore.Len() {
		c.String(http.StatusNotFound, "No saved recipe at that position")
		return
	}

	h.mu.Lock()
	if h.state.expanded == index {
		h.state.expanded = -1
	} else {
		h.state.expanded = index
	}
	expanded := h.state.expanded
	h.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"expandedIndex": expanded})
}

// imageHash calculates the SHA256 hash of the image data, used to name
// preview files.
func imageHash(imageData []byte) string {
	hash := sha256.Sum256(imageData)
	return hex.EncodeToString(hash[:])
}

func mimeFromExtension(extension string) string {
	switch extension {
	case ".png":
		return "image/png"
	default:
		return "image/jpeg"
	}
}

func savePreviewImage(imageData []byte, hash, originalExtension string) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	img = resize.Resize(800, 0, img, resize.Lanczos3)

	if err := os.MkdirAll("images", 0755); err != nil {
		return "", fmt.Errorf("failed to create images directory: %w", err)
	}

	imagePath := filepath.Join("images", hash+originalExtension)
	out, err := os.Create(imagePath)
	if err != nil {
		return "", fmt.Errorf("failed to create image file: %w", err)
	}
	defer out.Close()

	switch originalExtension {
	case ".jpeg", ".jpg":
		err = jpeg.Encode(out, img, nil)
	case ".png":
		err = png.Encode(out, img)
	default:
		return "", fmt.Errorf("unsupported image format: %s", originalExtension)
	}

	if err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}

	return imagePath, nil
}
