package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"fridgechef/internal/api"
	"fridgechef/internal/platform/gemini"
	"fridgechef/internal/platform/localllm"
	"fridgechef/internal/recipe"
)

// Config represents the application configuration.
type Config struct {
	GeminiAPIKey string `json:"gemini_api_key"`
	DatabaseURL  string `json:"DATABASE_URL"`
	LocalLLMURL  string `json:"local_llm_url"`
	DataDir      string `json:"data_dir"`
	ListenAddr   string `json:"listen_addr"`
}

func main() {
	ctx := context.Background()

	// Read configuration from config.json
	configData, err := os.ReadFile("config.json")
	if err != nil {
		panic(fmt.Errorf("failed to read config.json: %w", err))
	}

	var config Config
	if err := json.Unmarshal(configData, &config); err != nil {
		panic(fmt.Errorf("failed to unmarshal config.json: %w", err))
	}
	if config.DataDir == "" {
		config.DataDir = "data"
	}
	if config.ListenAddr == "" {
		config.ListenAddr = ":8080"
	}

	geminiClient, err := gemini.NewClient(ctx, config.GeminiAPIKey)
	if err != nil {
		panic(fmt.Errorf("error creating gemini client: %w", err))
	}

	localLLMClient := localllm.NewClient(config.LocalLLMURL)

	var kv recipe.KV
	if config.DatabaseURL != "" {
		kv, err = recipe.NewPostgresKV(config.DatabaseURL)
		if err != nil {
			panic(fmt.Errorf("error creating postgres storage: %w", err))
		}
	} else {
		kv, err = recipe.NewFileKV(config.DataDir)
		if err != nil {
			panic(fmt.Errorf("error creating file storage: %w", err))
		}
	}

	savedStore := recipe.NewSavedStore(kv)
	if err := savedStore.Load(ctx); err != nil {
		panic(fmt.Errorf("error loading saved recipes: %w", err))
	}

	handler := api.NewHandler(geminiClient, localLLMClient, savedStore)

	r := gin.Default()

	// Configure CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:8081"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.POST("/image", handler.SelectImage)
	r.POST("/generate", handler.Generate)
	r.POST("/generate-local", handler.GenerateLocal)
	r.GET("/state", handler.GetState)
	r.POST("/view", handler.SetView)
	r.GET("/saved", handler.GetSaved)
	r.POST("/saved", handler.SaveRecipe)
	r.DELETE("/saved/:index", handler.DeleteSaved)
	r.POST("/saved/:index/expand", handler.ToggleExpand)
	r.Static("/images", "./images")

	r.Run(config.ListenAddr)
}
