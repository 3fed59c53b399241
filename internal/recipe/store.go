package recipe

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
)

// savedRecipesKey is the single durable slot holding the serialized saved list.
const savedRecipesKey = "savedRecipes"

// KV is the durable single-slot storage the saved list is written through to.
type KV interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// SavedStore is the ordered list of recipes the user has kept, deduplicated
// by recipe name. The list is loaded once at startup and every mutation
// rewrites the full serialized list into the durable slot.
type SavedStore struct {
	kv KV

	mu      sync.Mutex
	recipes []Recipe
}

// NewSavedStore creates a SavedStore backed by the given KV.
func NewSavedStore(kv KV) *SavedStore {
	return &SavedStore{kv: kv}
}

// Load reads the durable slot into memory. A corrupt payload is discarded
// and the slot is reset to an empty list; that recovery is not an error.
func (s *SavedStore) Load(ctx context.Context) error {
	value, ok, err := s.kv.Get(ctx, savedRecipesKey)
	if err != nil {
		return fmt.Errorf("failed to read saved recipes: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !ok || value == "" {
		s.recipes = nil
		return nil
	}

	var recipes []Recipe
	if err := json.Unmarshal([]byte(value), &recipes); err != nil {
		log.Printf("Discarding corrupt saved recipes value: %v", err)
		s.recipes = nil
		if resetErr := s.kv.Set(ctx, savedRecipesKey, "[]"); resetErr != nil {
			return fmt.Errorf("failed to reset corrupt saved recipes slot: %w", resetErr)
		}
		return nil
	}

	s.recipes = recipes
	return nil
}

// Save appends the recipe unless one with the same name is already present.
// Duplicate names are ignored silently; the first write wins.
func (s *SavedStore) Save(ctx context.Context, r Recipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.recipes {
		if s.recipes[i].RecipeName == r.RecipeName {
			return nil
		}
	}

	updated := append(append([]Recipe(nil), s.recipes...), r)
	if err := s.persist(ctx, updated); err != nil {
		return err
	}
	s.recipes = updated
	return nil
}

// Delete removes the entry at the given position. Out-of-range indexes are a
// no-op.
func (s *SavedStore) Delete(ctx context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.recipes) {
		return nil
	}

	updated := append([]Recipe(nil), s.recipes[:index]...)
	updated = append(updated, s.recipes[index+1:]...)
	if err := s.persist(ctx, updated); err != nil {
		return err
	}
	s.recipes = updated
	return nil
}

// List returns a copy of the saved recipes in order.
func (s *SavedStore) List() []Recipe {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Recipe(nil), s.recipes...)
}

// Contains reports whether a recipe with the given name has been saved.
func (s *SavedStore) Contains(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.recipes {
		if s.recipes[i].RecipeName == name {
			return true
		}
	}
	return false
}

// Len returns the number of saved recipes.
func (s *SavedStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.recipes)
}

// persist writes the full list back to the durable slot. The in-memory list
// is only replaced after the write succeeds, so memory never runs ahead of
// durable state. Caller holds s.mu.
func (s *SavedStore) persist(ctx context.Context, recipes []Recipe) error {
	if recipes == nil {
		recipes = []Recipe{}
	}
	data, err := json.Marshal(recipes)
	if err != nil {
		return fmt.Errorf("failed to marshal saved recipes: %w", err)
	}
	if err := s.kv.Set(ctx, savedRecipesKey, string(data)); err != nil {
		return fmt.Errorf("failed to write saved recipes: %w", err)
	}
	return nil
}
