package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"leafsight/internal/analysis"
)

func TestInMemoryStoreSaveAndGet(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	saved, err := store.SaveAnalysis(ctx, Analysis{
		Provider: "groq",
		Model:    "test-model",
		Result:   analysis.Result{DiseaseName: "Rust", DiseaseType: analysis.TypeFungal},
	})
	if err != nil {
		t.Fatalf("SaveAnalysis: %v", err)
	}
	if saved.ID == "" {
		t.Error("expected generated id")
	}
	if saved.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}

	got, err := store.GetAnalysis(ctx, saved.ID)
	if err != nil {
		t.Fatalf("GetAnalysis: %v", err)
	}
	if got.Result.DiseaseName != "Rust" {
		t.Errorf("disease name = %q", got.Result.DiseaseName)
	}
}

func TestInMemoryStoreGetMissing(t *testing.T) {
	store := NewInMemoryStore()

	_, err := store.GetAnalysis(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestInMemoryStoreListNewestFirstAndCapped(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	for i := 0; i < memoryLimit+10; i++ {
		if _, err := store.SaveAnalysis(ctx, Analysis{ID: fmt.Sprintf("a-%d", i)}); err != nil {
			t.Fatalf("SaveAnalysis: %v", err)
		}
	}

	items, err := store.ListAnalyses(ctx)
	if err != nil {
		t.Fatalf("ListAnalyses: %v", err)
	}
	if len(items) != memoryLimit {
		t.Fatalf("len = %d, want %d", len(items), memoryLimit)
	}
	if items[0].ID != fmt.Sprintf("a-%d", memoryLimit+9) {
		t.Errorf("first item = %s, want newest", items[0].ID)
	}
}
