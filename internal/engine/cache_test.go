package engine

import (
	"context"
	"testing"
	"time"
)

func initTestCache(t *testing.T) {
	t.Helper()
	InitCache("", time.Minute, 100, time.Minute)
	t.Cleanup(func() { studioCache = nil })
}

func TestCacheRoundTrip(t *testing.T) {
	initTestCache(t)
	ctx := context.Background()

	key := CacheKey("video_info", "dQw4w9WgXcQ")
	if _, ok := CacheGet(ctx, key); ok {
		t.Fatal("unexpected hit on empty cache")
	}

	CacheSet(ctx, key, []byte(`{"title":"x"}`))
	got, ok := CacheGet(ctx, key)
	if !ok || string(got) != `{"title":"x"}` {
		t.Errorf("got (%q, %t)", got, ok)
	}
}

func TestCacheKey_Deterministic(t *testing.T) {
	a := CacheKey("checklist", "vid-1")
	b := CacheKey("checklist", "vid-1")
	c := CacheKey("checklist", "vid-2")
	if a != b {
		t.Error("same parts must yield the same key")
	}
	if a == c {
		t.Error("different parts must yield different keys")
	}
}

func TestCacheChecklistRoundTrip(t *testing.T) {
	initTestCache(t)
	ctx := context.Background()

	if _, _, ok := CacheGetChecklist(ctx, "vid-1"); ok {
		t.Fatal("unexpected hit")
	}

	tasks := []OrganizedTask{
		{ID: "a", Content: "Write script", Type: "script", Order: 1, IsParent: true},
		{ID: "a_step_0", Content: "Outline", Type: "script", Order: 2, ParentID: "a", ParentOrder: 1},
	}
	CacheSetChecklist(ctx, "vid-1", tasks, nil)

	got, completed, ok := CacheGetChecklist(ctx, "vid-1")
	if !ok {
		t.Fatal("expected hit")
	}
	if len(got) != 2 || got[1].ParentID != "a" {
		t.Errorf("got %+v", got)
	}
	if len(completed) != 0 {
		t.Errorf("completed = %v, want empty for a fresh list", completed)
	}

	if _, _, ok := CacheGetChecklist(ctx, "vid-2"); ok {
		t.Error("checklist keys must be scoped per video")
	}
}

func TestCacheChecklistCarriesCompletion(t *testing.T) {
	initTestCache(t)
	ctx := context.Background()

	tasks := []OrganizedTask{
		{ID: "a", Content: "Write script", Order: 1, IsParent: true},
		{ID: "a_step_0", Content: "Outline", Order: 2, ParentID: "a", ParentOrder: 1},
	}
	CacheSetChecklist(ctx, "vid-1", tasks, map[string]bool{"a": true, "a_step_0": false})

	_, completed, ok := CacheGetChecklist(ctx, "vid-1")
	if !ok {
		t.Fatal("expected hit")
	}
	if !completed["a"] || completed["a_step_0"] {
		t.Errorf("completed = %v", completed)
	}
}

func TestCacheDisabled_NoPanic(t *testing.T) {
	studioCache = nil
	ctx := context.Background()
	CacheSet(ctx, "k", []byte("v"))
	if _, ok := CacheGet(ctx, "k"); ok {
		t.Error("disabled cache must miss")
	}
}
