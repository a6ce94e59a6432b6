package thumbnail

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-shader-export/export"
	"github.com/goliatone/go-shader-export/gallery"
)

func countingPreviewer(calls *int) gallery.Previewer {
	return gallery.PreviewerFunc(func(ctx context.Context, page string) ([]byte, error) {
		*calls++
		if page == "fail" {
			return nil, errors.New("render failed")
		}
		return []byte("png:" + page), nil
	})
}

func TestCache_Memoizes(t *testing.T) {
	calls := 0
	cache := NewCache(countingPreviewer(&calls), 2)

	for i := 0; i < 3; i++ {
		img, err := cache.Preview(context.Background(), "a")
		if err != nil {
			t.Fatalf("preview: %v", err)
		}
		if string(img) != "png:a" {
			t.Fatalf("unexpected image %q", img)
		}
	}
	if calls != 1 {
		t.Fatalf("expected 1 render, got %d", calls)
	}
}

func TestCache_ReturnsIndependentCopies(t *testing.T) {
	calls := 0
	cache := NewCache(countingPreviewer(&calls), 2)
	ctx := context.Background()

	first, err := cache.Preview(ctx, "a")
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	first[0] = 'X'

	second, err := cache.Preview(ctx, "a")
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if string(second) != "png:a" {
		t.Fatalf("cached image changed by caller: %q", second)
	}
	second[1] = 'Y'

	third, err := cache.Preview(ctx, "a")
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if string(third) != "png:a" || calls != 1 {
		t.Fatalf("expected unchanged cached image, got %q after %d renders", third, calls)
	}
}

func TestCache_EvictsOldest(t *testing.T) {
	calls := 0
	cache := NewCache(countingPreviewer(&calls), 2)
	ctx := context.Background()

	for _, page := range []string{"a", "b", "c"} {
		if _, err := cache.Preview(ctx, page); err != nil {
			t.Fatalf("preview %s: %v", page, err)
		}
	}
	if cache.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", cache.Len())
	}
	if _, err := cache.Preview(ctx, "b"); err != nil {
		t.Fatalf("preview: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected b to be cached, got %d renders", calls)
	}
	if _, err := cache.Preview(ctx, "a"); err != nil {
		t.Fatalf("preview: %v", err)
	}
	if calls != 4 {
		t.Fatalf("expected a to be evicted, got %d renders", calls)
	}
}

func TestCache_ErrorsAreNotCached(t *testing.T) {
	calls := 0
	cache := NewCache(countingPreviewer(&calls), 0)
	for i := 0; i < 2; i++ {
		if _, err := cache.Preview(context.Background(), "fail"); err == nil {
			t.Fatalf("expected error")
		}
	}
	if calls != 2 || cache.Len() != 0 {
		t.Fatalf("expected uncached failures, calls=%d len=%d", calls, cache.Len())
	}
}

func TestCache_Unconfigured(t *testing.T) {
	cache := NewCache(nil, 1)
	if _, err := cache.Preview(context.Background(), "a"); export.KindFromError(err) != export.KindNotImpl {
		t.Fatalf("expected not implemented, got %v", err)
	}
}
