package pagination

import "testing"

func TestNormalizeDefaults(t *testing.T) {
	p := Normalize(Params{})
	if p.Limit != DefaultLimit {
		t.Fatalf("expected default limit %d, got %d", DefaultLimit, p.Limit)
	}
	if p.Offset != 0 {
		t.Fatalf("expected zero offset, got %d", p.Offset)
	}
}

func TestNormalizeClampsLimitAndOffset(t *testing.T) {
	p := Normalize(Params{Limit: MaxLimit + 50, Offset: -3})
	if p.Limit != MaxLimit {
		t.Fatalf("expected clamped limit %d, got %d", MaxLimit, p.Limit)
	}
	if p.Offset != 0 {
		t.Fatalf("expected clamped offset 0, got %d", p.Offset)
	}
}

func TestNewPageNeverReturnsNilItems(t *testing.T) {
	page := NewPage[string](nil, 0, Normalize(Params{}))
	if page.Items == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if page.Total != 0 || page.Limit != DefaultLimit {
		t.Fatalf("unexpected page metadata: %+v", page)
	}
}
