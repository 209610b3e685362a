package i18n

import "testing"

func TestGetReturnsKeyForEnglish(t *testing.T) {
	t.Parallel()

	if got := Get("Access denied.", "en"); got != "Access denied." {
		t.Fatalf("Get() = %q", got)
	}
	if got := Get("Access denied.", ""); got != "Access denied." {
		t.Fatalf("empty language must behave like english, got %q", got)
	}
}

func TestGetTranslatesRussian(t *testing.T) {
	if got := Get("Access denied.", "ru"); got != "Доступ запрещён." {
		t.Fatalf("Get() = %q", got)
	}
}

func TestGetFallsBackToKeyForUnknownEntries(t *testing.T) {
	key := "This key has no translation anywhere."
	if got := Get(key, "ru"); got != key {
		t.Fatalf("missing translation must fall back to the key, got %q", got)
	}
	if got := Get(key, "xx"); got != key {
		t.Fatalf("missing language must fall back to the key, got %q", got)
	}
}
