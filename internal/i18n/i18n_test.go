package i18n

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func initLang(t *testing.T, lang string) context.Context {
	t.Helper()
	if err := Init(lang); err != nil {
		t.Fatalf("Init(%q): %v", lang, err)
	}
	loc := NewLocalizer(lang)
	return WithLocalizer(context.Background(), loc)
}

func TestTranslateEnglish(t *testing.T) {
	ctx := initLang(t, "en")

	got := T(ctx, "QuizPublished")
	if got != "Quiz published successfully!" {
		t.Errorf("T(QuizPublished) = %q, want 'Quiz published successfully!'", got)
	}

	got = T(ctx, "TopicRequired")
	if got != "Please enter a quiz topic." {
		t.Errorf("T(TopicRequired) = %q, want 'Please enter a quiz topic.'", got)
	}
}

func TestTranslateRussian(t *testing.T) {
	ctx := initLang(t, "ru")

	got := T(ctx, "QuizPublished")
	if got != "Тест опубликован!" {
		t.Errorf("T(QuizPublished) = %q, want 'Тест опубликован!'", got)
	}

	got = T(ctx, "TopicRequired")
	if got != "Укажите тему теста." {
		t.Errorf("T(TopicRequired) = %q, want 'Укажите тему теста.'", got)
	}
}

func TestMiddlewareLanguageNegotiation(t *testing.T) {
	if err := Init("en"); err != nil {
		t.Fatalf("Init: %v", err)
	}

	var got string
	h := Middleware("en")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = T(r.Context(), "TopicRequired")
	}))

	// No Accept-Language header falls back to the configured language.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)
	if got != "Please enter a quiz topic." {
		t.Errorf("default language: got %q", got)
	}

	// The browser's preference wins over the configured default.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "ru")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if got != "Укажите тему теста." {
		t.Errorf("negotiated language: got %q", got)
	}
}

func TestMissingKey(t *testing.T) {
	ctx := initLang(t, "en")

	got := T(ctx, "NonExistentKey")
	if got != "NonExistentKey" {
		t.Errorf("T(NonExistentKey) = %q, want 'NonExistentKey'", got)
	}
}
