package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/go-redis/redismock/v9"
)

type mapMemory struct {
	entries   map[string]string
	lookupErr error
}

func newMapMemory() *mapMemory {
	return &mapMemory{entries: make(map[string]string)}
}

func (m *mapMemory) Lookup(ctx context.Context, sourceText, sourceLang, targetLang, backend string) (string, bool, error) {
	if m.lookupErr != nil {
		return "", false, m.lookupErr
	}
	v, ok := m.entries[sourceText+"|"+sourceLang+"|"+targetLang+"|"+backend]
	return v, ok, nil
}

func (m *mapMemory) Remember(ctx context.Context, sourceText, sourceLang, targetLang, backend, text string) error {
	m.entries[sourceText+"|"+sourceLang+"|"+targetLang+"|"+backend] = text
	return nil
}

func TestLayered_BackfillsEarlierTiers(t *testing.T) {
	front, back := newMapMemory(), newMapMemory()
	back.Remember(context.Background(), "Hello", "en", "zh", "ollama", "你好")

	l := NewLayered(front, back)

	text, found, err := l.Lookup(context.Background(), "Hello", "en", "zh", "ollama")
	if err != nil || !found || text != "你好" {
		t.Fatalf("expected hit from back tier, got %q found=%v err=%v", text, found, err)
	}
	if front.entries["Hello|en|zh|ollama"] != "你好" {
		t.Error("expected front tier to be backfilled")
	}
}

func TestLayered_Miss(t *testing.T) {
	l := NewLayered(newMapMemory(), newMapMemory())

	_, found, err := l.Lookup(context.Background(), "Hello", "en", "zh", "ollama")
	if found || err != nil {
		t.Errorf("expected clean miss, got found=%v err=%v", found, err)
	}
}

func TestLayered_ErrorOnlyWithoutHit(t *testing.T) {
	broken := newMapMemory()
	broken.lookupErr = errors.New("redis down")
	back := newMapMemory()
	l := NewLayered(broken, back)

	if _, _, err := l.Lookup(context.Background(), "Hello", "en", "zh", "ollama"); err == nil {
		t.Error("expected tier error to surface on a miss")
	}

	back.Remember(context.Background(), "Hello", "en", "zh", "ollama", "你好")
	text, found, err := l.Lookup(context.Background(), "Hello", "en", "zh", "ollama")
	if err != nil || !found || text != "你好" {
		t.Errorf("expected hit despite broken tier, got %q found=%v err=%v", text, found, err)
	}
}

func TestLayered_RememberWritesAllTiers(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	redisTier := NewRedisCacheFromClient(db, 0, "test:")
	local := newMapMemory()
	l := NewLayered(redisTier, nil, local)

	mock.ExpectSet(redisTier.Key("Hello", "en", "ru", "ollama"), "Привет", 0).SetVal("OK")

	if err := l.Remember(context.Background(), "Hello", "en", "ru", "ollama", "Привет"); err != nil {
		t.Fatalf("Remember failed: %v", err)
	}
	if local.entries["Hello|en|ru|ollama"] != "Привет" {
		t.Error("expected local tier to be written")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
