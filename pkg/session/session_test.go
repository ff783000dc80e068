package session

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSession_New(t *testing.T) {
	expiresAt := time.Now().Add(24 * time.Hour)
	sess := New("test-id", "test-token", expiresAt)

	if sess.ID != "test-id" {
		t.Errorf("ID = %q, want %q", sess.ID, "test-id")
	}
	if sess.Token != "test-token" {
		t.Errorf("Token = %q, want %q", sess.Token, "test-token")
	}
	if !sess.IsNew() {
		t.Error("IsNew() = false, want true")
	}
	if !sess.IsDirty() {
		t.Error("IsDirty() = false, want true")
	}
	if sess.Values == nil {
		t.Error("Values is nil")
	}
	if sess.IsAuthenticated() {
		t.Error("IsAuthenticated() = true for new session, want false")
	}
}

func TestSession_SetGetDelete(t *testing.T) {
	sess := New("id", "token", time.Now().Add(time.Hour))
	sess.ClearDirty()

	sess.Set("lang", "de")
	if !sess.IsDirty() {
		t.Error("Set should mark session as dirty")
	}
	if v, ok := sess.Get("lang"); !ok || v != "de" {
		t.Errorf("Get(lang) = %q, %v; want de, true", v, ok)
	}

	sess.ClearDirty()
	sess.Set("lang", "de")
	if sess.IsDirty() {
		t.Error("Set with an unchanged value should not mark the session dirty")
	}

	sess.Delete("missing")
	if sess.IsDirty() {
		t.Error("Delete of a missing key should not mark the session dirty")
	}

	sess.Delete("lang")
	if !sess.IsDirty() {
		t.Error("Delete should mark session as dirty")
	}
	if _, ok := sess.Get("lang"); ok {
		t.Error("value still present after Delete")
	}
}

func TestSession_Pop(t *testing.T) {
	sess := New("id", "token", time.Now().Add(time.Hour))
	sess.Set("flash", "saved")

	v, ok := sess.Pop("flash")
	if !ok || v != "saved" {
		t.Errorf("Pop = %q, %v; want saved, true", v, ok)
	}
	if _, ok := sess.Pop("flash"); ok {
		t.Error("second Pop should find nothing")
	}
}

func TestSession_Clear(t *testing.T) {
	sess := New("id", "token", time.Now().Add(time.Hour))
	sess.UserID = "42"
	sess.Set("identity", "{}")
	sess.ClearDirty()

	sess.Clear()

	if sess.IsAuthenticated() {
		t.Error("Clear should drop the user")
	}
	if len(sess.Values) != 0 {
		t.Errorf("Values = %v, want empty", sess.Values)
	}
	if !sess.IsDirty() {
		t.Error("Clear should mark session as dirty")
	}
}

func TestSession_IsExpired(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	sess := New("id", "token", now.Add(time.Minute))

	if sess.IsExpired(now) {
		t.Error("IsExpired() = true before expiry")
	}
	if !sess.IsExpired(now.Add(time.Minute)) {
		t.Error("IsExpired() = false at expiry")
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	s := New("id-1", "tok-1", time.Now().Add(time.Hour))
	s.Set("lang", "de")
	if err := store.Create(ctx, s); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := store.Get(ctx, "tok-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v, _ := got.Get("lang"); v != "de" {
		t.Errorf("lang = %q, want de", v)
	}

	got.Token = "tok-2"
	got.UserID = "7"
	if err := store.Update(ctx, got); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if _, err := store.Get(ctx, "tok-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("old token: err = %v, want ErrNotFound", err)
	}

	expired := New("id-2", "tok-3", time.Now().Add(-time.Minute))
	_ = store.Create(ctx, expired)
	if _, err := store.Get(ctx, "tok-3"); !errors.Is(err, ErrExpired) {
		t.Errorf("expired: err = %v, want ErrExpired", err)
	}

	n, _ := store.DeleteExpired(ctx, time.Now())
	if n != 1 {
		t.Errorf("DeleteExpired = %d, want 1", n)
	}

	_ = store.DeleteByUserID(ctx, "7")
	if store.Len() != 0 {
		t.Errorf("Len = %d, want 0", store.Len())
	}
}
