package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestExtensionAllowed(t *testing.T) {
	exts := []string{".txt", ".md"}
	cases := []struct {
		path string
		want bool
	}{
		{"notes.txt", true},
		{"FAQ.MD", true},
		{"image.jpg", false},
		{"no-extension", false},
		{"dir/file.Txt", true},
	}
	for _, tc := range cases {
		if got := ExtensionAllowed(tc.path, exts); got != tc.want {
			t.Errorf("ExtensionAllowed(%q)=%v, want %v", tc.path, got, tc.want)
		}
	}
	if !ExtensionAllowed("anything.xyz", nil) {
		t.Error("empty extension list should allow everything")
	}
}

func TestWatcher_TriggersOnChange(t *testing.T) {
	dir := t.TempDir()
	changed := make(chan struct{}, 1)
	w := NewWatcher(dir, []string{".md"}, func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	}, WithDebounce(50*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(dir, "new.md"), []byte("content"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-changed:
	case <-time.After(3 * time.Second):
		t.Fatal("change callback not invoked")
	}
}

func TestWatcher_IgnoresOtherExtensions(t *testing.T) {
	dir := t.TempDir()
	changed := make(chan struct{}, 1)
	w := NewWatcher(dir, []string{".md"}, func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	}, WithDebounce(50*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(dir, "photo.jpg"), []byte("img"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-changed:
		t.Fatal("callback invoked for a non-corpus file")
	case <-time.After(300 * time.Millisecond):
	}
}
