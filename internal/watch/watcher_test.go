package watch

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestFileWatcher_Start(t *testing.T) {
	tmpDir := t.TempDir()

	testFile := filepath.Join(tmpDir, "family", "enums.traitenum")
	if err := os.MkdirAll(filepath.Dir(testFile), 0o755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}
	if err := os.WriteFile(testFile, []byte("initial content"), 0o644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	var mu sync.Mutex
	var changes [][]string

	watcher, err := NewFileWatcher(Options{
		Root:     tmpDir,
		Sources:  []string{"**/*.traitenum"},
		Debounce: 50 * time.Millisecond,
	}, func(files []string) error {
		mu.Lock()
		defer mu.Unlock()
		changes = append(changes, files)
		return nil
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}
	defer watcher.Stop()

	if err := watcher.Start(); err != nil {
		t.Fatalf("Failed to start watcher: %v", err)
	}

	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(testFile, []byte("modified content"), 0o644); err != nil {
		t.Fatalf("Failed to modify file: %v", err)
	}
	// Not a declaration file
	if err := os.WriteFile(filepath.Join(tmpDir, "family", "enums_traitenum.go"), []byte("package family"), 0o644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	time.Sleep(400 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()

	if len(changes) == 0 {
		t.Fatal("Expected changes to be detected")
	}
	for _, batch := range changes {
		for _, file := range batch {
			if filepath.Base(file) != "enums.traitenum" {
				t.Errorf("unexpected file reported: %s", file)
			}
		}
	}
}

func TestFileWatcher_NewDirectories(t *testing.T) {
	tmpDir := t.TempDir()

	var mu sync.Mutex
	var seen []string

	watcher, err := NewFileWatcher(Options{
		Root:     tmpDir,
		Sources:  []string{"**/*.traitenum"},
		Debounce: 50 * time.Millisecond,
	}, func(files []string) error {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, files...)
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}
	defer watcher.Stop()

	if err := watcher.Start(); err != nil {
		t.Fatalf("Failed to start watcher: %v", err)
	}

	dir := filepath.Join(tmpDir, "colors")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "colors.traitenum"), []byte("schema"), 0o644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	time.Sleep(400 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(seen) == 0 {
		t.Error("Expected the file in the new directory to be reported")
	}
}

func TestDebouncer_Add(t *testing.T) {
	var mu sync.Mutex
	var called bool
	var files []string

	debouncer := NewDebouncer(50 * time.Millisecond)
	debouncer.SetCallback(func(f []string) {
		mu.Lock()
		defer mu.Unlock()
		called = true
		files = f
	})

	debouncer.Add("file2.traitenum")
	debouncer.Add("file1.traitenum")
	debouncer.Add("file2.traitenum") // Duplicate

	time.Sleep(150 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()

	if !called {
		t.Fatal("Expected callback to be called")
	}
	if len(files) != 2 || files[0] != "file1.traitenum" {
		t.Errorf("Expected 2 sorted unique files, got %v", files)
	}
}

func TestDebouncer_MultipleFlushes(t *testing.T) {
	var mu sync.Mutex
	var callCount int

	debouncer := NewDebouncer(30 * time.Millisecond)
	debouncer.SetCallback(func(f []string) {
		mu.Lock()
		defer mu.Unlock()
		callCount++
	})

	debouncer.Add("file1.traitenum")
	time.Sleep(100 * time.Millisecond)

	debouncer.Add("file2.traitenum")
	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()

	if callCount != 2 {
		t.Errorf("Expected 2 callback calls, got %d", callCount)
	}
}

func TestDebouncer_Stop(t *testing.T) {
	var mu sync.Mutex
	var called bool

	debouncer := NewDebouncer(30 * time.Millisecond)
	debouncer.SetCallback(func([]string) {
		mu.Lock()
		defer mu.Unlock()
		called = true
	})

	debouncer.Add("file.traitenum")
	debouncer.Stop()
	debouncer.Add("other.traitenum")
	time.Sleep(80 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if called {
		t.Error("Stopped debouncer must not call back")
	}
}

func TestFileWatcher_ShouldIgnore(t *testing.T) {
	watcher := &FileWatcher{
		exclude: []string{"vendor/**", "**/*.swp"},
	}

	tests := []struct {
		path     string
		expected bool
	}{
		{"family/enums.traitenum", false},
		{"family/enums.swp", true},
		{"vendor/lib/enums.traitenum", true},
		{".traitenum/models/family.ParentTrait.tem", true},
		{"family/.hidden", true},
		{"enums.traitenum", false},
	}

	for _, tt := range tests {
		result := watcher.shouldIgnore(tt.path)
		if result != tt.expected {
			t.Errorf("shouldIgnore(%q) = %v, expected %v", tt.path, result, tt.expected)
		}
	}
}

func TestFileWatcher_Stop(t *testing.T) {
	watcher, err := NewFileWatcher(Options{
		Root:    t.TempDir(),
		Sources: []string{"**/*.traitenum"},
	}, func(files []string) error { return nil }, nil)
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}

	if err := watcher.Start(); err != nil {
		t.Fatalf("Failed to start watcher: %v", err)
	}

	if err := watcher.Stop(); err != nil {
		t.Errorf("Stop() returned error: %v", err)
	}
	if err := watcher.Stop(); err != nil {
		t.Errorf("second Stop() returned error: %v", err)
	}
}

func BenchmarkDebouncer_Add(b *testing.B) {
	debouncer := NewDebouncer(100 * time.Millisecond)
	debouncer.SetCallback(func(files []string) {})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		debouncer.Add("file.traitenum")
	}
}
