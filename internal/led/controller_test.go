package led

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

// makeLED creates a fake sysfs LED entry under root with the given
// brightness content.
func makeLED(t *testing.T, root, name, brightness string) {
	t.Helper()
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create LED dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "brightness"), []byte(brightness), 0644); err != nil {
		t.Fatalf("Failed to write brightness: %v", err)
	}
}

func TestSysfsController_Read(t *testing.T) {
	tests := []struct {
		name       string
		brightness string
		want       State
	}{
		{"lit", "1", Lit},
		{"lit with newline", "1\n", Lit},
		{"lit nonbinary brightness", "255\n", Lit},
		{"unlit", "0\n", Unlit},
		{"garbage reads as unlit", "whoops\n", Unlit},
		{"empty reads as unlit", "", Unlit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			makeLED(t, root, "input3::scrolllock", tt.brightness)

			ctrl := newSysfsAt(root, testLogger())
			if got := ctrl.Read(Handle{Name: "input3::scrolllock"}); got != tt.want {
				t.Errorf("Read() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSysfsController_Read_MissingDevice(t *testing.T) {
	ctrl := newSysfsAt(t.TempDir(), testLogger())

	// Vanished device must read as unlit, never as an error
	if got := ctrl.Read(Handle{Name: "input9::scrolllock"}); got != Unlit {
		t.Errorf("Read() on missing LED = %v, want Unlit", got)
	}
}

func TestSysfsController_Write(t *testing.T) {
	root := t.TempDir()
	makeLED(t, root, "input3::scrolllock", "0\n")

	ctrl := newSysfsAt(root, testLogger())
	h := Handle{Name: "input3::scrolllock"}

	if err := ctrl.Write(h, Lit); err != nil {
		t.Fatalf("Write(Lit) returned error: %v", err)
	}
	if got := ctrl.Read(h); got != Lit {
		t.Errorf("Read() after Write(Lit) = %v, want Lit", got)
	}

	if err := ctrl.Write(h, Unlit); err != nil {
		t.Fatalf("Write(Unlit) returned error: %v", err)
	}
	if got := ctrl.Read(h); got != Unlit {
		t.Errorf("Read() after Write(Unlit) = %v, want Unlit", got)
	}
}

func TestSysfsController_Write_Idempotent(t *testing.T) {
	root := t.TempDir()
	makeLED(t, root, "input3::scrolllock", "0\n")

	ctrl := newSysfsAt(root, testLogger())
	h := Handle{Name: "input3::scrolllock"}

	// Repeating a write must not error or flip the state
	for range 3 {
		if err := ctrl.Write(h, Lit); err != nil {
			t.Fatalf("Repeated Write(Lit) returned error: %v", err)
		}
	}
	if got := ctrl.Read(h); got != Lit {
		t.Errorf("Read() after repeated writes = %v, want Lit", got)
	}
}

func TestSysfsController_Write_MissingDevice(t *testing.T) {
	ctrl := newSysfsAt(t.TempDir(), testLogger())

	if err := ctrl.Write(Handle{Name: "input9::scrolllock"}, Lit); err == nil {
		t.Error("Write() to missing LED should return error")
	}
}

func TestSysfsController_ConcurrentWriters(t *testing.T) {
	root := t.TempDir()
	makeLED(t, root, "input3::scrolllock", "0\n")

	ctrl := newSysfsAt(root, testLogger())
	h := Handle{Name: "input3::scrolllock"}

	// Overlapping writers with absolute values cannot corrupt state;
	// whatever wrote last wins.
	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func(lit bool) {
			defer wg.Done()
			_ = ctrl.Write(h, State(lit))
		}(i%2 == 0)
	}
	wg.Wait()

	if err := ctrl.Write(h, Lit); err != nil {
		t.Fatalf("Final Write(Lit) returned error: %v", err)
	}
	if got := ctrl.Read(h); got != Lit {
		t.Errorf("Read() after final write = %v, want Lit", got)
	}
}

func TestRegistry_Resolve(t *testing.T) {
	tests := []struct {
		name      string
		leds      []string
		indicator string
		want      string
		wantErr   bool
	}{
		{
			name:      "suffix match",
			leds:      []string{"input3::capslock", "input3::numlock", "input3::scrolllock"},
			indicator: "scrolllock",
			want:      "input3::scrolllock",
		},
		{
			name:      "first match wins",
			leds:      []string{"input3::scrolllock", "input5::scrolllock"},
			indicator: "scrolllock",
			want:      "input3::scrolllock",
		},
		{
			name:      "exact name match",
			leds:      []string{"tpacpi::thinklight"},
			indicator: "tpacpi::thinklight",
			want:      "tpacpi::thinklight",
		},
		{
			name:      "no match",
			leds:      []string{"input3::capslock", "mmc0::"},
			indicator: "scrolllock",
			wantErr:   true,
		},
		{
			name:      "empty registry",
			leds:      []string{},
			indicator: "scrolllock",
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			for _, name := range tt.leds {
				makeLED(t, root, name, "0\n")
			}

			reg := NewRegistryAt(root)
			h, err := reg.Resolve(tt.indicator)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Resolve() should have returned error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve() returned error: %v", err)
			}
			if h.Name != tt.want {
				t.Errorf("Resolve() = %q, want %q", h.Name, tt.want)
			}
		})
	}
}

func TestRegistry_List(t *testing.T) {
	root := t.TempDir()
	makeLED(t, root, "input3::scrolllock", "0\n")
	makeLED(t, root, "input3::capslock", "0\n")

	names, err := NewRegistryAt(root).List()
	if err != nil {
		t.Fatalf("List() returned error: %v", err)
	}
	if len(names) != 2 {
		t.Errorf("List() len = %d, want 2", len(names))
	}
}

func TestExecController(t *testing.T) {
	var gotArgs [][]string
	output := []byte("1\n")
	var runErr error

	ctrl := newExec(testLogger())
	ctrl.run = func(name string, args ...string) ([]byte, error) {
		gotArgs = append(gotArgs, append([]string{name}, args...))
		return output, runErr
	}

	h := Handle{Name: "input3::scrolllock"}

	if got := ctrl.Read(h); got != Lit {
		t.Errorf("Read() = %v, want Lit", got)
	}

	if err := ctrl.Write(h, Lit); err != nil {
		t.Fatalf("Write() returned error: %v", err)
	}

	wantWrite := []string{"brightnessctl", "--device", "input3::scrolllock", "set", "1"}
	last := gotArgs[len(gotArgs)-1]
	if len(last) != len(wantWrite) {
		t.Fatalf("Write args = %v, want %v", last, wantWrite)
	}
	for i := range wantWrite {
		if last[i] != wantWrite[i] {
			t.Fatalf("Write args = %v, want %v", last, wantWrite)
		}
	}

	// Command failure reads as unlit
	runErr = fmt.Errorf("exit status 1")
	if got := ctrl.Read(h); got != Unlit {
		t.Errorf("Read() with failing command = %v, want Unlit", got)
	}

	// Write failure is surfaced
	if err := ctrl.Write(h, Unlit); err == nil {
		t.Error("Write() with failing command should return error")
	}
}

func TestNoopController(t *testing.T) {
	ctrl := newNoop(testLogger())
	h := Handle{Name: "input3::scrolllock"}

	if err := ctrl.Write(h, Lit); err != nil {
		t.Errorf("Write() returned error: %v", err)
	}

	// Noop reads as lit so nothing keeps correcting a LED that is not there
	if got := ctrl.Read(h); got != Lit {
		t.Errorf("Read() = %v, want Lit", got)
	}
}

func TestFactory(t *testing.T) {
	logger := testLogger()

	if _, ok := New("noop", logger).(*noop); !ok {
		t.Error(`New("noop") should return noop controller`)
	}
	if _, ok := New("brightnessctl", logger).(*execctl); !ok {
		t.Error(`New("brightnessctl") should return exec controller`)
	}
}

func TestStateString(t *testing.T) {
	if Lit.String() != "lit" {
		t.Errorf("Lit.String() = %q", Lit.String())
	}
	if Unlit.String() != "unlit" {
		t.Errorf("Unlit.String() = %q", Unlit.String())
	}
}
