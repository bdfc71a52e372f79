package workspace

import (
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/disintegration/imaging"
)

func newWorkspace(t *testing.T) (*Workspace, string) {
	t.Helper()
	root := t.TempDir()
	out := filepath.Join(root, "output")
	ws, err := New(Options{
		OutputPath:      out,
		WorkPath:        filepath.Join(out, "tmp"),
		PaletteFilename: "palette.png",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return ws, out
}

func TestNewValidation(t *testing.T) {
	tests := []Options{
		{OutputPath: "", WorkPath: "w", PaletteFilename: "p.png"},
		{OutputPath: "o", WorkPath: "", PaletteFilename: "p.png"},
		{OutputPath: "o", WorkPath: "w", PaletteFilename: "../p.png"},
		{OutputPath: "o", WorkPath: "w", PaletteFilename: ""},
	}
	for _, opts := range tests {
		if _, err := New(opts); err == nil {
			t.Errorf("New(%+v) expected error", opts)
		}
	}
}

func TestPrepare(t *testing.T) {
	ws, out := newWorkspace(t)
	if err := ws.Prepare(); err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	for _, dir := range []string{out, ws.Dir()} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Errorf("%s was not created", dir)
		}
	}

	// Preparing an empty leftover directory is fine.
	if err := ws.Prepare(); err != nil {
		t.Errorf("second Prepare() error = %v", err)
	}
}

func TestPrepareRejectsLeftovers(t *testing.T) {
	ws, _ := newWorkspace(t)
	if err := ws.Prepare(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(ws.Dir(), "thumbnail-1.PNG"), []byte("old"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := ws.Prepare(); !errors.Is(err, ErrWorkDirNotEmpty) {
		t.Errorf("Prepare() error = %v, want ErrWorkDirNotEmpty", err)
	}
}

func TestStagePaletteImage(t *testing.T) {
	ws, _ := newWorkspace(t)
	if err := ws.Prepare(); err != nil {
		t.Fatal(err)
	}

	src := imaging.New(8, 4, color.NRGBA{R: 200, G: 10, B: 10, A: 255})
	path, err := ws.StagePaletteImage(src)
	if err != nil {
		t.Fatalf("StagePaletteImage() error = %v", err)
	}
	if filepath.Base(path) != "palette.png" {
		t.Errorf("staged at %s", path)
	}

	img, err := imaging.Open(path)
	if err != nil {
		t.Fatalf("staged image does not decode: %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, 8, 4) {
		t.Errorf("staged bounds = %v", img.Bounds())
	}
}

func TestStagePaletteImageWithoutPrepare(t *testing.T) {
	ws, _ := newWorkspace(t)
	if _, err := ws.StagePaletteImage(imaging.New(1, 1, color.Black)); err == nil {
		t.Error("expected error when the work directory does not exist")
	}
}

func TestFinalize(t *testing.T) {
	now := time.Date(2024, 3, 9, 14, 5, 7, 0, time.Local)
	ws, out := newWorkspace(t)

	var finals []string
	for range 3 {
		if err := ws.Prepare(); err != nil {
			t.Fatalf("Prepare() error = %v", err)
		}
		if err := os.WriteFile(filepath.Join(ws.Dir(), "thumbnail-1.PNG"), []byte("x"), 0o600); err != nil {
			t.Fatal(err)
		}
		final, err := ws.Finalize(now)
		if err != nil {
			t.Fatalf("Finalize() error = %v", err)
		}
		finals = append(finals, final)
	}

	want := []string{
		filepath.Join(out, "2024-03-09 14-05-07"),
		filepath.Join(out, "2024-03-09 14-05-07_2"),
		filepath.Join(out, "2024-03-09 14-05-07_3"),
	}
	for i := range want {
		if finals[i] != want[i] {
			t.Errorf("run %d saved to %s, want %s", i+1, finals[i], want[i])
		}
		if _, err := os.Stat(filepath.Join(want[i], "thumbnail-1.PNG")); err != nil {
			t.Errorf("artifact missing in %s: %v", want[i], err)
		}
	}
	if _, err := os.Stat(ws.Dir()); !os.IsNotExist(err) {
		t.Errorf("work directory still exists after Finalize: %v", err)
	}
}

func TestFinalizeWithoutWorkDir(t *testing.T) {
	ws, _ := newWorkspace(t)
	if _, err := ws.Finalize(time.Now()); err == nil {
		t.Error("expected error when there is nothing to move")
	}
}
