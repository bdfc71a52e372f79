package security

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"
)

func TestValidateFileName(t *testing.T) {
	base := filepath.Join("output", "tmp")
	tests := []struct {
		name    string
		file    string
		wantErr bool
	}{
		{"plain", "palette.png", false},
		{"dotted", "thumbnail-1.PNG", false},
		{"empty", "", true},
		{"parent", "..", true},
		{"traversal", "../escape.png", true},
		{"nested", "sub/file.png", true},
		{"backslash", `sub\file.png`, true},
		{"absolute", "/etc/passwd", true},
		{"dot", ".", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFileName(tt.file, base)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFileName(%q) error = %v, wantErr %v", tt.file, err, tt.wantErr)
			}
		})
	}
}

func TestReadAllLimited(t *testing.T) {
	data := bytes.Repeat([]byte("x"), 100)

	got, err := ReadAllLimited(bytes.NewReader(data), 100)
	if err != nil {
		t.Fatalf("ReadAllLimited() at limit error = %v", err)
	}
	if len(got) != 100 {
		t.Errorf("ReadAllLimited() read %d bytes, want 100", len(got))
	}

	_, err = ReadAllLimited(bytes.NewReader(data), 99)
	if !errors.Is(err, ErrSizeLimit) {
		t.Errorf("ReadAllLimited() over limit error = %v, want ErrSizeLimit", err)
	}
}
