package security

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateFilePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"valid relative path", "config.json", false},
		{"valid nested path", "conf/app/config.json", false},
		{"empty path", "", true},
		{"directory traversal", "../etc/passwd", true},
		{"nested traversal", "conf/../../etc/passwd", true},
		{"absolute path", "/etc/passwd", true},
		{"dot prefix resolves clean", "./config.json", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFilePath(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePathWithinBase(t *testing.T) {
	base := filepath.Join("/var", "lib", "attachments")

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"inside base", filepath.Join(base, "attach_1.jpg"), false},
		{"base itself", base, false},
		{"sibling directory", "/var/lib/other/attach_1.jpg", true},
		{"prefix but different dir", base + "-evil/attach_1.jpg", true},
		{"escapes via traversal", filepath.Join(base, "..", "other", "x"), true},
		{"empty path", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePathWithinBase(tt.path, base)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain name", "photo.jpg", "photo.jpg"},
		{"path stripped", "dir/sub/photo.jpg", "photo.jpg"},
		{"traversal stripped", "../../etc/passwd", "passwd"},
		{"windows separators", `c:\temp\photo.jpg`, "photo.jpg"},
		{"empty becomes file", "", "file"},
		{"dot becomes file", ".", "file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFileName(tt.in))
		})
	}
}
