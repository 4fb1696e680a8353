package normalize

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gyeh/mrfingest/internal/model"
)

func TestNormalizeCode(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"70551", "70551"},
		{" 70551 ", "70551"},
		{"ms-drg 460", "MSDRG460"},
		{"00904-6719-61", "00904671961"},
		{"", ""},
		{"  ", ""},
		{"---", ""},
	}
	for _, c := range cases {
		if got := NormalizeCode(c.in); got != c.want {
			t.Errorf("NormalizeCode(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeName(t *testing.T) {
	if got := NormalizeName("  Acme   HEALTH  "); got != "acme health" {
		t.Errorf("got %q", got)
	}
	if got := NormalizeName(""); got != "" {
		t.Errorf("empty: got %q", got)
	}
}

func TestParseDate(t *testing.T) {
	want := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"2025-07-01", "2025-7-1", "07/01/2025", "7/1/2025", "July 1, 2025"} {
		got := ParseDate(in)
		if got == nil {
			t.Errorf("ParseDate(%q) = nil", in)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("ParseDate(%q) = %v, want %v", in, got, want)
		}
	}
	if got := ParseDate("not a date"); got != nil {
		t.Errorf("garbage: got %v, want nil", got)
	}
	if got := ParseDate(""); got != nil {
		t.Errorf("empty: got %v, want nil", got)
	}
}

func TestSearchText(t *testing.T) {
	codes := []model.CodeInformation{
		{Code: "70551", Type: model.CodeTypeCPT},
		{Code: "611", Type: model.CodeTypeRC},
	}
	got := SearchText("MRI Brain w/o Contrast", codes)
	want := "mri brain w o contrast 70551 611"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	if got := SearchText("", nil); got != "" {
		t.Errorf("empty: got %q", got)
	}
}

func TestFileHash(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.json")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := FileHash(path)
	if err != nil {
		t.Fatalf("FileHash: %v", err)
	}
	want := "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}

	if _, err := FileHash(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing file")
	}
}
