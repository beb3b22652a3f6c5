package media

import (
	"strings"
	"testing"
	"time"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		key  string
		want Type
	}{
		{"uploads/123-photo.jpg", TypeImage},
		{"uploads/123-photo.JPEG", TypeImage},
		{"uploads/123-photo.png", TypeImage},
		{"uploads/123-anim.gif", TypeImage},
		{"uploads/123-pic.webp", TypeImage},
		{"uploads/123-scan.bmp", TypeImage},
		{"uploads/123-clip.mp4", TypeVideo},
		{"uploads/123-clip.MOV", TypeVideo},
		{"uploads/123-clip.avi", TypeVideo},
		{"uploads/123-clip.wmv", TypeVideo},
		{"uploads/123-clip.flv", TypeVideo},
		{"uploads/123-clip.webm", TypeVideo},
		{"uploads/123-notes.txt", TypeUnknown},
		{"uploads/123-noext", TypeUnknown},
		{"uploads/123-", TypeUnknown},
	}

	for _, tt := range tests {
		if got := Classify(tt.key); got != tt.want {
			t.Errorf("Classify(%q) = %s, want %s", tt.key, got, tt.want)
		}
	}
}

func TestIndexable(t *testing.T) {
	indexable := []string{"a.jpg", "b.JPEG", "c.png", "d.gif", "e.webp"}
	for _, key := range indexable {
		if !Indexable(key) {
			t.Errorf("Indexable(%q) = false, want true", key)
		}
	}

	// bmp is an image for classification but not indexable.
	notIndexable := []string{"a.bmp", "b.mp4", "c.txt", "d"}
	for _, key := range notIndexable {
		if Indexable(key) {
			t.Errorf("Indexable(%q) = true, want false", key)
		}
	}
}

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"photo.jpg", "photo.jpg"},
		{"my photo.jpg", "my_photo.jpg"},
		{"cat (1).png", "cat__1_.png"},
		{"Jiří.jpg", "Jiri.jpg"},
		{"café.png", "cafe.png"},
		{"clip#v2.mp4", "clip_v2.mp4"},
		{"bár/báz.gif", "bar_baz.gif"},
	}

	for _, tt := range tests {
		if got := SanitizeFileName(tt.in); got != tt.want {
			t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeFileName_OutputAlphabet(t *testing.T) {
	inputs := []string{"weird名前.jpg", "a b\tc\nd.png", "!@#$%^&*().gif", "émoji🎉.webp"}
	for _, in := range inputs {
		got := SanitizeFileName(in)
		for _, r := range got {
			ok := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
				(r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_'
			if !ok {
				t.Errorf("SanitizeFileName(%q) produced disallowed rune %q in %q", in, r, got)
			}
		}
	}
}

func TestObjectKey(t *testing.T) {
	now := time.UnixMilli(1699999999000)
	key := ObjectKey(now, "my cat.png")

	if !strings.HasPrefix(key, KeyPrefix) {
		t.Errorf("key %q should start with %q", key, KeyPrefix)
	}
	if key != "uploads/1699999999000-my_cat.png" {
		t.Errorf("ObjectKey = %q, want uploads/1699999999000-my_cat.png", key)
	}
	if !strings.HasSuffix(key, SanitizeFileName("my cat.png")) {
		t.Errorf("key %q should end with the sanitized name", key)
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"uploads/1699999999-photo1.jpg", "1699999999-photo1.jpg"},
		{"photo.jpg", "photo.jpg"},
		{"a/b/c.png", "c.png"},
	}
	for _, tt := range tests {
		if got := FileName(tt.key); got != tt.want {
			t.Errorf("FileName(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestFilterByExternalIDs_SubstringContainment(t *testing.T) {
	catalog := []Object{
		{Key: "uploads/1699999999-photo1.jpg", FileName: "1699999999-photo1.jpg"},
		{Key: "uploads/1699999998-photo2.jpg", FileName: "1699999998-photo2.jpg"},
		{Key: "uploads/1699999997-clip.mp4", FileName: "1699999997-clip.mp4"},
	}

	filtered := FilterByExternalIDs(catalog, []string{"photo1.jpg"})

	if len(filtered) != 1 {
		t.Fatalf("expected 1 match, got %d", len(filtered))
	}
	if filtered[0].Key != "uploads/1699999999-photo1.jpg" {
		t.Errorf("unexpected match %q", filtered[0].Key)
	}
}

func TestFilterByExternalIDs_FalsePositiveIsDocumentedBehavior(t *testing.T) {
	// img1.jpg is a substring of img10.jpg's tag; both match. This is the
	// accepted looseness of the containment join.
	catalog := []Object{
		{Key: "uploads/1-img1.jpg", FileName: "1-img1.jpg"},
		{Key: "uploads/2-img10.jpg", FileName: "2-img10.jpg"},
	}

	filtered := FilterByExternalIDs(catalog, []string{"img1.jpg"})

	if len(filtered) != 2 {
		t.Fatalf("expected substring join to match both entries, got %d", len(filtered))
	}
}

func TestFilterByExternalIDs_Empty(t *testing.T) {
	catalog := []Object{{Key: "uploads/1-a.jpg", FileName: "1-a.jpg"}}

	if got := FilterByExternalIDs(catalog, nil); got != nil {
		t.Errorf("nil IDs should filter to nothing, got %v", got)
	}
	if got := FilterByExternalIDs(catalog, []string{""}); got != nil {
		t.Errorf("empty ID should never match, got %v", got)
	}
}

func TestFilterByExternalIDs_NoDuplicateEntries(t *testing.T) {
	catalog := []Object{{Key: "uploads/1-a.jpg", FileName: "1-a.jpg"}}

	filtered := FilterByExternalIDs(catalog, []string{"a.jpg", "1-a.jpg"})

	if len(filtered) != 1 {
		t.Fatalf("entry matching two IDs must appear once, got %d", len(filtered))
	}
}
