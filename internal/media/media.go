// Package media holds the catalog domain model: stored objects, their
// derived classification, and the lookup rules that join face matches back
// to catalog entries.
package media

import (
	_ "embed"
	"fmt"
	"path"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// KeyPrefix is the namespace all uploaded objects live under.
const KeyPrefix = "uploads/"

// Type is the derived classification of a stored object.
type Type string

const (
	TypeImage   Type = "image"
	TypeVideo   Type = "video"
	TypeUnknown Type = "unknown"
)

// Object is one stored file as seen by a catalog listing. The URL is a
// time-limited signed reference regenerated on every listing; it must never
// be persisted or cached beyond one listing response.
type Object struct {
	Key          string    `json:"key"`
	URL          string    `json:"url"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
	Type         Type      `json:"type"`
	FileName     string    `json:"fileName"`
}

//go:embed formats.yaml
var formatsYAML []byte

type formatTable struct {
	Image     []string `yaml:"image"`
	Video     []string `yaml:"video"`
	Indexable []string `yaml:"indexable"`
}

var formats formatTable

func init() {
	if err := yaml.Unmarshal(formatsYAML, &formats); err != nil {
		// Embedded file, cannot fail in practice.
		panic("failed to unmarshal embedded formats.yaml: " + err.Error())
	}
}

// hasExtension reports whether the key's extension (case-insensitive,
// without the dot) is in the given list.
func hasExtension(key string, exts []string) bool {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(key)), ".")
	if ext == "" {
		return false
	}
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

// Classify derives the object type from the key's extension. It is computed
// at listing time and is not authoritative: a renamed object reclassifies.
func Classify(key string) Type {
	switch {
	case hasExtension(key, formats.Video):
		return TypeVideo
	case hasExtension(key, formats.Image):
		return TypeImage
	default:
		return TypeUnknown
	}
}

// Indexable reports whether the face indexer should attempt the object.
func Indexable(key string) bool {
	return hasExtension(key, formats.Indexable)
}

// FileName returns the last path segment of a key.
func FileName(key string) string {
	if name := path.Base(key); name != "." && name != "/" {
		return name
	}
	return key
}

// removeDiacritics strips combining marks from a string ("Jiří" -> "Jiri").
func removeDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// SanitizeFileName normalizes an original file name for use inside an object
// key. Diacritics are stripped first, then everything outside
// [A-Za-z0-9.-] becomes an underscore.
func SanitizeFileName(name string) string {
	name = removeDiacritics(name)
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-':
			return r
		default:
			return '_'
		}
	}, name)
}

// ObjectKey derives the destination key for an upload: uploads/{millis}-{name}.
// Keys are unique by timestamp plus name; a collision needs the same
// sanitized name within the same millisecond.
func ObjectKey(now time.Time, fileName string) string {
	return fmt.Sprintf("%s%d-%s", KeyPrefix, now.UnixMilli(), SanitizeFileName(fileName))
}

// FilterByExternalIDs narrows a catalog to entries whose file name or key
// contains one of the given external image identifiers.
//
// This is deliberately substring containment, not equality: the vision
// service stores a single string tag per face, and tags written by older
// uploads may be bare file names while keys carry the uploads/{ts}- prefix.
// Tightening to equality would orphan existing tagged faces. The known cost
// is a false positive when one file name is a substring of another
// (img1.jpg matches a tag for img10.jpg).
func FilterByExternalIDs(objects []Object, externalIDs []string) []Object {
	if len(externalIDs) == 0 {
		return nil
	}
	var filtered []Object
	for _, obj := range objects {
		for _, id := range externalIDs {
			if id == "" {
				continue
			}
			if strings.Contains(obj.FileName, id) || strings.Contains(obj.Key, id) {
				filtered = append(filtered, obj)
				break
			}
		}
	}
	return filtered
}
