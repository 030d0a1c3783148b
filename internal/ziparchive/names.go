package ziparchive

import (
	"path"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/simplifiedchinese"
)

// DecodeName turns a raw entry name into display text. Names are tried as
// UTF-8, then GBK, then CP437, the legacy ZIP default.
func DecodeName(raw string) string {
	if utf8.ValidString(raw) && !strings.ContainsAny(raw, "\uFFFD\u25A1") {
		return raw
	}
	if s, err := simplifiedchinese.GBK.NewDecoder().String(raw); err == nil && !strings.ContainsRune(s, utf8.RuneError) {
		return s
	}
	if s, err := charmap.CodePage437.NewDecoder().String(raw); err == nil {
		return s
	}
	return strings.ToValidUTF8(raw, "\uFFFD")
}

// Basename returns the last path element, treating \ as a separator.
func Basename(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		return name[i+1:]
	}
	return name
}

// Stem returns the base name without its extension.
func Stem(name string) string {
	base := Basename(name)
	return strings.TrimSuffix(base, path.Ext(base))
}

// isJunk reports entries that never carry content: macOS resource forks
// and Finder metadata.
func isJunk(decoded, raw string) bool {
	d := strings.ToLower(strings.ReplaceAll(decoded, `\`, "/"))
	r := strings.ToLower(strings.ReplaceAll(raw, `\`, "/"))
	if strings.HasPrefix(d, "__macosx/") || strings.HasPrefix(r, "__macosx/") {
		return true
	}
	base := strings.ToLower(Basename(decoded))
	return strings.HasPrefix(base, "._") || base == ".ds_store"
}

func isDir(raw string) bool {
	return strings.HasSuffix(raw, "/") || strings.HasSuffix(raw, `\`)
}
