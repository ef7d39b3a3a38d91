package track

import (
	"path/filepath"
	"strings"
)

// baseNameWithoutExt returns a file's base name with its extension removed,
// used as the title fallback (spec §4.6: "title asc with a file-stem
// fallback") when no tag provided a title.
func baseNameWithoutExt(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
