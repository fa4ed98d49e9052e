// internal/pipeline/annotate.go
package pipeline

import (
	"strconv"
	"strings"

	"github.com/valpere/reachlist/internal/utils"
)

// Annotate appends "|<latencyMs>ms" to the entry's fragment label. Entries
// without a fragment, and entries whose fragment cannot be decoded, are
// returned unchanged.
func Annotate(entry string, latencyMs int64, enabled bool) string {
	if !enabled {
		return entry
	}
	annotated, err := AnnotateEntry(entry, latencyMs)
	if err != nil {
		return entry
	}
	return annotated
}

// AnnotateEntry rewrites the fragment after the first '#'. Later '#'
// characters belong to the label. The URL part is never modified.
func AnnotateEntry(entry string, latencyMs int64) (string, error) {
	urlPart, fragment, found := strings.Cut(entry, "#")
	if !found {
		return entry, nil
	}

	label, err := utils.DecodeURIComponent(fragment)
	if err != nil {
		return entry, err
	}

	return urlPart + "#" + utils.EncodeURIComponent(label+"|"+strconv.FormatInt(latencyMs, 10)+"ms"), nil
}
