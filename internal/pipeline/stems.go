package pipeline

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ironsheep/tourguide/internal/render"
)

// artifactStems assigns each image the file stem its outputs are named
// after. A stem shared by several images in the batch (room.jpg, room.png)
// gets the extension appended, plus a counter if that name is taken too.
// Comparison ignores case so outputs cannot clash on case-insensitive
// filesystems.
func artifactStems(paths []string) map[string]string {
	count := make(map[string]int, len(paths))
	for _, p := range paths {
		count[strings.ToLower(render.Stem(p))]++
	}

	out := make(map[string]string, len(paths))
	taken := make(map[string]bool, len(paths))
	for _, p := range paths {
		if s := render.Stem(p); count[strings.ToLower(s)] == 1 {
			out[p] = s
			taken[strings.ToLower(s)] = true
		}
	}

	for _, p := range paths {
		if _, ok := out[p]; ok {
			continue
		}
		stem := render.Stem(p)
		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(p)), ".")
		name := stem + "_" + ext
		for n := 2; taken[strings.ToLower(name)]; n++ {
			name = fmt.Sprintf("%s_%s_%d", stem, ext, n)
		}
		taken[strings.ToLower(name)] = true
		out[p] = name
	}
	return out
}
