package debug

import (
	diffpatch "github.com/sergi/go-diff/diffmatchpatch"

	"github.com/opendaylight/yangtools-sub038/normalized"
)

// DiffDump renders a line diff of the dumps of two trees, in the
// "@@ -l,s +l,s @@" patch text form. Equal trees give "".
func DiffDump(from, to normalized.Node) string {
	a, b := Sprint(from), Sprint(to)
	if a == b {
		return ""
	}
	dmp := diffpatch.New()
	ra, rb, lines := dmp.DiffLinesToRunes(a, b)
	diffs := dmp.DiffCharsToLines(dmp.DiffMainRunes(ra, rb, false), lines)
	return dmp.PatchToText(dmp.PatchMake(a, diffs))
}
