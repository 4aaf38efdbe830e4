package candidate

import (
	"fmt"

	jsonpatch "github.com/evanphx/json-patch"

	"github.com/opendaylight/yangtools-sub038/encode"
	"github.com/opendaylight/yangtools-sub038/normalized"
)

var emptyDocument = []byte("{}")

// MergePatch returns the RFC 7386 merge patch turning the JSON rendering
// of the candidate root before the change into its rendering after it. enc
// must be a JSON codec; a missing side renders as an empty document.
func MergePatch(c *Candidate, enc encode.Codec) ([]byte, error) {
	if ct := enc.ContentType(); ct != encode.ContentTypeJSON {
		return nil, fmt.Errorf("candidate: merge patches need a JSON codec, got %s", ct)
	}
	root := c.Root
	if root.existedBefore() && root.Before == nil {
		return nil, fmt.Errorf("%w: %v has no before-image", ErrDetached, root.Name)
	}
	if root.existsAfter() && root.After == nil {
		return nil, fmt.Errorf("%w: %v has no after-image", ErrDetached, root.Name)
	}
	before, err := document(enc, root.Before)
	if err != nil {
		return nil, err
	}
	after, err := document(enc, root.After)
	if err != nil {
		return nil, err
	}
	return jsonpatch.CreateMergePatch(before, after)
}

func document(enc encode.Codec, n normalized.Node) ([]byte, error) {
	if n == nil {
		return emptyDocument, nil
	}
	return enc.Marshal(n)
}
