package docstore

import (
	"crypto/md5"
	"fmt"
	"strconv"
	"strings"

	"github.com/fekuna/omnipos-datastore/internal/model"
)

// Revisions are "generation-digest" tokens. The generation counter makes
// the per-document history strictly increasing; the digest binds the token
// to the previous revision and the written content. Only the store parses
// them — callers compare for equality and nothing else.
func nextRevision(prev model.Revision, body []byte) model.Revision {
	gen := generation(prev) + 1
	h := md5.New()
	h.Write([]byte(prev))
	h.Write([]byte{0})
	h.Write(body)
	return model.Revision(fmt.Sprintf("%d-%x", gen, h.Sum(nil)))
}

func generation(rev model.Revision) int {
	s := string(rev)
	idx := strings.IndexByte(s, '-')
	if idx <= 0 {
		return 0
	}
	gen, err := strconv.Atoi(s[:idx])
	if err != nil {
		return 0
	}
	return gen
}
