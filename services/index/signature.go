package index

import (
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Signature identifies one version of a file. It changes whenever the path or
// the modification time changes and is the document's only key in the index.
func Signature(path string, modifiedAt time.Time) uint64 {
	return xxhash.Sum64String(path + "_" + strconv.FormatInt(modifiedAt.UnixNano(), 10))
}
