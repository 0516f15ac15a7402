package index

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignature(t *testing.T) {
	assert := require.New(t)
	modifiedAt := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	base := Signature("/docs/a.txt", modifiedAt)
	assert.Equal(base, Signature("/docs/a.txt", modifiedAt), "signature should be stable for an unchanged file")
	assert.NotEqual(base, Signature("/docs/b.txt", modifiedAt), "signature should change with the path")
	assert.NotEqual(base, Signature("/docs/a.txt", modifiedAt.Add(time.Second)), "signature should change with the modification time")
	assert.NotEqual(base, Signature("/docs/a.txt", modifiedAt.Add(time.Nanosecond)), "sub-second modifications should be detected")
}
