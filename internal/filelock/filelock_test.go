package filelock

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pacmjs/pacm/internal/pacmerr"
)

func TestAcquireAndUnlock(t *testing.T) {
	dir := t.TempDir()

	lock, err := Acquire(dir)
	require.NoError(t, err)
	require.NoError(t, lock.Unlock())
}

func TestAcquireFailsWhenAlreadyHeld(t *testing.T) {
	dir := t.TempDir()

	first, err := Acquire(dir)
	require.NoError(t, err)
	defer func() { _ = first.Unlock() }()

	_, err = Acquire(dir)
	require.Error(t, err)

	var tagged pacmerr.Tagged
	require.ErrorAs(t, err, &tagged)
	require.Equal(t, "PACM_CONCURRENT_OPERATION", tagged.Tag())
}
