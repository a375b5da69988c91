// (c) 2024, Fragment Foundation. All rights reserved.
// See the file LICENSE for licensing terms.

package precompileconfig

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUpgrade(t *testing.T) {
	require := require.New(t)

	ts := uint64(100)
	upgrade := Upgrade{BlockTimestamp: &ts}

	require.Equal(&ts, upgrade.Timestamp())
	require.False(upgrade.IsDisabled())

	disable := Upgrade{BlockTimestamp: &ts, Disable: true}
	require.True(disable.IsDisabled())
	require.False(upgrade.Equal(&disable))

	same := ts
	require.True(upgrade.Equal(&Upgrade{BlockTimestamp: &same}))
	require.False(upgrade.Equal(nil))

	other := uint64(101)
	require.False(upgrade.Equal(&Upgrade{BlockTimestamp: &other}))
	require.False(upgrade.Equal(&Upgrade{}))
}
