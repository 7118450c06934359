package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeDefaults(t *testing.T) {
	fm := NewFlagManager()
	fm.InitializeDefaults()

	assert.True(t, fm.IsEnabled(FlagDispatch))
	assert.True(t, fm.IsEnabled(FlagManualSend))
	assert.True(t, fm.IsEnabled(FlagRetentionCleanup))
	assert.False(t, fm.IsEnabled("unknown"))
}

func TestEnableDisable(t *testing.T) {
	fm := NewFlagManager()
	fm.InitializeDefaults()

	require.NoError(t, fm.Disable(FlagDispatch))
	assert.False(t, fm.IsEnabled(FlagDispatch))

	require.NoError(t, fm.Enable(FlagDispatch))
	assert.True(t, fm.IsEnabled(FlagDispatch))

	err := fm.Enable("unknown")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown")
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("INVOICEWA_FEATURE_DISPATCH", "false")
	t.Setenv("INVOICEWA_FEATURE_MANUAL_SEND", "not-a-bool")

	fm := NewFlagManager()
	fm.InitializeDefaults()
	fm.LoadFromEnv()

	assert.False(t, fm.IsEnabled(FlagDispatch))
	// Unparseable values keep the default.
	assert.True(t, fm.IsEnabled(FlagManualSend))
}

func TestListFlagsReturnsCopies(t *testing.T) {
	fm := NewFlagManager()
	fm.InitializeDefaults()

	flags := fm.ListFlags()
	require.Len(t, flags, len(DefaultFlags))

	for _, flag := range flags {
		if flag.Name == FlagDispatch {
			flag.Enabled = false
		}
	}
	assert.True(t, fm.IsEnabled(FlagDispatch))
}
