package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iamNilotpal/cc0/pkg/logger"
	"github.com/iamNilotpal/cc0/pkg/options"
)

func testOptions(t *testing.T) options.Options {
	t.Helper()
	opts := options.NewDefaultOptions()
	opts.DataDir = t.TempDir()
	return opts
}

func TestNew_OpensEveryStoreCacheAndVM(t *testing.T) {
	t.Parallel()

	opts := testOptions(t)
	eng, err := New(context.Background(), &Config{Options: &opts, Logger: logger.Nop()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })

	require.NotNil(t, eng.Strings)
	require.NotNil(t, eng.Tokens)
	require.NotNil(t, eng.AST)
	require.NotNil(t, eng.Symbols)
	require.NotNil(t, eng.Code)
	require.NotNil(t, eng.Cache)
	require.NotNil(t, eng.VM)
}

func TestClose_IsIdempotentAndReturnsErrorOnSecondCall(t *testing.T) {
	t.Parallel()

	opts := testOptions(t)
	eng, err := New(context.Background(), &Config{Options: &opts, Logger: logger.Nop()})
	require.NoError(t, err)

	require.NoError(t, eng.Close())

	err = eng.Close()
	require.ErrorIs(t, err, ErrEngineClosed)
}

func TestNew_ReopeningSameDataDirRecoversState(t *testing.T) {
	t.Parallel()

	opts := testOptions(t)

	eng, err := New(context.Background(), &Config{Options: &opts, Logger: logger.Nop()})
	require.NoError(t, err)

	offset, err := eng.Strings.Intern("hello")
	require.NoError(t, err)
	require.NoError(t, eng.Close())

	reopened, err := New(context.Background(), &Config{Options: &opts, Logger: logger.Nop()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	got, err := reopened.Strings.Get(offset)
	require.NoError(t, err)
	require.Equal(t, "hello", got)
}
