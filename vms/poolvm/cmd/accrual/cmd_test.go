// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package accrual

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/lending/vms/poolvm/pool"
)

func TestAccrualCommand(t *testing.T) {
	require := require.New(t)

	c := Command()
	out := &bytes.Buffer{}
	c.SetOut(out)
	c.SetArgs([]string{"--util=5000000", "--elapsed=0"})
	require.NoError(c.Execute())
	require.Contains(out.String(), "accrual:  1000000000\n")
	require.Contains(out.String(), "ir mod:   1000000000\n")
}

func TestParseFlags(t *testing.T) {
	require := require.New(t)

	c := Command()
	config, err := ParseFlags(c.Flags(), []string{"--reactivity=100", "--elapsed=60"})
	require.NoError(err)
	require.Equal(uint32(100), config.Reserve.Reactivity)
	require.Equal(uint64(60), config.Elapsed)
	require.Equal(uint32(7_500_000), config.Reserve.Util)

	c = Command()
	_, err = ParseFlags(c.Flags(), []string{"--max-util=1000"})
	require.ErrorIs(err, pool.ErrInvalidReserveMetadata)
}
