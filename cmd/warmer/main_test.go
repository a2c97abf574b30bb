package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWarmerFlags(t *testing.T) {
	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--once", "--pages", "2", "--pause", "250ms", "--skip-projects"}))

	f := cmd.Flags()
	once, err := f.GetBool("once")
	require.NoError(t, err)
	assert.True(t, once)

	pages, err := f.GetInt("pages")
	require.NoError(t, err)
	assert.Equal(t, 2, pages)

	pause, err := f.GetDuration("pause")
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, pause)

	skip, err := f.GetBool("skip-projects")
	require.NoError(t, err)
	assert.True(t, skip)

	perPage, err := f.GetInt("per-page")
	require.NoError(t, err)
	assert.Equal(t, 10, perPage)
}
