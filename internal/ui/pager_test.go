package ui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToPagerWritesDirectlyWhenDisabled(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ToPager(&buf, "line one\nline two\n", PagerOptions{NoPager: true}))
	assert.Equal(t, "line one\nline two\n", buf.String())
}

func TestToPagerNoPagerEnv(t *testing.T) {
	t.Setenv("SPRINTREPORT_NO_PAGER", "1")
	assert.False(t, shouldUsePager(PagerOptions{}))
}

func TestGetPagerCommand(t *testing.T) {
	t.Setenv("SPRINTREPORT_PAGER", "")
	t.Setenv("PAGER", "")
	assert.Equal(t, "less", pagerCommand())

	t.Setenv("PAGER", "more")
	assert.Equal(t, "more", pagerCommand())

	t.Setenv("SPRINTREPORT_PAGER", "less -S")
	assert.Equal(t, "less -S", pagerCommand())
}

func TestContentHeight(t *testing.T) {
	assert.Equal(t, 0, contentHeight(""))
	assert.Equal(t, 1, contentHeight("one"))
	assert.Equal(t, 3, contentHeight("a\nb\nc"))
}
