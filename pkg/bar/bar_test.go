package bar

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribe(t *testing.T) {
	assert.Equal(t, "[cyan][1.3][reset] [green]PASS[reset]", Describe(1, 3, "PASS"))
	assert.Equal(t, "[cyan][2.3][reset] [red]ABORTED[reset]", Describe(2, 3, "ABORTED"))
}

func TestNewWriter(t *testing.T) {
	var buf bytes.Buffer
	pb := NewWriter(&buf, 2, "running")
	require.NoError(t, pb.Add(1))
	require.NoError(t, pb.Add(1))
	assert.Contains(t, buf.String(), "running")
}
