package styles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderMarkdown(t *testing.T) {
	out, err := RenderMarkdown("# Result\n\n`addi r3,r3,1` is **identical**.\n", 80)
	require.NoError(t, err)
	assert.Contains(t, out, "Result")
	assert.Contains(t, out, "identical")
}
