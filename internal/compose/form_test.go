package compose

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	util "github.com/spec-kit/agent-console/pkg/util"
)

func TestModeFlagsMutuallyExclusive(t *testing.T) {
	var f Form

	f.SetSendAsEmail(true)
	f.SetInternalNote(true)
	assert.True(t, f.InternalNote)
	assert.False(t, f.SendAsEmail)

	f.SetSendAsEmail(true)
	assert.False(t, f.InternalNote)
	assert.True(t, f.SendAsEmail)
}

func TestAddFileCap(t *testing.T) {
	var f Form
	for i := 0; i < MaxAttachments; i++ {
		require.NoError(t, f.AddFile(File{Name: fmt.Sprintf("f%d.png", i)}))
	}
	err := f.AddFile(File{Name: "one-too-many.png"})
	assert.True(t, util.IsValidation(err))
	assert.Len(t, f.Files(), MaxAttachments)
}

func TestRemoveFile(t *testing.T) {
	var f Form
	require.NoError(t, f.AddFile(File{Name: "a"}))
	require.NoError(t, f.AddFile(File{Name: "b"}))

	f.RemoveFile(0)
	files := f.Files()
	require.Len(t, files, 1)
	assert.Equal(t, "b", files[0].Name)

	f.RemoveFile(5) // out of range, ignored
	assert.Len(t, f.Files(), 1)
}

func TestValidate(t *testing.T) {
	var f Form
	assert.True(t, util.IsValidation(f.Validate()))

	f.Text = "   "
	assert.True(t, util.IsValidation(f.Validate()))

	f.Text = "hello"
	assert.NoError(t, f.Validate())

	f.Text = ""
	require.NoError(t, f.AddFile(File{Name: "receipt.pdf"}))
	assert.NoError(t, f.Validate())
}

func TestClear(t *testing.T) {
	var f Form
	f.Text = "draft"
	f.SetInternalNote(true)
	require.NoError(t, f.AddFile(File{Name: "a"}))

	f.Clear()
	assert.Empty(t, f.Text)
	assert.False(t, f.InternalNote)
	assert.False(t, f.SendAsEmail)
	assert.Empty(t, f.Files())
}
