package compose

import (
	"strings"

	util "github.com/spec-kit/agent-console/pkg/util"
)

// MaxAttachments caps files per reply submission. Exceeding it is a
// validation error, never a silent truncation.
const MaxAttachments = 5

// File is a staged upload. The form owns it until the reply is submitted
// successfully or the agent removes it.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Form is an agent's reply draft: text, mode flags, and staged files.
// InternalNote and SendAsEmail are mutually exclusive; setting one clears the
// other. On submission failure the form is left populated so no drafted text
// is lost.
type Form struct {
	Text         string
	InternalNote bool
	SendAsEmail  bool
	files        []File
}

// SetInternalNote toggles internal-note mode, clearing send-as-email.
func (f *Form) SetInternalNote(v bool) {
	f.InternalNote = v
	if v {
		f.SendAsEmail = false
	}
}

// SetSendAsEmail toggles email mode, clearing internal-note.
func (f *Form) SetSendAsEmail(v bool) {
	f.SendAsEmail = v
	if v {
		f.InternalNote = false
	}
}

// AddFile stages a file, enforcing the attachment cap at add time.
func (f *Form) AddFile(file File) error {
	if len(f.files) >= MaxAttachments {
		return util.NewValidationError("too many attachments", map[string]any{
			"limit": MaxAttachments,
		})
	}
	f.files = append(f.files, file)
	return nil
}

// RemoveFile drops the staged file at index i. Out-of-range indexes are
// ignored.
func (f *Form) RemoveFile(i int) {
	if i < 0 || i >= len(f.files) {
		return
	}
	f.files = append(f.files[:i], f.files[i+1:]...)
}

// Files returns a copy of the staged files.
func (f *Form) Files() []File {
	out := make([]File, len(f.files))
	copy(out, f.files)
	return out
}

// Validate rejects an empty submission: trimmed text must be non-empty or at
// least one file staged. The cap is re-checked for drafts built outside
// AddFile.
func (f *Form) Validate() error {
	if strings.TrimSpace(f.Text) == "" && len(f.files) == 0 {
		return util.NewValidationError("reply requires text or at least one attachment", nil)
	}
	if len(f.files) > MaxAttachments {
		return util.NewValidationError("too many attachments", map[string]any{
			"limit": MaxAttachments,
			"got":   len(f.files),
		})
	}
	return nil
}

// Clear resets the form after a successful submission.
func (f *Form) Clear() {
	f.Text = ""
	f.InternalNote = false
	f.SendAsEmail = false
	f.files = nil
}
