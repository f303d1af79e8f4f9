package export

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/sendlite/internal/compose"
	"github.com/nhle/sendlite/internal/model"
)

func sampleResolution() *compose.Resolution {
	return &compose.Resolution{
		Request: model.ComposeRequest{
			Name:      "Launch",
			Subject:   "Welcome aboard",
			FromEmail: "me@x.com",
			TextBody:  "Hello there.",
			ToExtra:   []string{"extra@x.com"},
		},
		To: []model.Contact{
			{ID: 1, Email: "ada@x.com", FirstName: "Ada", LastName: "Lovelace"},
		},
		Bcc: []model.Contact{
			{ID: 2, Email: "hidden@x.com"},
		},
	}
}

func TestWriteDraftHeaders(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteDraft(&buf, sampleResolution()))

	msg := buf.String()
	assert.Contains(t, msg, "Subject: Welcome aboard")
	assert.Contains(t, msg, "me@x.com")
	assert.Contains(t, msg, "ada@x.com")
	assert.Contains(t, msg, "extra@x.com")
	// Bcc stays visible: the file is a local preview.
	assert.Contains(t, msg, "hidden@x.com")
	assert.Contains(t, msg, "Hello there.")
}

func TestWriteDraftWithHTMLAlternative(t *testing.T) {
	res := sampleResolution()
	res.Request.HTMLBody = "<p>Hello there.</p>"

	var buf bytes.Buffer
	require.NoError(t, WriteDraft(&buf, res))

	msg := buf.String()
	assert.Contains(t, msg, "text/plain")
	assert.Contains(t, msg, "text/html")
	assert.Contains(t, msg, "<p>Hello there.</p>")
}

func TestSaveDraft(t *testing.T) {
	dir := t.TempDir()

	path, err := SaveDraft(dir, sampleResolution())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, dir))
	assert.True(t, strings.HasSuffix(path, ".eml"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Subject: Welcome aboard")
}
