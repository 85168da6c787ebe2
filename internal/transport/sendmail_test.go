package transport_test

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaharia-lab/mailcast/internal/config"
	"github.com/shaharia-lab/mailcast/internal/transport"
)

func TestEncodeMessage(t *testing.T) {
	raw, err := transport.EncodeMessage(transport.Message{
		From:    "bot@example.com",
		To:      "mock@b.io",
		Subject: "hi",
		Text:    "plain body",
		HTML:    "<p>plain body</p>",
		ReplyTo: "noreply@example.com",
	}, "\n")
	require.NoError(t, err)

	s := string(raw)
	assert.Contains(t, s, "From: bot@example.com\n")
	assert.Contains(t, s, "To: mock@b.io\n")
	assert.Contains(t, s, "Reply-To: noreply@example.com\n")
	assert.Contains(t, s, "Subject: hi\n")
	assert.Contains(t, s, "Content-Type: multipart/alternative")
	assert.Contains(t, s, "plain body")
	assert.Contains(t, s, "<p>plain body</p>")
	assert.NotContains(t, s, "\r\n")
}

func TestEncodeMessage_WindowsNewlines(t *testing.T) {
	raw, err := transport.EncodeMessage(transport.Message{
		From: "bot@example.com",
		To:   "mock@b.io",
	}, "\r\n")
	require.NoError(t, err)
	assert.Contains(t, string(raw), "From: bot@example.com\r\n")
}

func TestEncodeMessage_MissingAddresses(t *testing.T) {
	_, err := transport.EncodeMessage(transport.Message{From: "bot@example.com"}, "\n")
	assert.Error(t, err)
	_, err = transport.EncodeMessage(transport.Message{To: "mock@b.io"}, "\n")
	assert.Error(t, err)
}

func TestSendmailTransport_Send(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}

	dir := t.TempDir()
	outFile := filepath.Join(dir, "captured.eml")
	script := filepath.Join(dir, "fake-sendmail")
	require.NoError(t, os.WriteFile(script,
		[]byte("#!/bin/sh\ncat > "+outFile+"\necho \"$@\" > "+outFile+".args\n"), 0700))

	tr := transport.NewSendmail(config.TransportConfig{
		Kind: config.TransportSendmail,
		Path: script,
	})

	err := tr.Send(t.Context(), transport.Message{
		From:    "bot@example.com",
		To:      "mock@b.io",
		Subject: "hi",
		Text:    "",
		HTML:    "<p></p>",
	})
	require.NoError(t, err)

	captured, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Contains(t, string(captured), "Subject: hi")
	assert.Contains(t, string(captured), "<p></p>")

	args, err := os.ReadFile(outFile + ".args")
	require.NoError(t, err)
	assert.Equal(t, "-i -f bot@example.com -- mock@b.io", strings.TrimSpace(string(args)))
}

func TestSendmailTransport_BinaryFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}

	dir := t.TempDir()
	script := filepath.Join(dir, "failing-sendmail")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho 'queue full' >&2\nexit 75\n"), 0700))

	tr := transport.NewSendmail(config.TransportConfig{Kind: config.TransportSendmail, Path: script})

	err := tr.Send(t.Context(), transport.Message{From: "bot@example.com", To: "mock@b.io"})
	var serr *transport.SendError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "mock@b.io", serr.Recipient)
	assert.Contains(t, serr.Error(), "queue full")
}
