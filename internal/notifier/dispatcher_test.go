package notifier_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaharia-lab/mailcast/internal/config"
	"github.com/shaharia-lab/mailcast/internal/directory"
	"github.com/shaharia-lab/mailcast/internal/notifier"
	"github.com/shaharia-lab/mailcast/internal/storage"
	"github.com/shaharia-lab/mailcast/internal/transport"
)

// --- fake transport ---

type fakeTransport struct {
	sent    []transport.Message
	failFor map[string]error // keyed by recipient
}

func (f *fakeTransport) Name() string { return "fake" }

func (f *fakeTransport) Send(_ context.Context, msg transport.Message) error {
	if err, ok := f.failFor[msg.To]; ok {
		return &transport.SendError{Recipient: msg.To, Err: err}
	}
	f.sent = append(f.sent, msg)
	return nil
}

// --- recording store ---

type recordingStore struct {
	entries []storage.DeliveryEntry
	err     error
}

func (s *recordingStore) LogDelivery(_ context.Context, entry storage.DeliveryEntry) error {
	if s.err != nil {
		return s.err
	}
	s.entries = append(s.entries, entry)
	return nil
}

func (s *recordingStore) ListDeliveries(_ context.Context, _ int) ([]storage.DeliveryEntry, error) {
	return s.entries, nil
}

func event(id, title string) notifier.NotificationEvent {
	return notifier.NotificationEvent{
		Origin:  "scaffolder",
		ID:      id,
		Created: time.Now(),
		Payload: notifier.Payload{Title: title},
	}
}

func TestDispatch_SingleRecipient(t *testing.T) {
	dir := &stubDirectory{entities: map[string]*directory.Entity{
		"user:default/mock": user("mock", "a@x.io"),
	}}
	tr := &fakeTransport{}
	d := notifier.NewDispatcher(
		notifier.NewResolver(dir, nil, testLogger()),
		tr, "b@b.io", "", nil, testLogger(),
	)

	report := d.Dispatch(t.Context(), notifier.Notification{
		Event:      event("n-1", "T"),
		Recipients: notifier.RecipientSpec{Type: notifier.RecipientEntity, EntityRef: "user:default/mock"},
	})

	require.Len(t, tr.sent, 1)
	assert.Equal(t, transport.Message{
		From:    "b@b.io",
		To:      "a@x.io",
		Subject: "T",
		Text:    "",
		HTML:    "<p></p>",
	}, tr.sent[0])
	assert.Equal(t, []string{"a@x.io"}, report.Sent)
	assert.Empty(t, report.Failed)
}

func TestDispatch_EmptyRecipientsIsNoOp(t *testing.T) {
	tr := &fakeTransport{}
	d := notifier.NewDispatcher(
		notifier.NewResolver(&stubDirectory{}, nil, testLogger()),
		tr, "b@b.io", "", nil, testLogger(),
	)

	report := d.Dispatch(t.Context(), notifier.Notification{
		Event:      event("n-1", "T"),
		Recipients: notifier.RecipientSpec{Type: notifier.RecipientEntity, EntityRef: "user:default/ghost"},
	})

	assert.Empty(t, tr.sent)
	assert.Empty(t, report.Sent)
	assert.Empty(t, report.Failed)
}

func TestDispatch_OnePerRecipient(t *testing.T) {
	dir := &stubDirectory{entities: map[string]*directory.Entity{
		"user:default/a": user("a", "a@x.io"),
		"user:default/b": user("b", "b@x.io"),
	}}
	tr := &fakeTransport{}
	d := notifier.NewDispatcher(
		notifier.NewResolver(dir, nil, testLogger()),
		tr, "b@b.io", "", nil, testLogger(),
	)

	d.Dispatch(t.Context(), notifier.Notification{
		Event: event("n-1", "T"),
		Recipients: notifier.RecipientSpec{
			Type:       notifier.RecipientEntities,
			EntityRefs: []string{"user:default/a", "user:default/b"},
		},
	})

	// One individually addressed message per recipient; the recipient list
	// never leaks through a shared To header.
	require.Len(t, tr.sent, 2)
	assert.Equal(t, "a@x.io", tr.sent[0].To)
	assert.Equal(t, "b@x.io", tr.sent[1].To)
}

func TestDispatch_FailureIsolationBetweenRecipients(t *testing.T) {
	dir := &stubDirectory{entities: map[string]*directory.Entity{
		"user:default/a": user("a", "a@x.io"),
		"user:default/b": user("b", "b@x.io"),
	}}
	tr := &fakeTransport{failFor: map[string]error{"a@x.io": errors.New("mailbox full")}}
	store := &recordingStore{}
	d := notifier.NewDispatcher(
		notifier.NewResolver(dir, nil, testLogger()),
		tr, "b@b.io", "", store, testLogger(),
	)

	report := d.Dispatch(t.Context(), notifier.Notification{
		Event: event("n-1", "T"),
		Recipients: notifier.RecipientSpec{
			Type:       notifier.RecipientEntities,
			EntityRefs: []string{"user:default/a", "user:default/b"},
		},
	})

	// The second recipient is still attempted after the first failure.
	require.Len(t, tr.sent, 1)
	assert.Equal(t, "b@x.io", tr.sent[0].To)
	assert.Equal(t, []string{"b@x.io"}, report.Sent)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, "a@x.io", report.Failed[0].Recipient)

	// Both attempts are recorded in the audit log.
	require.Len(t, store.entries, 2)
	assert.Equal(t, storage.StatusFailed, store.entries[0].Status)
	assert.Contains(t, store.entries[0].ErrorMsg, "mailbox full")
	assert.Equal(t, storage.StatusSent, store.entries[1].Status)
}

func TestDispatch_InvalidSpecReportsNothing(t *testing.T) {
	tr := &fakeTransport{}
	d := notifier.NewDispatcher(
		notifier.NewResolver(&stubDirectory{}, nil, testLogger()),
		tr, "b@b.io", "", nil, testLogger(),
	)

	report := d.Dispatch(t.Context(), notifier.Notification{
		Event:      event("n-1", "T"),
		Recipients: notifier.RecipientSpec{Type: "bogus"},
	})
	assert.Empty(t, tr.sent)
	assert.Empty(t, report.Sent)
}

func TestDispatch_StoreFailureDoesNotAbort(t *testing.T) {
	dir := &stubDirectory{entities: map[string]*directory.Entity{
		"user:default/a": user("a", "a@x.io"),
	}}
	tr := &fakeTransport{}
	store := &recordingStore{err: errors.New("db locked")}
	d := notifier.NewDispatcher(
		notifier.NewResolver(dir, nil, testLogger()),
		tr, "b@b.io", "", store, testLogger(),
	)

	report := d.Dispatch(t.Context(), notifier.Notification{
		Event:      event("n-1", "T"),
		Recipients: notifier.RecipientSpec{Type: notifier.RecipientEntity, EntityRef: "user:default/a"},
	})
	assert.Equal(t, []string{"a@x.io"}, report.Sent)
}

func TestDispatch_BroadcastEndToEnd(t *testing.T) {
	dir := &stubDirectory{users: []directory.Entity{
		*user("a", "a@x.io"),
		*user("b", "b@x.io"),
	}}
	tr := &fakeTransport{}
	d := notifier.NewDispatcher(
		notifier.NewResolver(dir, &config.BroadcastConfig{Receiver: config.BroadcastReceiverUsers}, testLogger()),
		tr, "b@b.io", "noreply@b.io", nil, testLogger(),
	)

	report := d.Dispatch(t.Context(), notifier.Notification{
		Event:      event("n-2", "hi"),
		Recipients: notifier.RecipientSpec{Type: notifier.RecipientBroadcast},
	})

	assert.Equal(t, []string{"a@x.io", "b@x.io"}, report.Sent)
	require.Len(t, tr.sent, 2)
	for _, msg := range tr.sent {
		assert.Equal(t, "hi", msg.Subject)
		assert.Equal(t, "noreply@b.io", msg.ReplyTo)
	}
}
