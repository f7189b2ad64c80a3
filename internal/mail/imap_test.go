package mail

import (
	"bytes"
	"testing"
	"time"

	"github.com/emersion/go-imap"
)

func TestSenderLine(t *testing.T) {
	tests := []struct {
		name  string
		addrs []*imap.Address
		want  string
	}{
		{"empty", nil, ""},
		{
			"plain",
			[]*imap.Address{{MailboxName: "shop", HostName: "example.com"}},
			"shop@example.com",
		},
		{
			"personal name",
			[]*imap.Address{{PersonalName: "Negozio", MailboxName: "shop", HostName: "example.com"}},
			"Negozio <shop@example.com>",
		},
		{
			"multiple with nil",
			[]*imap.Address{
				{MailboxName: "a", HostName: "x.it"},
				nil,
				{MailboxName: "b", HostName: "y.it"},
			},
			"a@x.it, b@y.it",
		},
		{
			"missing host",
			[]*imap.Address{{MailboxName: "orphan"}},
			"orphan",
		},
	}
	for _, tt := range tests {
		if got := senderLine(tt.addrs); got != tt.want {
			t.Errorf("%s: got %q want %q", tt.name, got, tt.want)
		}
	}
}

func TestDecodeMessage(t *testing.T) {
	section := &imap.BodySectionName{}
	stamp := time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)
	msg := &imap.Message{
		Uid:          42,
		SeqNum:       1,
		InternalDate: stamp,
		Envelope:     &imap.Envelope{Subject: "ANART export"},
		Body: map[*imap.BodySectionName]imap.Literal{
			section: bytes.NewBufferString("raw message"),
		},
	}

	fetched, ok, err := decodeMessage(msg, section)
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	if string(fetched.Raw) != "raw message" {
		t.Fatalf("raw: %q", fetched.Raw)
	}
	if fetched.Subject != "ANART export" {
		t.Fatalf("subject: %q", fetched.Subject)
	}
	// No Message-Id in the envelope: falls back to the UID.
	if fetched.MessageID != "imap-42" {
		t.Fatalf("message id: %q", fetched.MessageID)
	}
	if fetched.ReceivedAt != "2026-03-14T10:30:00Z" {
		t.Fatalf("received at: %q", fetched.ReceivedAt)
	}

	if _, ok, err := decodeMessage(nil, section); ok || err != nil {
		t.Fatalf("nil message: ok=%v err=%v", ok, err)
	}
	if _, ok, err := decodeMessage(&imap.Message{}, section); ok || err != nil {
		t.Fatalf("no body: ok=%v err=%v", ok, err)
	}
}
