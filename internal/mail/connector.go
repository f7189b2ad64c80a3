package mail

import (
	"bytes"
	"path"
	"strings"

	"github.com/jhillyerd/enmime"

	"barca/internal"
)

// Connector pulls raw messages from a mailbox. The IMAP implementation is the
// only one wired in; the interface keeps the fetch service testable.
type Connector interface {
	FetchInbox(label string, max int) ([]internal.FetchedMailMessage, error)
}

var reportSuffixes = []string{".csv", ".txt", ".xlsx", ".xls", ".pdf"}

func isReportAttachment(filename string) bool {
	ext := strings.ToLower(path.Ext(filename))
	for _, s := range reportSuffixes {
		if ext == s {
			return true
		}
	}
	return false
}

// ExtractReportFiles parses a raw RFC822 message and returns the attachments
// that look like inventory reports. Messages without any report attachment
// yield an empty slice, not an error.
func ExtractReportFiles(msg internal.FetchedMailMessage) ([]internal.FetchedReportFile, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(msg.Raw))
	if err != nil {
		return nil, err
	}

	parts := make([]*enmime.Part, 0, len(env.Attachments)+len(env.Inlines))
	parts = append(parts, env.Attachments...)
	parts = append(parts, env.Inlines...)

	out := make([]internal.FetchedReportFile, 0, 1)
	for _, p := range parts {
		if p == nil || p.FileName == "" || len(p.Content) == 0 {
			continue
		}
		if !isReportAttachment(p.FileName) {
			continue
		}
		out = append(out, internal.FetchedReportFile{
			Origin:     internal.OriginIMAP,
			Filename:   p.FileName,
			Sender:     msg.From,
			ReceivedAt: msg.ReceivedAt,
			Content:    p.Content,
		})
	}
	return out, nil
}
