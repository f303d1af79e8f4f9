// Package export writes a resolved compose draft to an RFC 5322 .eml
// file so the operator can preview a quick send in a mail reader before
// submitting it.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/emersion/go-message/mail"

	"github.com/nhle/sendlite/internal/compose"
	"github.com/nhle/sendlite/internal/model"
)

// WriteDraft serializes the resolution as a mail message. Bcc is kept
// in the header: this is a local preview, not an outbound message.
func WriteDraft(w io.Writer, res *compose.Resolution) error {
	var h mail.Header
	h.SetDate(time.Now())
	h.SetSubject(res.Request.Subject)
	h.SetAddressList("From", []*mail.Address{{Address: res.Request.FromEmail}})

	if to := addresses(res.To, res.Request.ToExtra); len(to) > 0 {
		h.SetAddressList("To", to)
	}
	if cc := addresses(res.Cc, res.Request.CcExtra); len(cc) > 0 {
		h.SetAddressList("Cc", cc)
	}
	if bcc := addresses(res.Bcc, res.Request.BccExtra); len(bcc) > 0 {
		h.SetAddressList("Bcc", bcc)
	}

	mw, err := mail.CreateWriter(w, h)
	if err != nil {
		return fmt.Errorf("creating message writer: %w", err)
	}

	if err := writeBody(mw, res.Request.TextBody, res.Request.HTMLBody); err != nil {
		return err
	}
	return mw.Close()
}

// SaveDraft writes the preview into dir with a timestamped name and
// returns the full path.
func SaveDraft(dir string, res *compose.Resolution) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export directory %s: %w", dir, err)
	}

	name := fmt.Sprintf("sendlite-draft-%s.eml", time.Now().Format("20060102-150405"))
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating draft file %s: %w", path, err)
	}
	defer f.Close()

	if err := WriteDraft(f, res); err != nil {
		return "", err
	}
	return path, nil
}

// writeBody emits the text part, plus an HTML alternative when present.
func writeBody(mw *mail.Writer, textBody, htmlBody string) error {
	if htmlBody == "" {
		var th mail.InlineHeader
		th.Set("Content-Type", "text/plain; charset=utf-8")

		pw, err := mw.CreateSingleInline(th)
		if err != nil {
			return fmt.Errorf("creating text part: %w", err)
		}
		if _, err := io.WriteString(pw, textBody); err != nil {
			return fmt.Errorf("writing text part: %w", err)
		}
		return pw.Close()
	}

	iw, err := mw.CreateInline()
	if err != nil {
		return fmt.Errorf("creating inline writer: %w", err)
	}

	var th mail.InlineHeader
	th.Set("Content-Type", "text/plain; charset=utf-8")
	pw, err := iw.CreatePart(th)
	if err != nil {
		return fmt.Errorf("creating text part: %w", err)
	}
	if _, err := io.WriteString(pw, textBody); err != nil {
		return fmt.Errorf("writing text part: %w", err)
	}
	pw.Close()

	var hh mail.InlineHeader
	hh.Set("Content-Type", "text/html; charset=utf-8")
	pw, err = iw.CreatePart(hh)
	if err != nil {
		return fmt.Errorf("creating html part: %w", err)
	}
	if _, err := io.WriteString(pw, htmlBody); err != nil {
		return fmt.Errorf("writing html part: %w", err)
	}
	pw.Close()

	return iw.Close()
}

// addresses merges resolved contacts and typed extras into one header list.
func addresses(contacts []model.Contact, extras []string) []*mail.Address {
	out := make([]*mail.Address, 0, len(contacts)+len(extras))
	for _, c := range contacts {
		out = append(out, &mail.Address{Name: c.DisplayName(), Address: c.Email})
	}
	for _, e := range extras {
		out = append(out, &mail.Address{Address: e})
	}
	return out
}
