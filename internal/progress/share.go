// internal/progress/share.go
//
// ShareFormatter and share delivery.
// Responsibilities:
//   - Day and overall share text with the call-to-action footer.
//   - Deliverer chain: targets are tried in order; when all fail the
//     caller gets a *ShareDeliveryError and can offer a manual copy.

package progress

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Scope selects what a share message summarizes.
type Scope string

const (
	ScopeDay     Scope = "day"
	ScopeOverall Scope = "overall"
)

// DefaultShareURL is linked from every share message.
const DefaultShareURL = "https://emode.neploom.com"

const hashtags = "#EMODE #Emoliens #EmodeCipher"

// Formatter renders share text.
type Formatter struct {
	Config Configuration
	URL    string
}

func (f Formatter) footer() string {
	url := f.URL
	if url == "" {
		url = DefaultShareURL
	}
	return "Can you solve the emode? Play at: " + url + "\n\n" + hashtags
}

// Day renders the summary of one day. A completed day reports every level
// as decoded.
func (f Formatter) Day(s DayStats) string {
	total := f.Config.LevelsForDay(s.Day)
	decoded := s.Decoded()
	status := "In Progress..."
	if s.Completed {
		decoded = total
		status = "Completed!"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "EMODE Day %d!\n", s.Day)
	fmt.Fprintf(&b, "Tries: %d\n", s.Tries)
	fmt.Fprintf(&b, "Hints Used: %d\n", s.HintsUsed)
	fmt.Fprintf(&b, "Messages Decoded: %d/%d\n", decoded, total)
	b.WriteString(status + "\n\n")
	b.WriteString(f.footer())
	return b.String()
}

// Overall renders the aggregate summary.
func (f Formatter) Overall(st GameStats) string {
	var b strings.Builder
	b.WriteString("EMODE Progress!\n")
	fmt.Fprintf(&b, "Days Completed: %d/%d\n", st.CompletedDays, f.Config.TotalDays)
	fmt.Fprintf(&b, "Tries: %d\n", st.TotalTries)
	fmt.Fprintf(&b, "Hints Used: %d\n", st.TotalHints)
	fmt.Fprintf(&b, "Total Score: %d/%d\n", st.TotalScore, st.MaxPossibleScore)
	fmt.Fprintf(&b, "Message Decode: %d/%d\n\n", st.TotalLevels, st.MaxPossibleLevels)
	b.WriteString(f.footer())
	return b.String()
}

// Title is the share sheet title for scope.
func Title(scope Scope, d Day) string {
	if scope == ScopeDay {
		return fmt.Sprintf("EMODE Day %d", d)
	}
	return "My EMODE Progress"
}

// ---------------------------------------------------------------------------
// delivery

// Share is a rendered message ready to hand to a share target.
type Share struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Deliverer hands a share to one target.
type Deliverer interface {
	Deliver(ctx context.Context, s Share) error
}

// ShareDeliveryError reports that no target accepted a share.
type ShareDeliveryError struct {
	Title string
	Err   error
}

func (e *ShareDeliveryError) Error() string {
	return fmt.Sprintf("share %q: %v", e.Title, e.Err)
}

func (e *ShareDeliveryError) Unwrap() error { return e.Err }

var errNoTargets = errors.New("no share targets configured")

// Chain tries each deliverer in order and stops at the first success.
type Chain []Deliverer

// Deliver returns a *ShareDeliveryError when every target fails.
func (c Chain) Deliver(ctx context.Context, s Share) error {
	if len(c) == 0 {
		return &ShareDeliveryError{Title: s.Title, Err: errNoTargets}
	}
	var errs []error
	for _, d := range c {
		err := d.Deliver(ctx, s)
		if err == nil {
			return nil
		}
		errs = append(errs, err)
	}
	return &ShareDeliveryError{Title: s.Title, Err: errors.Join(errs...)}
}

// WriterDeliverer writes the share to w, e.g. a terminal or a clipboard pipe.
type WriterDeliverer struct {
	W io.Writer
}

func (w WriterDeliverer) Deliver(_ context.Context, s Share) error {
	_, err := fmt.Fprintf(w.W, "%s\n\n%s\n", s.Title, s.Text)
	return err
}
