package services

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/zotcast/zotcast/internal/core/domain"
	"github.com/zotcast/zotcast/internal/core/ports/driven"
	"github.com/zotcast/zotcast/internal/logx"
)

// maxNoteRunes caps the combined note text per record.
const maxNoteRunes = 3000

// maxAuthorsShown bounds the author list: longer lists keep the first and
// last four with an ellipsis between.
const maxAuthorsShown = 8

// Literal fallbacks shared by all representations.
const (
	noNoteText   = "No note"
	unknownText  = "Unknown"
	missingTitle = "Title missing"
	missingDate  = "Date missing"
)

// doiResolver prefixes a bare DOI to form a clickable link.
const doiResolver = "https://doi.org/"

// Pre-compiled expressions for note flattening and mention scanning.
var (
	noteBreaks     = regexp.MustCompile(`(?i)<br\s*/?>|</(p|div|li|h[1-6]|blockquote|tr)>`)
	noteTags       = regexp.MustCompile(`<[^>]+>`)
	nbspPattern    = regexp.MustCompile(`&nbsp;|\x{00A0}`)
	mentionPattern = regexp.MustCompile(`@\w+`)
)

// Formatter renders a ChangeSet into the three message representations.
// Rendering is deterministic apart from two injected concerns: notes are
// loaded through the library when detection did not already carry them,
// and chat mentions go through the configured resolver.
type Formatter struct {
	library            driven.Library
	resolver           driven.MentionResolver
	lowercaseUnmatched bool
	log                logx.Logger
}

// NewFormatter creates a formatter. resolver may be nil, in which case
// mention tokens are left verbatim.
func NewFormatter(library driven.Library, resolver driven.MentionResolver, lowercaseUnmatched bool, log logx.Logger) *Formatter {
	return &Formatter{
		library:            library,
		resolver:           resolver,
		lowercaseUnmatched: lowercaseUnmatched,
		log:                log,
	}
}

// Render produces all representations of one changed record.
func (f *Formatter) Render(ctx context.Context, cs domain.ChangeSet) (domain.RenderedMessage, error) {
	notes := cs.Notes
	if notes == nil {
		fetched, err := f.library.ChildNotes(ctx, cs.Record.Key)
		switch {
		case err == nil:
			notes = fetched
		case ctx.Err() != nil:
			return domain.RenderedMessage{}, ctx.Err()
		default:
			// The message is still worth delivering without its notes.
			f.log.Warn("notes unavailable, rendering without",
				logx.String("key", cs.Record.Key),
				logx.Err(err))
		}
	}

	noteText := notesText(notes)

	return domain.RenderedMessage{
		Chat:  f.chatLine(cs.Record, noteText),
		Plain: plainBlock(cs.Record, noteText),
		HTML:  htmlBlock(cs.Record, noteText),
	}, nil
}

// Header builds the per-collection lead message: current UTC time, the time
// elapsed since the previous watermark and the pluralised change count.
func (f *Formatter) Header(n int, now, since time.Time) string {
	stamp := now.UTC().Format("2006-01-02 15:04 UTC")
	return fmt.Sprintf("%s (elapsed %s): %s", stamp, formatElapsed(now.Sub(since)), countPhrase(n))
}

// chatLine builds the single-line chat representation: book emoji, notes,
// authors, linked title, venue, publication date, the adding user and the
// library's own view link when present.
func (f *Formatter) chatLine(rec domain.Record, noteText string) string {
	var b strings.Builder

	b.WriteString(":book:")
	b.WriteString(f.substituteMentions(noteText))
	b.WriteString(". ")
	b.WriteString(authorList(rec.Creators))
	b.WriteString(" ")

	title := orFallback(rec.Title, missingTitle)
	if link := recordLink(rec); link != "" {
		fmt.Fprintf(&b, "<%s|%s.> ", link, title)
	} else {
		fmt.Fprintf(&b, "*%s.* ", title)
	}

	fmt.Fprintf(&b, "%s (%s) ", venueLabel(rec), orFallback(rec.Date, missingDate))
	fmt.Fprintf(&b, "added by: %s", orFallback(rec.AddedBy, unknownText))
	if rec.AlternateLink != "" {
		fmt.Fprintf(&b, ", <%s | [view on Zotero]>", rec.AlternateLink)
	}

	return b.String()
}

// substituteMentions rewrites @-tokens the resolver recognises into chat
// mention markup. Misses stay verbatim unless the deprecated lowercase
// mode is on.
func (f *Formatter) substituteMentions(text string) string {
	if f.resolver == nil {
		return text
	}
	return mentionPattern.ReplaceAllStringFunc(text, func(token string) string {
		id, ok := f.resolver.Resolve(strings.TrimPrefix(token, "@"))
		if ok {
			return "<@" + id + ">"
		}
		if f.lowercaseUnmatched {
			return strings.ToLower(token)
		}
		return token
	})
}

// plainBlock builds the email fallback: one line each for title, authors,
// venue and date, link, adder and notes. Mentions stay untouched here.
func plainBlock(rec domain.Record, noteText string) string {
	lines := make([]string, 0, 6)
	lines = append(lines, orFallback(rec.Title, missingTitle)+".")
	if authors := authorList(rec.Creators); authors != "" {
		lines = append(lines, authors)
	}
	lines = append(lines, fmt.Sprintf("%s (%s)", venueLabel(rec), orFallback(rec.Date, missingDate)))
	if link := recordLink(rec); link != "" {
		lines = append(lines, link)
	}
	lines = append(lines, "added by: "+orFallback(rec.AddedBy, unknownText))
	lines = append(lines, noteText)
	return strings.Join(lines, "\n")
}

// htmlBlock renders the same content as div blocks for the email body.
// Body text is escaped; note newlines become break tags.
func htmlBlock(rec domain.Record, noteText string) string {
	title := html.EscapeString(orFallback(rec.Title, missingTitle) + ".")

	var b strings.Builder
	if link := recordLink(rec); link != "" {
		fmt.Fprintf(&b, `<div><b><a href="%s">%s</a></b></div>`+"\n", html.EscapeString(link), title)
	} else {
		fmt.Fprintf(&b, "<div><b>%s</b></div>\n", title)
	}
	if authors := authorList(rec.Creators); authors != "" {
		fmt.Fprintf(&b, "<div>%s</div>\n", html.EscapeString(authors))
	}
	fmt.Fprintf(&b, "<div>%s (%s)</div>\n",
		html.EscapeString(venueLabel(rec)),
		html.EscapeString(orFallback(rec.Date, missingDate)))
	fmt.Fprintf(&b, "<div>added by: %s</div>\n", html.EscapeString(orFallback(rec.AddedBy, unknownText)))
	fmt.Fprintf(&b, "<div>%s</div>", strings.ReplaceAll(html.EscapeString(noteText), "\n", "<br>"))
	return b.String()
}

// notesText flattens all note bodies into the shared plain-text form: each
// stripped of markup, joined by newlines, capped at maxNoteRunes, with
// non-breaking spaces normalised. Records without usable note text get the
// literal "No note".
func notesText(notes []domain.Note) string {
	parts := make([]string, 0, len(notes))
	for i := range notes {
		parts = append(parts, stripNoteHTML(notes[i].HTML))
	}

	joined := truncateRunes(strings.Join(parts, "\n"), maxNoteRunes)
	joined = nbspPattern.ReplaceAllString(joined, " ")
	if strings.TrimSpace(joined) == "" {
		return noNoteText
	}
	return strings.TrimRight(joined, "\n")
}

// stripNoteHTML reduces a note body to plain text: line breaks and block
// closings become newlines, remaining tags are dropped, entities decoded.
func stripNoteHTML(s string) string {
	s = noteBreaks.ReplaceAllString(s, "\n")
	s = noteTags.ReplaceAllString(s, "")
	return html.UnescapeString(s)
}

// truncateRunes cuts s to at most n runes.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// authorList renders creators joined by ", ". Creators with no usable name
// are skipped; over-long lists keep the first and last four.
func authorList(creators []domain.Creator) string {
	labels := make([]string, 0, len(creators))
	for _, c := range creators {
		if l := c.Label(); l != "" {
			labels = append(labels, l)
		}
	}
	if len(labels) > maxAuthorsShown {
		head := labels[:4]
		tail := labels[len(labels)-4:]
		labels = append(append(append(make([]string, 0, 9), head...), "…"), tail...)
	}
	return strings.Join(labels, ", ")
}

// venueLabel picks the venue line for the record's item type. Journal
// articles use the abbreviated journal name, preprints a fixed label,
// everything else the full publication title.
func venueLabel(rec domain.Record) string {
	switch {
	case strings.EqualFold(rec.ItemType, "journalArticle"):
		return orFallback(rec.JournalAbbreviation, unknownText)
	case strings.EqualFold(rec.ItemType, "preprint"):
		return "Preprint"
	default:
		return orFallback(rec.PublicationTitle, unknownText)
	}
}

// recordLink selects the clickable link: the explicit URL first, then a
// DOI-derived one, else none.
func recordLink(rec domain.Record) string {
	if rec.URL != "" {
		return rec.URL
	}
	if rec.DOI != "" {
		return doiResolver + rec.DOI
	}
	return ""
}

// countPhrase pluralises the change count for the header.
func countPhrase(n int) string {
	switch n {
	case 0:
		return "No new publications detected since last post"
	case 1:
		return "1 new publication detected since last post"
	default:
		return fmt.Sprintf("%d new publications detected since last post", n)
	}
}

// formatElapsed renders a duration as XhYmZs, whole seconds, never negative.
func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%dh%dm%ds", total/3600, (total%3600)/60, total%60)
}

// orFallback substitutes fallback for an empty value.
func orFallback(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
