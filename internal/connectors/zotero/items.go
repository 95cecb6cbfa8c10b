package zotero

import "github.com/zotcast/zotcast/internal/core/domain"

// Wire types mirror the source API's item envelope. Only the fields the
// pipeline reads are declared; the decoder drops the rest.

type item struct {
	Key     string    `json:"key"`
	Version int       `json:"version"`
	Links   itemLinks `json:"links"`
	Meta    itemMeta  `json:"meta"`
	Data    itemData  `json:"data"`
}

type itemLinks struct {
	Alternate *itemLink `json:"alternate"`
}

type itemLink struct {
	Href string `json:"href"`
}

type itemMeta struct {
	CreatedByUser *metaUser `json:"createdByUser"`
	NumChildren   int       `json:"numChildren"`
}

type metaUser struct {
	Username string `json:"username"`
}

type itemData struct {
	Key                 string       `json:"key"`
	Version             int          `json:"version"`
	ItemType            string       `json:"itemType"`
	Title               string       `json:"title"`
	Creators            []wireAuthor `json:"creators"`
	PublicationTitle    string       `json:"publicationTitle"`
	JournalAbbreviation string       `json:"journalAbbreviation"`
	Date                string       `json:"date"`
	DOI                 string       `json:"DOI"`
	URL                 string       `json:"url"`
	Note                string       `json:"note"`
	ContentType         string       `json:"contentType"`
	Filename            string       `json:"filename"`
	DateAdded           string       `json:"dateAdded"`
	DateModified        string       `json:"dateModified"`
}

type wireAuthor struct {
	CreatorType string `json:"creatorType"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Name        string `json:"name"`
}

const (
	itemTypeNote       = "note"
	itemTypeAttachment = "attachment"
)

// toRecord maps an item envelope to the domain snapshot.
func toRecord(it item) domain.Record {
	rec := domain.Record{
		Key:                 it.Key,
		Version:             it.Version,
		Title:               it.Data.Title,
		ItemType:            it.Data.ItemType,
		PublicationTitle:    it.Data.PublicationTitle,
		JournalAbbreviation: it.Data.JournalAbbreviation,
		Date:                it.Data.Date,
		DOI:                 it.Data.DOI,
		URL:                 it.Data.URL,
		DateAdded:           it.Data.DateAdded,
		DateModified:        it.Data.DateModified,
		NumChildren:         it.Meta.NumChildren,
	}
	if it.Meta.CreatedByUser != nil {
		rec.AddedBy = it.Meta.CreatedByUser.Username
	}
	if it.Links.Alternate != nil {
		rec.AlternateLink = it.Links.Alternate.Href
	}
	for _, c := range it.Data.Creators {
		rec.Creators = append(rec.Creators, domain.Creator{
			GivenName:   c.FirstName,
			FamilyName:  c.LastName,
			DisplayName: c.Name,
		})
	}
	return rec
}

// toNote maps a child note envelope.
func toNote(it item) domain.Note {
	return domain.Note{
		Key:          it.Key,
		HTML:         it.Data.Note,
		DateAdded:    it.Data.DateAdded,
		DateModified: it.Data.DateModified,
	}
}

// toAttachment maps a child attachment envelope.
func toAttachment(it item) domain.Attachment {
	return domain.Attachment{
		Key:         it.Key,
		Version:     it.Version,
		Title:       it.Data.Title,
		ContentType: it.Data.ContentType,
		Filename:    it.Data.Filename,
		DateAdded:   it.Data.DateAdded,
	}
}
