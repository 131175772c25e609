package domain

import "time"

// EventRecord is a cleaned event ready to be turned into index documents.
// One record yields one or more EventDocuments after chunking.
type EventRecord struct {
	UID            string   `json:"uid"`
	OriginURL      string   `json:"origin_url,omitempty"`
	Title          string   `json:"title_fr"`
	Description    string   `json:"description_fr"`
	Keywords       []string `json:"keywords_fr,omitempty"`
	Thematique     []string `json:"thematique,omitempty"`
	TypeDevenement string   `json:"type_devenement,omitempty"`

	FirstBegin time.Time  `json:"first_begin_dt"`
	FirstEnd   *time.Time `json:"first_end_dt,omitempty"`
	LastBegin  *time.Time `json:"last_begin_dt,omitempty"`
	LastEnd    *time.Time `json:"last_end_dt,omitempty"`

	LocationName    string   `json:"location_name,omitempty"`
	LocationAddress string   `json:"location_address,omitempty"`
	LocationCity    string   `json:"location_city,omitempty"`
	LocationPostal  string   `json:"location_postal,omitempty"`
	LocationLat     *float64 `json:"location_lat,omitempty"`
	LocationLon     *float64 `json:"location_lon,omitempty"`

	// Document is the text that gets chunked and embedded.
	Document string `json:"document"`
}

// Metadata projects the record onto chunk metadata for the given agenda.
// ChunkID and ChunkCount are left for the chunker to fill.
func (r EventRecord) Metadata(agendaSlug string) EventMetadata {
	md := EventMetadata{
		UID:             r.UID,
		OriginURL:       r.OriginURL,
		AgendaSlug:      agendaSlug,
		AgendaURL:       AgendaURL(agendaSlug),
		FirstBeginDT:    FormatTimestamp(r.FirstBegin),
		LocationName:    r.LocationName,
		LocationAddress: r.LocationAddress,
		LocationCity:    r.LocationCity,
		LocationPostal:  r.LocationPostal,
		LocationLat:     r.LocationLat,
		LocationLon:     r.LocationLon,
		TypeDevenement:  r.TypeDevenement,
	}
	if r.FirstEnd != nil {
		md.FirstEndDT = FormatTimestamp(*r.FirstEnd)
	}
	if r.LastBegin != nil {
		md.LastBeginDT = FormatTimestamp(*r.LastBegin)
	}
	if r.LastEnd != nil {
		md.LastEndDT = FormatTimestamp(*r.LastEnd)
	}
	return md
}

// AgendaURL returns the public OpenAgenda page for an agenda slug.
func AgendaURL(slug string) string {
	if slug == "" {
		return ""
	}
	return "https://openagenda.com/fr/" + slug
}
