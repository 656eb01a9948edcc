package model

// PageData is the data passed to layout templates. Post is nil on list pages.
type PageData struct {
	Site *SiteData
	Post *PostProps
}
