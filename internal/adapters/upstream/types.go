package upstream

// checkResponse is the body of GET /niconico/check/{id}.
type checkResponse struct {
	ID                string   `json:"id"`
	Title             string   `json:"title"`
	Tags              []string `json:"tags"`
	ThumbnailURL      string   `json:"thumbnail_url"`
	ThumbnailURLLarge string   `json:"thumbnail_url_large"`
}

// searchResponse is the body of GET /search?target=tags.
type searchResponse struct {
	Tags []searchTag `json:"tags"`
}

type searchTag struct {
	ID          string `json:"id"`
	NameSearch  string `json:"name_search"`
	NamePrimary string `json:"name_primary"`
}

// addTagRequest is the body of POST /tags/add.
type addTagRequest struct {
	Type        string   `json:"type"`
	PrimaryName string   `json:"primary_name"`
	ExtraNames  []string `json:"extra_names"`
}
