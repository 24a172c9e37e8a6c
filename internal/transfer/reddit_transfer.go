package transfer

type RedditSubmitResponse struct {
	JSON struct {
		Errors [][]interface{} `json:"errors"`
		Data   struct {
			ID  string `json:"id"`
			URL string `json:"url"`
		} `json:"data"`
	} `json:"json"`
}

type RedditListing struct {
	Data struct {
		Children []RedditThing `json:"children"`
	} `json:"data"`
}

type RedditThing struct {
	Kind string          `json:"kind"`
	Data RedditThingData `json:"data"`
}

type RedditThingData struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Title          string  `json:"title"`
	Permalink      string  `json:"permalink"`
	Author         string  `json:"author"`
	AuthorFullname string  `json:"author_fullname"`
	Body           string  `json:"body"`
	CreatedUTC     float64 `json:"created_utc"`
}
