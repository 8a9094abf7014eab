package handlers

// CreateShortURLRequest is the request body for creating a short URL.
type CreateShortURLRequest struct {
	Body struct {
		LongURL string `doc:"The absolute http(s) URL to shorten" example:"https://echo.labstack.com/docs/request" json:"long_url"`
	}
}

// CreateShortURLResponse is the response for a successfully created short URL.
type CreateShortURLResponse struct {
	Status   int
	Location string `doc:"The short URL" header:"Location"`
	Body     struct {
		Code     string `doc:"The short code"     example:"aZ3kP9q"                                json:"code"`
		ShortURL string `doc:"The full short URL" example:"http://localhost:8080/aZ3kP9q"         json:"short_url"`
		LongURL  string `doc:"The original URL"   example:"https://echo.labstack.com/docs/request" json:"long_url"`
	}
}

// RedirectRequest is the request for redirecting a short URL.
type RedirectRequest struct {
	Code string `doc:"The short code" example:"aZ3kP9q" path:"code"`
}

// RedirectResponse sends the client on to the original URL.
type RedirectResponse struct {
	Status   int
	Location string `doc:"The original URL" header:"Location"`
}
