package tracking

import (
	"net/url"
)

// Session is the per-request tracking context: who is emitting and from
// where. It is built once per request and passed explicitly.
type Session struct {
	ID        string
	UserAgent string
	IPAddress string
	// PageURL is the funnel page the browser is on, used for UTM parameters
	PageURL  string
	Referrer string
}

// UTM holds campaign parameters parsed from the page URL
type UTM struct {
	Source   string
	Medium   string
	Campaign string
}

// UTM parses utm_source, utm_medium and utm_campaign from the page URL
func (s Session) UTM() UTM {
	q := s.query()
	return UTM{
		Source:   q.Get("utm_source"),
		Medium:   q.Get("utm_medium"),
		Campaign: q.Get("utm_campaign"),
	}
}

// PagePath returns the path component of the page URL
func (s Session) PagePath() string {
	u, err := url.Parse(s.PageURL)
	if err != nil {
		return ""
	}
	return u.Path
}

func (s Session) query() url.Values {
	u, err := url.Parse(s.PageURL)
	if err != nil {
		return url.Values{}
	}
	return u.Query()
}
