// Package scraper fetches a single URL through one of two backends.
//
// The net/http backend is preferred. When it cannot be constructed the
// scraper falls back to a headless Chrome backend, which can get past
// JavaScript anti-bot interstitials. Exactly one backend serves each request.
//
//	err := scraper.Do("https://example.com/api", func(s *scraper.Scraper) error {
//	    body, err := s.Get(ctx, map[string]string{"Accept": "text/html"})
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(body)
//	    return nil
//	}, scraper.WithTimeout(10*time.Second))
//
// All failures are *Error values. Kinds nest: a request that got a 404 is a
// KindRequest error wrapping a KindHTTPStatus one, so both IsRequest and
// IsHTTPStatus report true and StatusCode returns 404.
package scraper
