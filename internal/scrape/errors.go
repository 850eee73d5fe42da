package scrape

import "fmt"

// TopicError reports a fatal failure of one topic's listing step (navigation
// or extraction). It is never absorbed by the pipeline; by default it aborts
// the remainder of the crawl.
type TopicError struct {
	Topic string
	Err   error
}

func (e *TopicError) Error() string {
	return fmt.Sprintf("topic %s: %v", e.Topic, e.Err)
}

func (e *TopicError) Unwrap() error { return e.Err }

// ArticleError wraps any navigation or extraction failure during a single
// article fetch. It is recoverable: the topic pipeline logs it and skips the
// item.
type ArticleError struct {
	URL string
	Err error
}

func (e *ArticleError) Error() string {
	return fmt.Sprintf("fetch article %s: %v", e.URL, e.Err)
}

func (e *ArticleError) Unwrap() error { return e.Err }
