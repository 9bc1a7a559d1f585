package models

import "time"

// TopicURLsDocument is the name of the single configuration document that
// maps topic labels to source URLs.
const TopicURLsDocument = "topic_urls"

// CacheEntry is one generated answer kept for near-duplicate reuse.
type CacheEntry struct {
	ID                 string    `json:"id" bson:"_id"`
	Question           string    `json:"rawQuestion" bson:"rawQuestion"`
	NormalizedQuestion string    `json:"normalizedQuestion" bson:"normalizedQuestion"`
	SimilarityHash     string    `json:"similarityHash" bson:"similarityHash"`
	AnswerHTML         string    `json:"answerHTML" bson:"answerHTML"`
	SourceURLs         []string  `json:"sourceUrls" bson:"sourceUrls"`
	ImageURLs          []string  `json:"imageUrls" bson:"imageUrls"`
	Topic              string    `json:"topic" bson:"topic"`
	Strategy           string    `json:"strategy" bson:"strategy"`
	URLsScraped        int       `json:"urlsScraped" bson:"urlsScraped"`
	CreatedAt          time.Time `json:"createdAt" bson:"createdAt"`
}

// Age reports how long ago the entry was created, relative to now.
func (e CacheEntry) Age(now time.Time) time.Duration {
	return now.Sub(e.CreatedAt)
}
