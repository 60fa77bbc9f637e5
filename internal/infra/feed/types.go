package feed

// quoteResponse represents an NBBO snapshot message from the feed
type quoteResponse struct {
	Type   string `json:"type"` // quote
	Symbol string `json:"symbol"`

	Bid       string `json:"bid"`
	Ask       string `json:"ask"`
	LimitUp   string `json:"limit_up"`
	LimitDown string `json:"limit_down"`
	Timestamp int64  `json:"timestamp"`
}

// subscribeRequest is the channel subscription message
type subscribeRequest struct {
	Op      string   `json:"op"` // subscribe
	Channel string   `json:"channel"`
	Symbols []string `json:"symbols"`
}
