package entity

// OptionsResponse lists the values clients can offer in pickers.
type OptionsResponse struct {
	Categories []string `json:"categories"`
	Palette    []string `json:"palette"`
	Moods      []string `json:"moods"`
	Occasions  []string `json:"occasions"`
	// 只有这些场合与心情会影响推荐，其余取值按未指定处理
	SuggestionOccasions []string `json:"suggestion_occasions"`
	SuggestionMoods     []string `json:"suggestion_moods"`
}

// WardrobeEvent is pushed to connected clients after a wardrobe write.
type WardrobeEvent struct {
	Action string `json:"action"`
	IDs    []uint `json:"ids,omitempty"`
}
