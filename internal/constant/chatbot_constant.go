package constant

const (
	ChatMessageSenderUser = "user"
	ChatMessageSenderBot  = "bot"

	// QueryTypeGeneral is the classification recorded when no query
	// classifier is injected into the exchange flow.
	QueryTypeGeneral = "general"
)

const (
	FeedbackRatingMin = 1
	FeedbackRatingMax = 5
)

// FeedbackRatingLabels maps each valid rating to its fixed semantic label.
var FeedbackRatingLabels = map[int]string{
	1: "terrible",
	2: "bad",
	3: "good",
	4: "very good",
	5: "excellent",
}
