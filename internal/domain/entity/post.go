package entity

import "time"

// QuestionPost is one row of the daily_question_posts ledger. A row with an
// empty MessageID is a claim in progress (or a failed send awaiting cleanup);
// a row with a MessageID is a delivered question. ThreadID stays empty when
// thread creation failed, which does not undo the delivery.
type QuestionPost struct {
	Date      string // day key, YYYY-MM-DD in the posting time zone
	PostedAt  time.Time
	ChannelID string
	MessageID string
	ThreadID  string
}

// Sent reports whether the question message itself went out.
func (p *QuestionPost) Sent() bool {
	return p != nil && p.MessageID != ""
}
