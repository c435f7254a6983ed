package models

// MoodScore is a daily mood rating, 1..5 when validated at the boundary
type MoodScore int

// MoodEntry is a user's mood for one day. Unique per (UserID, Date).
type MoodEntry struct {
	UserID int64     `json:"user_id"`
	Date   string    `json:"date"` // YYYY-MM-DD format
	Score  MoodScore `json:"score"`
}

// MoodPoint is one element of a mood series
type MoodPoint struct {
	Date  string `json:"date"`
	Score int    `json:"score"`
}
