package domain

import (
	"slices"
	"strconv"
	"strings"
	"time"
)

type ItemID int64

func (id ItemID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

func ParseItemID(raw string) (ItemID, error) {
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, err
	}
	return ItemID(value), nil
}

const StoryType = "story"

type StoryInfo struct {
	ID          ItemID
	By          string
	Descendants int
	Dead        bool
	Deleted     bool
	Kids        []ItemID
	Score       int
	Time        int64
	Title       string
	Type        string
	URL         string
}

// Live reports whether upstream still considers the item a visible story.
func (s StoryInfo) Live() bool {
	return s.Type == StoryType && !s.Dead && !s.Deleted
}

func (s StoryInfo) OriginTime() time.Time {
	if s.Time <= 0 {
		return time.Time{}
	}
	return time.Unix(s.Time, 0).UTC()
}

func (s StoryInfo) Equal(other StoryInfo) bool {
	return s.ID == other.ID &&
		s.By == other.By &&
		s.Descendants == other.Descendants &&
		s.Dead == other.Dead &&
		s.Deleted == other.Deleted &&
		slices.Equal(s.Kids, other.Kids) &&
		s.Score == other.Score &&
		s.Time == other.Time &&
		s.Title == other.Title &&
		s.Type == other.Type &&
		s.URL == other.URL
}
