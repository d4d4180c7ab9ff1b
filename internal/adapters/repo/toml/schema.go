package toml

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bnema/hnglance/internal/domain"
)

const currentSchemaVersion = 1

type fileSchema struct {
	Version    int               `toml:"version"`
	Records    []recordSchema    `toml:"records"`
	Suppressed map[string]string `toml:"suppressed"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
	if s.Suppressed == nil {
		s.Suppressed = map[string]string{}
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported snapshot schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type recordSchema struct {
	ID                int64      `toml:"id"`
	UpdatedAt         string     `toml:"updated_at"`
	Page              string     `toml:"page"`
	Discussion        string     `toml:"discussion"`
	PageSummary       string     `toml:"page_summary"`
	DiscussionSummary string     `toml:"discussion_summary"`
	Info              infoSchema `toml:"info"`
}

type infoSchema struct {
	ID          int64   `toml:"id"`
	By          string  `toml:"by"`
	Descendants int     `toml:"descendants"`
	Dead        bool    `toml:"dead,omitempty"`
	Deleted     bool    `toml:"deleted,omitempty"`
	Kids        []int64 `toml:"kids,omitempty"`
	Score       int     `toml:"score"`
	Time        int64   `toml:"time"`
	Title       string  `toml:"title"`
	Type        string  `toml:"type"`
	URL         string  `toml:"url,omitempty"`
}

func toSchema(snapshot domain.Snapshot) fileSchema {
	file := fileSchema{
		Version:    currentSchemaVersion,
		Records:    make([]recordSchema, 0, len(snapshot.Records)),
		Suppressed: make(map[string]string, len(snapshot.Suppressed)),
	}

	for _, record := range snapshot.Records {
		file.Records = append(file.Records, toRecordSchema(record))
	}
	for id, seenAt := range snapshot.Suppressed {
		file.Suppressed[id.String()] = formatTime(seenAt)
	}

	return file
}

func fromSchema(file fileSchema) (domain.Snapshot, error) {
	snapshot := domain.Snapshot{
		Records:    make([]domain.Record, 0, len(file.Records)),
		Suppressed: make(map[domain.ItemID]time.Time, len(file.Suppressed)),
	}

	for _, entry := range file.Records {
		record, err := fromRecordSchema(entry)
		if err != nil {
			return domain.Snapshot{}, err
		}
		snapshot.Records = append(snapshot.Records, record)
	}

	for rawID, rawSeenAt := range file.Suppressed {
		id, err := domain.ParseItemID(rawID)
		if err != nil {
			return domain.Snapshot{}, fmt.Errorf("suppressed entry %q: %w", rawID, err)
		}
		seenAt, err := parseTime(rawSeenAt)
		if err != nil {
			return domain.Snapshot{}, fmt.Errorf("suppressed entry %s: %w", rawID, err)
		}
		snapshot.Suppressed[id] = seenAt
	}

	return snapshot, nil
}

func toRecordSchema(record domain.Record) recordSchema {
	info := record.Info
	var kids []int64
	if len(info.Kids) > 0 {
		kids = make([]int64, 0, len(info.Kids))
		for _, kid := range info.Kids {
			kids = append(kids, int64(kid))
		}
	}

	return recordSchema{
		ID:                int64(record.ID),
		UpdatedAt:         formatTime(record.UpdatedAt),
		Page:              validText(record.Page),
		Discussion:        validText(record.Discussion),
		PageSummary:       validText(record.PageSummary),
		DiscussionSummary: validText(record.DiscussionSummary),
		Info: infoSchema{
			ID:          int64(info.ID),
			By:          validText(info.By),
			Descendants: info.Descendants,
			Dead:        info.Dead,
			Deleted:     info.Deleted,
			Kids:        kids,
			Score:       info.Score,
			Time:        info.Time,
			Title:       validText(info.Title),
			Type:        validText(info.Type),
			URL:         validText(info.URL),
		},
	}
}

func fromRecordSchema(entry recordSchema) (domain.Record, error) {
	updatedAt, err := parseTime(entry.UpdatedAt)
	if err != nil {
		return domain.Record{}, fmt.Errorf("record %d: %w", entry.ID, err)
	}

	var kids []domain.ItemID
	if len(entry.Info.Kids) > 0 {
		kids = make([]domain.ItemID, 0, len(entry.Info.Kids))
		for _, kid := range entry.Info.Kids {
			kids = append(kids, domain.ItemID(kid))
		}
	}

	return domain.Record{
		ID: domain.ItemID(entry.ID),
		Info: domain.StoryInfo{
			ID:          domain.ItemID(entry.Info.ID),
			By:          entry.Info.By,
			Descendants: entry.Info.Descendants,
			Dead:        entry.Info.Dead,
			Deleted:     entry.Info.Deleted,
			Kids:        kids,
			Score:       entry.Info.Score,
			Time:        entry.Info.Time,
			Title:       entry.Info.Title,
			Type:        entry.Info.Type,
			URL:         entry.Info.URL,
		},
		Page:              entry.Page,
		Discussion:        entry.Discussion,
		PageSummary:       entry.PageSummary,
		DiscussionSummary: entry.DiscussionSummary,
		UpdatedAt:         updatedAt,
	}, nil
}

// validText replaces invalid UTF-8, which TOML cannot represent, so a saved file always loads back.
func validText(value string) string {
	return strings.ToValidUTF8(value, string(utf8.RuneError))
}

func parseTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}

	parsed, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %s: %w", strconv.Quote(raw), err)
	}

	return parsed.UTC(), nil
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}

	return value.UTC().Format(time.RFC3339Nano)
}
