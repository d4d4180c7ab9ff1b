// Package appdata exports cached stories as a glance app-data document.
package appdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bnema/hnglance/internal/domain"
	"github.com/microcosm-cc/bluemonday"
)

const (
	AppName       = "Hacker News"
	DefaultCron   = "0 */3 * * *"
	subtitleDate  = "Mon Jan 02 2006"
	fileMode      = 0o644
	dirMode       = 0o755
	tempPattern   = ".appdata-*.json.tmp"
	commentsLabel = "From the comments:\n"
)

type Document struct {
	Name     string     `json:"name"`
	Path     string     `json:"path,omitempty"`
	Items    []Item     `json:"items"`
	Schedule []Schedule `json:"schedule"`
	Stateful bool       `json:"stateful"`
}

type Item struct {
	ID      string   `json:"id"`
	Updated string   `json:"updated"`
	Data    ItemData `json:"data"`
}

type ItemData struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Detail   string `json:"detail"`
}

type Schedule struct {
	Cron string `json:"cron"`
}

type Config struct {
	// Path is the output file. Export fails when it is empty.
	Path string
	// Cron is the refresh schedule advertised to the dashboard.
	Cron string
	// Executable is the command the dashboard runs to refresh the app.
	Executable string
}

type Exporter struct {
	config Config
	policy *bluemonday.Policy
}

func NewExporter(cfg Config) *Exporter {
	if strings.TrimSpace(cfg.Cron) == "" {
		cfg.Cron = DefaultCron
	}
	return &Exporter{config: cfg, policy: bluemonday.StrictPolicy()}
}

func (e *Exporter) Build(records []domain.Record) Document {
	items := make([]Item, 0, len(records))
	for _, record := range records {
		items = append(items, e.item(record))
	}

	return Document{
		Name:     AppName,
		Path:     e.config.Executable,
		Items:    items,
		Schedule: []Schedule{{Cron: e.config.Cron}},
		Stateful: true,
	}
}

// Export writes the document next to its destination and renames it into place.
func (e *Exporter) Export(ctx context.Context, records []domain.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(e.config.Path) == "" {
		return errors.New("app data path is empty")
	}

	data, err := json.MarshalIndent(e.Build(records), "", "  ")
	if err != nil {
		return fmt.Errorf("encode app data: %w", err)
	}

	return writeAtomic(e.config.Path, append(data, '\n'))
}

func (e *Exporter) item(record domain.Record) Item {
	info := record.Info
	date := "unknown date"
	if origin := info.OriginTime(); !origin.IsZero() {
		date = origin.Format(subtitleDate)
	}

	var blocks []string
	if summary := strings.TrimSpace(record.PageSummary); summary != "" {
		blocks = append(blocks, summary)
	}
	if summary := strings.TrimSpace(record.DiscussionSummary); summary != "" {
		blocks = append(blocks, commentsLabel+summary)
	}

	updated := ""
	if !record.UpdatedAt.IsZero() {
		updated = record.UpdatedAt.UTC().Format(time.RFC3339Nano)
	}

	return Item{
		ID:      record.ID.String(),
		Updated: updated,
		Data: ItemData{
			Title:    info.Title,
			Subtitle: fmt.Sprintf("%s, %d votes, %d comments", date, info.Score, info.Descendants),
			Detail:   "<pre>" + e.policy.Sanitize(strings.Join(blocks, "\n\n")) + "</pre>",
		},
	}
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return fmt.Errorf("create app data directory: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, tempPattern)
	if err != nil {
		return fmt.Errorf("create temp app data file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp app data file: %w", err)
	}
	if err := tempFile.Chmod(fileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp app data file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp app data file: %w", err)
	}
	if err := os.Rename(tempName, path); err != nil {
		return fmt.Errorf("replace app data file: %w", err)
	}

	cleanup = false
	return nil
}
