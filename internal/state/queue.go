package state

import (
	"context"
	"database/sql"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	dbutil "github.com/llehouerou/cadence/internal/db"
	"github.com/llehouerou/cadence/internal/item"
)

// QueueItem is one saved queue entry.
type QueueItem struct {
	ID      uuid.UUID
	Locator string
	Kind    item.SourceKind
	Title   string
	Artist  string
	Album   string
}

// QueueState is the saved queue.
type QueueState struct {
	CurrentIndex int
	Position     float64
	Volume       float64
	SavedAt      time.Time
	Items        []QueueItem
}

// NewQueueState captures items with the cursor at index and the playhead at
// position seconds.
func NewQueueState(items []*item.AudioItem, index int, position, volume float64) QueueState {
	s := QueueState{
		CurrentIndex: index,
		Position:     position,
		Volume:       volume,
		Items:        make([]QueueItem, 0, len(items)),
	}
	for _, it := range items {
		s.Items = append(s.Items, QueueItem{
			ID:      it.ID,
			Locator: it.Locator,
			Kind:    it.Kind,
			Title:   it.Title,
			Artist:  it.Artist,
			Album:   it.Album,
		})
	}
	return s
}

// AudioItems rebuilds the saved items. Entries whose locator no longer
// validates are dropped and the returned index is adjusted to keep pointing
// at the same item when it survived.
func (s QueueState) AudioItems() ([]*item.AudioItem, int) {
	items := make([]*item.AudioItem, 0, len(s.Items))
	index := 0
	for i, qi := range s.Items {
		opts := []item.Option{
			item.WithTitle(qi.Title),
			item.WithArtist(qi.Artist),
			item.WithAlbum(qi.Album),
		}
		if qi.ID != uuid.Nil {
			opts = append(opts, item.WithID(qi.ID))
		}
		it, err := item.New(qi.Locator, qi.Kind, opts...)
		if err != nil {
			continue
		}
		if i <= s.CurrentIndex {
			index = len(items)
		}
		items = append(items, it)
	}
	return items, index
}

func getQueue(ctx context.Context, db *sql.DB) (*QueueState, error) {
	var (
		state   QueueState
		savedAt int64
	)
	row := db.QueryRowContext(ctx, `SELECT current_index, position, volume, saved_at FROM queue_state WHERE id = 1`)
	err := row.Scan(&state.CurrentIndex, &state.Position, &state.Volume, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read queue state")
	}
	if savedAt > 0 {
		state.SavedAt = time.Unix(savedAt, 0)
	}

	rows, err := db.QueryContext(ctx, `
		SELECT item_id, locator, kind, title, artist, album
		FROM queue_items
		ORDER BY position
	`)
	if err != nil {
		return nil, errors.Wrap(err, "read queue items")
	}
	defer rows.Close()

	for rows.Next() {
		var (
			qi                   QueueItem
			id                   string
			title, artist, album sql.NullString
		)
		if err := rows.Scan(&id, &qi.Locator, &qi.Kind, &title, &artist, &album); err != nil {
			return nil, errors.Wrap(err, "scan queue item")
		}
		qi.ID, _ = uuid.Parse(id)
		qi.Title = dbutil.NullStringValue(title)
		qi.Artist = dbutil.NullStringValue(artist)
		qi.Album = dbutil.NullStringValue(album)
		state.Items = append(state.Items, qi)
	}
	return &state, errors.Wrap(rows.Err(), "iterate queue items")
}

func saveQueue(ctx context.Context, sqlDB *sql.DB, state QueueState) error {
	savedAt := state.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now()
	}

	return dbutil.WithTx(ctx, sqlDB, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM queue_items`); err != nil {
			return errors.Wrap(err, "clear queue items")
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO queue_state (id, current_index, position, volume, saved_at)
			VALUES (1, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				current_index = excluded.current_index,
				position = excluded.position,
				volume = excluded.volume,
				saved_at = excluded.saved_at
		`, state.CurrentIndex, state.Position, state.Volume, savedAt.Unix())
		if err != nil {
			return errors.Wrap(err, "write queue state")
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO queue_items (position, item_id, locator, kind, title, artist, album)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return errors.Wrap(err, "prepare insert")
		}
		defer stmt.Close()

		for i, qi := range state.Items {
			_, err = stmt.ExecContext(ctx, i, qi.ID.String(), qi.Locator, int(qi.Kind),
				dbutil.NullString(qi.Title), dbutil.NullString(qi.Artist), dbutil.NullString(qi.Album))
			if err != nil {
				return errors.Wrapf(err, "insert queue item %d", i)
			}
		}
		return nil
	})
}
