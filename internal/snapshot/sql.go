package snapshot

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"hellchannel/internal/components/assert"
	"hellchannel/internal/components/chrono"
	"hellchannel/internal/drops"
	"hellchannel/internal/fetcherr"
)

//go:embed schema.sql
var Schema string

// retained snapshots per database, older rows are pruned on publish
const defaultKeep = 20

// SQLStore keeps a short history of snapshots in a sqlite or libsql database.
type SQLStore struct {
	name string
	db   *sql.DB
	time chrono.API
	keep int
}

func NewSQLStore(name string, db *sql.DB, time chrono.API) SQLStore {
	assert.NotNil(db)
	assert.NotNil(time)
	return SQLStore{name: name, db: db, time: time, keep: defaultKeep}
}

func (s SQLStore) Name() string {
	return fmt.Sprintf("sql(%s)", s.name)
}

func (s SQLStore) Publish(ctx context.Context, events []drops.DropEvent) error {
	payload, err := Encode(events)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO snapshot (created_at, event_count, payload) VALUES (?, ?, ?)`,
		s.time.Now().Unix(), len(events), string(payload),
	)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}

	_, err = tx.ExecContext(
		ctx,
		`DELETE FROM snapshot WHERE id NOT IN (SELECT id FROM snapshot ORDER BY id DESC LIMIT ?)`,
		s.keep,
	)
	if err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}

	return tx.Commit()
}

func (s SQLStore) FetchLatest(ctx context.Context) ([]drops.RawRecord, error) {
	op := fmt.Sprintf("%s.fetch-latest", s.Name())

	var payload string
	err := s.db.QueryRowContext(
		ctx,
		`SELECT payload FROM snapshot ORDER BY id DESC LIMIT 1`,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fetcherr.New(fetcherr.NotFound, op, err)
	}
	if err != nil {
		return nil, fetcherr.New(fetcherr.Network, op, err)
	}
	return Decode(op, []byte(payload))
}

// Count returns how many snapshots are retained.
func (s SQLStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM snapshot`).Scan(&count)
	return count, err
}
