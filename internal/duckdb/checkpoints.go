package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/vibe-seqedit/internal/checkpoint"
	"github.com/inodb/vibe-seqedit/internal/feature"
	"github.com/inodb/vibe-seqedit/internal/scar"
	"github.com/inodb/vibe-seqedit/internal/sequence"
)

var _ checkpoint.Store = (*Store)(nil)

// SaveCheckpoint writes a checkpoint with its scars and features. Saving an
// id that already exists replaces it.
func (s *Store) SaveCheckpoint(ctx context.Context, c checkpoint.Checkpoint) error {
	if err := s.DeleteCheckpoint(ctx, c.ID); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO checkpoints VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.BlockID, c.Label, c.Timestamp.UnixNano(),
		c.Raw, string(c.SequenceType), string(c.Topology),
	); err != nil {
		return fmt.Errorf("insert checkpoint: %w", err)
	}

	if err := s.appendChildren(ctx, c); err != nil {
		// drop the partial checkpoint so Load never restores it without its rows
		if derr := s.DeleteCheckpoint(context.WithoutCancel(ctx), c.ID); derr != nil {
			return errors.Join(err, derr)
		}
		return err
	}
	return nil
}

// appendChildren writes the scar and feature rows of c.
func (s *Store) appendChildren(ctx context.Context, c checkpoint.Checkpoint) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	if err := appendRows(conn, "checkpoint_scars", len(c.Scars), func(a *goduckdb.Appender, i int) error {
		sc := c.Scars[i]
		return a.AppendRow(
			c.ID, int64(i), sc.ID, int64(sc.Position), string(sc.Kind),
			sc.Original, sc.Inserted, sc.CreatedAt.UnixNano(),
		)
	}); err != nil {
		return fmt.Errorf("append scars: %w", err)
	}

	if err := appendRows(conn, "checkpoint_features", len(c.Features), func(a *goduckdb.Appender, i int) error {
		f := c.Features[i]
		meta, err := json.Marshal(f.Metadata)
		if err != nil {
			return fmt.Errorf("encode metadata of %s: %w", f.ID, err)
		}
		return a.AppendRow(
			c.ID, int64(i), f.ID, f.Name, string(f.Type),
			int64(f.Start), int64(f.End), int64(f.Strand), f.Color, string(meta),
		)
	}); err != nil {
		return fmt.Errorf("append features: %w", err)
	}
	return nil
}

// appendRows batch-inserts n rows into table using the Appender API.
func appendRows(conn *sql.Conn, table string, n int, row func(*goduckdb.Appender, int) error) error {
	if n == 0 {
		return nil
	}

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", table)
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for i := range n {
		if err := row(appender, i); err != nil {
			return err
		}
	}
	return appender.Flush()
}

// DeleteCheckpoint removes a checkpoint and its rows. Deleting an unknown
// id is not an error. A failing table does not stop the others from being
// cleared.
func (s *Store) DeleteCheckpoint(ctx context.Context, id string) error {
	var errs []error
	for _, q := range []string{
		"DELETE FROM checkpoints WHERE id=?",
		"DELETE FROM checkpoint_scars WHERE checkpoint_id=?",
		"DELETE FROM checkpoint_features WHERE checkpoint_id=?",
	} {
		if _, err := s.db.ExecContext(ctx, q, id); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("delete checkpoint %s: %w", id, err)
	}
	return nil
}

// ListCheckpoints returns a block's checkpoints, newest first. An empty
// block id lists every block.
func (s *Store) ListCheckpoints(ctx context.Context, blockID string) ([]checkpoint.Checkpoint, error) {
	query := `SELECT id, block_id, label, created_ns, raw, sequence_type, topology
		FROM checkpoints`
	var args []any
	if blockID != "" {
		query += " WHERE block_id=?"
		args = append(args, blockID)
	}
	query += " ORDER BY created_ns DESC, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query checkpoints: %w", err)
	}
	defer rows.Close()

	var cps []checkpoint.Checkpoint
	for rows.Next() {
		var (
			c         checkpoint.Checkpoint
			ns        int64
			typ, topo string
		)
		if err := rows.Scan(&c.ID, &c.BlockID, &c.Label, &ns, &c.Raw, &typ, &topo); err != nil {
			return nil, fmt.Errorf("scan checkpoint: %w", err)
		}
		c.Timestamp = time.Unix(0, ns)
		c.SequenceType = sequence.Type(typ)
		c.Topology = sequence.Topology(topo)
		cps = append(cps, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate checkpoints: %w", err)
	}
	rows.Close()

	for i := range cps {
		if cps[i].Scars, err = s.loadScars(ctx, cps[i].ID); err != nil {
			return nil, err
		}
		if cps[i].Features, err = s.loadFeatures(ctx, cps[i].ID); err != nil {
			return nil, err
		}
	}
	return cps, nil
}

func (s *Store) loadScars(ctx context.Context, checkpointID string) ([]scar.Scar, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, position, kind, original, inserted, created_ns
		FROM checkpoint_scars WHERE checkpoint_id=? ORDER BY ord`, checkpointID)
	if err != nil {
		return nil, fmt.Errorf("query scars: %w", err)
	}
	defer rows.Close()

	var scars []scar.Scar
	for rows.Next() {
		var (
			sc      scar.Scar
			pos, ns int64
			kind    string
		)
		if err := rows.Scan(&sc.ID, &pos, &kind, &sc.Original, &sc.Inserted, &ns); err != nil {
			return nil, fmt.Errorf("scan scar: %w", err)
		}
		sc.Position = int(pos)
		sc.Kind = scar.Kind(kind)
		sc.CreatedAt = time.Unix(0, ns)
		scars = append(scars, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scars: %w", err)
	}
	return scars, nil
}

func (s *Store) loadFeatures(ctx context.Context, checkpointID string) ([]feature.Feature, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, type, start_, end_, strand, color, metadata
		FROM checkpoint_features WHERE checkpoint_id=? ORDER BY ord`, checkpointID)
	if err != nil {
		return nil, fmt.Errorf("query features: %w", err)
	}
	defer rows.Close()

	var features []feature.Feature
	for rows.Next() {
		var (
			f                  feature.Feature
			typ, meta          string
			start, end, strand int64
		)
		if err := rows.Scan(&f.ID, &f.Name, &typ, &start, &end, &strand, &f.Color, &meta); err != nil {
			return nil, fmt.Errorf("scan feature: %w", err)
		}
		f.Type = feature.Type(typ)
		f.Start, f.End = int(start), int(end)
		f.Strand = feature.Strand(strand)
		if meta != "" && meta != "null" {
			if err := json.Unmarshal([]byte(meta), &f.Metadata); err != nil {
				return nil, fmt.Errorf("decode metadata of %s: %w", f.ID, err)
			}
		}
		features = append(features, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate features: %w", err)
	}
	return features, nil
}

// Blocks returns the ids of blocks with stored checkpoints, sorted.
func (s *Store) Blocks(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT block_id FROM checkpoints ORDER BY block_id")
	if err != nil {
		return nil, fmt.Errorf("query blocks: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan block: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
