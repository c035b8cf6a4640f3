// Package storage provides the SQLite-backed document store. Each collection
// is a table with a string key and a JSON doc column; aggregates are written
// whole (last writer wins, matching the document-aggregate model).
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/forgesworn/internal/campaign"
	"github.com/talgya/forgesworn/internal/entity"
	"github.com/talgya/forgesworn/internal/move"
	"github.com/talgya/forgesworn/internal/oracle"
)

// DB wraps a SQLite connection for campaign and reference data storage.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS campaigns (
		campaign_id TEXT PRIMARY KEY,
		doc TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS oracles (
		oracle_id TEXT PRIMARY KEY,
		doc TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS moves (
		key TEXT PRIMARY KEY,
		doc TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS entities (
		entity_id TEXT PRIMARY KEY,
		campaign_id TEXT NOT NULL,
		type TEXT NOT NULL,
		doc TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_entities_campaign ON entities(campaign_id);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// getDoc unmarshals one document by key, reporting absence as (false, nil).
func getDoc(ctx context.Context, conn *sqlx.DB, query, key string, out any) (bool, error) {
	var doc string
	err := conn.GetContext(ctx, &doc, query, key)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(doc), out); err != nil {
		return false, fmt.Errorf("decode doc %s: %w", key, err)
	}
	return true, nil
}

// CampaignByID implements campaign.Store.
func (db *DB) CampaignByID(ctx context.Context, campaignID string) (*campaign.Campaign, error) {
	var c campaign.Campaign
	found, err := getDoc(ctx, db.conn, "SELECT doc FROM campaigns WHERE campaign_id = ?", campaignID, &c)
	if err != nil || !found {
		return nil, err
	}
	return &c, nil
}

// SaveCampaign upserts the whole campaign aggregate.
func (db *DB) SaveCampaign(ctx context.Context, c *campaign.Campaign) error {
	doc, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode campaign %s: %w", c.CampaignID, err)
	}
	_, err = db.conn.ExecContext(ctx,
		"INSERT INTO campaigns (campaign_id, doc) VALUES (?, ?) ON CONFLICT(campaign_id) DO UPDATE SET doc = excluded.doc",
		c.CampaignID, string(doc),
	)
	return err
}

// OracleByID implements oracle.Store.
func (db *DB) OracleByID(ctx context.Context, oracleID string) (*oracle.Table, error) {
	var t oracle.Table
	found, err := getDoc(ctx, db.conn, "SELECT doc FROM oracles WHERE oracle_id = ?", oracleID, &t)
	if err != nil || !found {
		return nil, err
	}
	return &t, nil
}

// MoveByKey implements move.Store.
func (db *DB) MoveByKey(ctx context.Context, key string) (*move.Definition, error) {
	var d move.Definition
	found, err := getDoc(ctx, db.conn, "SELECT doc FROM moves WHERE key = ?", key, &d)
	if err != nil || !found {
		return nil, err
	}
	return &d, nil
}

// UpsertOracles writes oracle tables in one transaction (seed path).
func (db *DB) UpsertOracles(ctx context.Context, tables []oracle.Table) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, t := range tables {
		doc, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("encode oracle %s: %w", t.OracleID, err)
		}
		_, err = tx.ExecContext(ctx,
			"INSERT INTO oracles (oracle_id, doc) VALUES (?, ?) ON CONFLICT(oracle_id) DO UPDATE SET doc = excluded.doc",
			t.OracleID, string(doc),
		)
		if err != nil {
			return fmt.Errorf("upsert oracle %s: %w", t.OracleID, err)
		}
	}

	return tx.Commit()
}

// UpsertMoves writes move definitions in one transaction (seed path).
func (db *DB) UpsertMoves(ctx context.Context, defs []move.Definition) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, d := range defs {
		doc, err := json.Marshal(d)
		if err != nil {
			return fmt.Errorf("encode move %s: %w", d.Key, err)
		}
		_, err = tx.ExecContext(ctx,
			"INSERT INTO moves (key, doc) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET doc = excluded.doc",
			d.Key, string(doc),
		)
		if err != nil {
			return fmt.Errorf("upsert move %s: %w", d.Key, err)
		}
	}

	return tx.Commit()
}

// CountOracles returns the number of seeded oracle tables.
func (db *DB) CountOracles(ctx context.Context) (int, error) {
	var n int
	err := db.conn.GetContext(ctx, &n, "SELECT COUNT(*) FROM oracles")
	return n, err
}

// EntityByID implements entity.Store.
func (db *DB) EntityByID(ctx context.Context, entityID string) (*entity.Entity, error) {
	var e entity.Entity
	found, err := getDoc(ctx, db.conn, "SELECT doc FROM entities WHERE entity_id = ?", entityID, &e)
	if err != nil || !found {
		return nil, err
	}
	return &e, nil
}

// EntitiesByCampaign implements entity.Store.
func (db *DB) EntitiesByCampaign(ctx context.Context, campaignID string) ([]entity.Entity, error) {
	var docs []string
	err := db.conn.SelectContext(ctx, &docs,
		"SELECT doc FROM entities WHERE campaign_id = ? ORDER BY entity_id", campaignID)
	if err != nil {
		return nil, err
	}

	entities := make([]entity.Entity, 0, len(docs))
	for _, doc := range docs {
		var e entity.Entity
		if err := json.Unmarshal([]byte(doc), &e); err != nil {
			return nil, fmt.Errorf("decode entity doc: %w", err)
		}
		entities = append(entities, e)
	}
	return entities, nil
}

// SaveEntity upserts one entity document.
func (db *DB) SaveEntity(ctx context.Context, e *entity.Entity) error {
	doc, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode entity %s: %w", e.EntityID, err)
	}
	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO entities (entity_id, campaign_id, type, doc) VALUES (?, ?, ?, ?)
		 ON CONFLICT(entity_id) DO UPDATE SET campaign_id = excluded.campaign_id, type = excluded.type, doc = excluded.doc`,
		e.EntityID, e.CampaignID, string(e.Type), string(doc),
	)
	return err
}
