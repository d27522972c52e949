package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/joynet-go/joynet/joynet"
)

// A Catalog remembers which content this machine holds,
// so it can be offered to games without hashing it again.
type Catalog struct {
	db *sql.DB
}

// A CatalogEntry is one piece of content in one content list.
type CatalogEntry struct {
	List int
	Hash uint64
	Name string
}

// OpenCatalog opens the SQLite3 catalog at path, creating it if needed.
func OpenCatalog(path string) (*Catalog, error) {
	if dir := filepath.Dir(path); dir != "." {
		os.MkdirAll(dir, 0775)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	sql_table := `CREATE TABLE IF NOT EXISTS content (
		list INTEGER NOT NULL,
		hash INTEGER NOT NULL,
		name VARCHAR(512) NOT NULL,
		PRIMARY KEY (list, hash)
	);
	`

	if _, err := db.Exec(sql_table); err != nil {
		db.Close()
		return nil, err
	}

	return &Catalog{db: db}, nil
}

func (c *Catalog) Close() error { return c.db.Close() }

// Add stores or renames an entry.
// Hashes are stored as their signed bit pattern, SQLite has no unsigned integers.
func (c *Catalog) Add(e CatalogEntry) error {
	if e.List < 0 || e.List >= joynet.MaxContentLists {
		return fmt.Errorf("content list %d: %w", e.List, joynet.ErrCapacityExceeded)
	}
	if e.Hash == 0 {
		return fmt.Errorf("hash 0: %w", joynet.ErrInvalidContent)
	}

	sql_addContent := `INSERT OR REPLACE INTO content (
		list,
		hash,
		name
	) VALUES (
		?,
		?,
		?
	);
	`

	stmt, err := c.db.Prepare(sql_addContent)
	if err != nil {
		return err
	}
	defer stmt.Close()

	_, err = stmt.Exec(e.List, int64(e.Hash), e.Name)
	return err
}

// Remove deletes an entry, removing one that does not exist is not an error.
func (c *Catalog) Remove(list int, hash uint64) error {
	sql_removeContent := `DELETE FROM content WHERE list = ? AND hash = ?;`

	stmt, err := c.db.Prepare(sql_removeContent)
	if err != nil {
		return err
	}
	defer stmt.Close()

	_, err = stmt.Exec(list, int64(hash))
	return err
}

// Entries returns the catalog ordered by list, then by insertion.
func (c *Catalog) Entries() ([]CatalogEntry, error) {
	rows, err := c.db.Query(`SELECT list, hash, name FROM content ORDER BY list, rowid;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var r []CatalogEntry
	for rows.Next() {
		var e CatalogEntry
		var hash int64
		if err := rows.Scan(&e.List, &hash, &e.Name); err != nil {
			return nil, err
		}
		e.Hash = uint64(hash)

		r = append(r, e)
	}

	return r, rows.Err()
}

// Lookup returns the entries called name.
func (c *Catalog) Lookup(name string) ([]CatalogEntry, error) {
	entries, err := c.Entries()
	if err != nil {
		return nil, err
	}

	var r []CatalogEntry
	for _, e := range entries {
		if e.Name == name {
			r = append(r, e)
		}
	}

	return r, nil
}

// Offer adds every entry to g's local content.
func (c *Catalog) Offer(g *joynet.Game) error {
	entries, err := c.Entries()
	if err != nil {
		return err
	}

	for _, e := range entries {
		if err := g.AddContent(e.List, e.Hash); err != nil {
			return fmt.Errorf("%s: %w", e.Name, err)
		}
	}

	return nil
}
