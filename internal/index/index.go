package index

import (
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	ignore "github.com/sabhiram/go-gitignore"
)

// DefaultExtensions are the script file extensions indexed by default.
var DefaultExtensions = []string{".rpy", ".rpym"}

// Index is the database-backed symbol index for one project.
type Index struct {
	db     *sql.DB
	dbPath string
	source string
	exts   map[string]bool
}

// NewIndex creates or opens a symbol index at the given path.
func NewIndex(dbPath string) (*Index, error) {
	db, err := OpenDB(dbPath)
	if err != nil {
		return nil, err
	}

	idx := &Index{db: db, dbPath: dbPath}
	idx.SetExtensions(DefaultExtensions)
	return idx, nil
}

// SetExtensions replaces the set of file extensions the scanner considers.
func (idx *Index) SetExtensions(exts []string) {
	m := make(map[string]bool, len(exts))
	for _, e := range exts {
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		m[strings.ToLower(e)] = true
	}
	idx.exts = m
}

// Close closes the index database.
func (idx *Index) Close() error {
	return idx.db.Close()
}

// DB returns the underlying database connection.
func (idx *Index) DB() *sql.DB {
	return idx.db
}

const symbolColumns = "source, name, kind, path, line, col, args, literal, docs"

func scanSymbolRows(rows *sql.Rows) ([]Symbol, error) {
	var symbols []Symbol
	for rows.Next() {
		var s Symbol
		var args, literal, docs sql.NullString
		if err := rows.Scan(&s.Source, &s.Name, &s.Kind, &s.Path, &s.Line, &s.Column, &args, &literal, &docs); err != nil {
			return nil, fmt.Errorf("scanning symbol: %w", err)
		}
		s.Args = args.String
		s.Literal = literal.String
		s.Docs = docs.String
		symbols = append(symbols, s)
	}
	return symbols, rows.Err()
}

// FindSymbol searches for symbols by name. Partial matches are included;
// exact matches and prefix matches rank first.
func (idx *Index) FindSymbol(name string, kind string, limit int) ([]Symbol, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT ` + symbolColumns + `
		 FROM symbols
		 WHERE name LIKE ?`
	args := []any{"%" + name + "%"}
	if kind != "" {
		query += " AND kind = ?"
		args = append(args, kind)
	}
	query += `
		 ORDER BY
			CASE WHEN name = ? THEN 0
				 WHEN name LIKE ? THEN 1
				 ELSE 2 END,
			name
		 LIMIT ?`
	args = append(args, name, name+"%", limit)

	rows, err := idx.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying symbols: %w", err)
	}
	defer rows.Close()

	return scanSymbolRows(rows)
}

// LookupSymbol returns the first symbol whose name matches exactly, or nil
// when the name is unknown. Callable kinds rank before literal definitions
// so signature help finds the def rather than a shadowing define.
func (idx *Index) LookupSymbol(name string) (*Symbol, error) {
	query := `SELECT ` + symbolColumns + `
		 FROM symbols
		 WHERE name = ?
		 ORDER BY
			CASE WHEN kind IN ('def', 'screen', 'label', 'transform') THEN 0 ELSE 1 END,
			path, line
		 LIMIT 1`

	rows, err := idx.db.Query(query, name)
	if err != nil {
		return nil, fmt.Errorf("querying symbol: %w", err)
	}
	defer rows.Close()

	symbols, err := scanSymbolRows(rows)
	if err != nil || len(symbols) == 0 {
		return nil, err
	}
	return &symbols[0], nil
}

// ListDefsInFile returns all symbol definitions in a file, ordered by line.
func (idx *Index) ListDefsInFile(path string) ([]Symbol, error) {
	rows, err := idx.db.Query(`SELECT `+symbolColumns+`
		  FROM symbols
		  WHERE path = ?
		  ORDER BY line`, path)
	if err != nil {
		return nil, fmt.Errorf("querying symbols: %w", err)
	}
	defer rows.Close()

	return scanSymbolRows(rows)
}

// Update re-scans files that have changed since the last index run.
func (idx *Index) Update(root string) error {
	idx.source = filepath.Base(root)

	filesToScan, err := idx.filesToScan(root)
	if err != nil {
		return fmt.Errorf("scanning files: %w", err)
	}
	if len(filesToScan) == 0 {
		return nil
	}

	tx, err := idx.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO symbols (` + symbolColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name, path, line) DO UPDATE SET
			source = excluded.source,
			kind = excluded.kind,
			col = excluded.col,
			args = excluded.args,
			literal = excluded.literal,
			docs = excluded.docs`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for path := range filesToScan {
		if _, err := tx.Exec("DELETE FROM symbols WHERE path = ?", path); err != nil {
			return fmt.Errorf("clearing symbols for %s: %w", path, err)
		}

		syms, err := ScanFile(idx.source, root, path)
		if err != nil {
			continue // Skip unreadable files
		}
		for _, s := range syms {
			_, err := stmt.Exec(
				s.Source, s.Name, s.Kind, s.Path, s.Line, s.Column,
				nullString(s.Args), nullString(s.Literal), nullString(s.Docs),
			)
			if err != nil {
				continue
			}
		}
	}

	fileStmt, err := tx.Prepare(`INSERT INTO files (path, mtime, size, indexed_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			mtime = excluded.mtime,
			size = excluded.size,
			indexed_at = excluded.indexed_at`)
	if err != nil {
		return fmt.Errorf("preparing file insert: %w", err)
	}
	defer fileStmt.Close()

	now := time.Now().Unix()
	for path, info := range filesToScan {
		if _, err := fileStmt.Exec(path, info.mtime, info.size, now); err != nil {
			return fmt.Errorf("updating file record for %s: %w", path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// FullReindex clears all data and reindexes from scratch.
func (idx *Index) FullReindex(root string) error {
	if _, err := idx.db.Exec("DELETE FROM symbols"); err != nil {
		return fmt.Errorf("clearing symbols: %w", err)
	}
	if _, err := idx.db.Exec("DELETE FROM files"); err != nil {
		return fmt.Errorf("clearing files: %w", err)
	}
	return idx.Update(root)
}

// Stats returns the number of symbols and tracked files in the index.
func (idx *Index) Stats() (symbolCount int, fileCount int, err error) {
	if err := idx.db.QueryRow("SELECT COUNT(*) FROM symbols").Scan(&symbolCount); err != nil {
		return 0, 0, err
	}
	if err := idx.db.QueryRow("SELECT COUNT(*) FROM files").Scan(&fileCount); err != nil {
		return 0, 0, err
	}
	return symbolCount, fileCount, nil
}

type fileInfo struct {
	mtime int64
	size  int64
}

// filesToScan returns script files that are new or modified since the last
// index run.
func (idx *Index) filesToScan(root string) (map[string]fileInfo, error) {
	indexed := make(map[string]fileInfo)
	rows, err := idx.db.Query("SELECT path, mtime, size FROM files")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var path string
		var info fileInfo
		if err := rows.Scan(&path, &info.mtime, &info.size); err != nil {
			return nil, err
		}
		indexed[path] = info
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	gi := LoadGitignore(root)
	needsScan := make(map[string]fileInfo)

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Skip unreadable entries
		}

		relPath, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}

		if d.IsDir() {
			if IsIgnoredDir(d.Name()) {
				return filepath.SkipDir
			}
			if gi != nil && relPath != "." && gi.MatchesPath(relPath+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if !idx.isScriptFile(path) {
			return nil
		}
		if gi != nil && gi.MatchesPath(relPath) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		current := fileInfo{mtime: info.ModTime().Unix(), size: info.Size()}
		if prev, exists := indexed[relPath]; !exists || prev != current {
			needsScan[relPath] = current
		}
		return nil
	})

	return needsScan, err
}

// isScriptFile reports whether the path has an indexed extension.
func (idx *Index) isScriptFile(path string) bool {
	return idx.exts[strings.ToLower(filepath.Ext(path))]
}

// IsIgnoredDir reports whether a directory should never be scanned or
// watched. Hidden directories cover version control and editor state (and
// the .rpyscope index dir itself); the rest is Ren'Py runtime output.
func IsIgnoredDir(name string) bool {
	ignored := map[string]bool{
		"cache": true,
		"saves": true,
		"log":   true,
	}
	return ignored[name] || strings.HasPrefix(name, ".")
}

// LoadGitignore compiles ignore patterns from the project's .gitignore and
// the user's global ~/.gitignore. Returns nil when neither contributes a
// pattern.
func LoadGitignore(root string) *ignore.GitIgnore {
	var patterns []string

	appendFrom := func(path string) {
		content, err := os.ReadFile(path)
		if err != nil {
			return
		}
		for _, line := range strings.Split(string(content), "\n") {
			line = strings.TrimRight(line, "\r")
			trimmed := strings.TrimSpace(line)
			if trimmed == "" || strings.HasPrefix(trimmed, "#") {
				continue
			}
			patterns = append(patterns, line)
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		appendFrom(filepath.Join(home, ".gitignore"))
	}
	appendFrom(filepath.Join(root, ".gitignore"))

	if len(patterns) == 0 {
		return nil
	}
	return ignore.CompileIgnoreLines(patterns...)
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
