package embedding

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// VectorStore serves static word vectors (GloVe / word2vec text format)
// from a SQLite table. A token sequence embeds to the average of its
// known word vectors.
type VectorStore struct {
	db   *sql.DB
	path string
}

const vectorSchema = `
CREATE TABLE IF NOT EXISTS word_vectors (
	word TEXT PRIMARY KEY,
	dim  INTEGER NOT NULL,
	vec  BLOB NOT NULL
);
`

// OpenVectorStore opens or creates the vector database at path
func OpenVectorStore(path string) (*VectorStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(vectorSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &VectorStore{db: db, path: path}, nil
}

// Close closes the database connection
func (s *VectorStore) Close() error {
	return s.db.Close()
}

// Put stores (or replaces) the vector for word
func (s *VectorStore) Put(ctx context.Context, word string, vec []float64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO word_vectors (word, dim, vec) VALUES (?, ?, ?)`,
		strings.ToLower(word), len(vec), encodeVector(vec))
	if err != nil {
		return fmt.Errorf("put %q: %w", word, err)
	}
	return nil
}

// Lookup returns the vector for a single word. Unknown words return
// ErrUnavailable.
func (s *VectorStore) Lookup(ctx context.Context, word string) ([]float64, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT vec FROM word_vectors WHERE word = ?`, strings.ToLower(word)).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w %q", ErrUnknownWord, word)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: lookup %q: %w", ErrUnavailable, word, err)
	}
	return decodeVector(blob)
}

// Embed averages the vectors of the known tokens. If no token is known
// the result is ErrUnavailable.
func (s *VectorStore) Embed(ctx context.Context, tokens []string) ([]float64, error) {
	var found [][]float64
	for _, tok := range tokens {
		vec, err := s.Lookup(ctx, tok)
		if errors.Is(err, ErrUnknownWord) {
			continue
		}
		if err != nil {
			return nil, err
		}
		found = append(found, vec)
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("%w: no known words in %q", ErrUnavailable, strings.Join(tokens, " "))
	}
	return AverageEmbeddings(found), nil
}

// Similarity is cosine similarity
func (s *VectorStore) Similarity(a, b []float64) float64 {
	return CosineSimilarity(a, b)
}

// Count returns the number of stored words
func (s *VectorStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM word_vectors`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count vectors: %w", err)
	}
	return n, nil
}

// Import reads "word v1 v2 ..." lines and stores them in one transaction.
// A limit of 0 imports every line. Malformed lines are skipped; lines
// whose dimension differs from the first vector are rejected.
func (s *VectorStore) Import(ctx context.Context, r io.Reader, limit int) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO word_vectors (word, dim, vec) VALUES (?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare import: %w", err)
	}
	defer stmt.Close()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	imported, dim, lineNo := 0, 0, 0
	for scanner.Scan() {
		lineNo++
		word, vec, ok := parseVectorLine(scanner.Text())
		if !ok {
			continue
		}
		if dim == 0 {
			dim = len(vec)
		} else if len(vec) != dim {
			return imported, fmt.Errorf("line %d: dimension %d, expected %d", lineNo, len(vec), dim)
		}
		if _, err := stmt.ExecContext(ctx, strings.ToLower(word), len(vec), encodeVector(vec)); err != nil {
			return imported, fmt.Errorf("line %d: %w", lineNo, err)
		}
		imported++
		if limit > 0 && imported >= limit {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return imported, fmt.Errorf("read vectors: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}
	return imported, nil
}

// parseVectorLine splits a text-format vector line. The two-field
// word2vec header ("count dim") is rejected as malformed.
func parseVectorLine(line string) (string, []float64, bool) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return "", nil, false
	}
	vec := make([]float64, len(fields)-1)
	for i, f := range fields[1:] {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return "", nil, false
		}
		vec[i] = v
	}
	return fields[0], vec, true
}

// vectors are stored as little-endian float32
func encodeVector(vec []float64) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(float32(v)))
	}
	return buf
}

func decodeVector(blob []byte) ([]float64, error) {
	if len(blob)%4 != 0 {
		return nil, fmt.Errorf("corrupt vector blob of %d bytes", len(blob))
	}
	vec := make([]float64, len(blob)/4)
	for i := range vec {
		vec[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(blob[4*i:])))
	}
	return vec, nil
}
