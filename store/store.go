// Package store persists operator sums and spectra in sqlite, so that runs of
// the surrounding workflow can be resumed and gathered later. The core
// algebra packages never touch persistence; this layer serializes terms by
// their operator label strings and reconstructs them by parsing.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/fumin/qop"
)

const (
	tableRuns    = "runs"
	tableTerms   = "terms"
	tableSpectra = "spectra"
)

// RunMeta describes one run of the workflow.
type RunMeta struct {
	Model     string
	Sites     int
	Params    map[string]float64
	CreatedAt time.Time
}

// Store is a sqlite backed store of runs.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

// Open opens or creates the store at the given path.
func Open(path string, log zerolog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s", path))
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	if err := prepareDB(db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "")
	}
	return &Store{db: db, log: log.With().Str("component", "store").Logger()}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func prepareDB(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (id TEXT PRIMARY KEY, meta BLOB) STRICT`, tableRuns),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (run_id TEXT, ops TEXT, re REAL, im REAL, PRIMARY KEY (run_id, ops)) STRICT`, tableTerms),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (run_id TEXT, idx INTEGER, energy REAL, PRIMARY KEY (run_id, idx)) STRICT`, tableSpectra),
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, stmt)
		}
	}
	return nil
}

// CreateRun records a new run and returns its id.
func (s *Store) CreateRun(ctx context.Context, meta RunMeta) (string, error) {
	id := uuid.NewString()
	b, err := msgpack.Marshal(meta)
	if err != nil {
		return "", errors.Wrap(err, "")
	}
	sqlStr := fmt.Sprintf(`INSERT INTO %s (id, meta) VALUES (?, ?)`, tableRuns)
	if _, err := s.db.ExecContext(ctx, sqlStr, id, b); err != nil {
		return "", errors.Wrap(err, "")
	}
	s.log.Debug().Str("run", id).Str("model", meta.Model).Int("sites", meta.Sites).Msg("run created")
	return id, nil
}

// Run returns the metadata of a run.
func (s *Store) Run(ctx context.Context, id string) (RunMeta, error) {
	sqlStr := fmt.Sprintf(`SELECT meta FROM %s WHERE id=?`, tableRuns)
	var b []byte
	if err := s.db.QueryRowContext(ctx, sqlStr, id).Scan(&b); err != nil {
		return RunMeta{}, errors.Wrap(err, id)
	}
	var meta RunMeta
	if err := msgpack.Unmarshal(b, &meta); err != nil {
		return RunMeta{}, errors.Wrap(err, id)
	}
	return meta, nil
}

// Runs returns the ids of all runs in creation order.
func (s *Store) Runs(ctx context.Context) ([]string, error) {
	sqlStr := fmt.Sprintf(`SELECT id, meta FROM %s`, tableRuns)
	rows, err := s.db.QueryContext(ctx, sqlStr)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	defer rows.Close()

	type idMeta struct {
		id   string
		meta RunMeta
	}
	ims := make([]idMeta, 0)
	for rows.Next() {
		var im idMeta
		var b []byte
		if err := rows.Scan(&im.id, &b); err != nil {
			return nil, errors.Wrap(err, "")
		}
		if err := msgpack.Unmarshal(b, &im.meta); err != nil {
			return nil, errors.Wrap(err, im.id)
		}
		ims = append(ims, im)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "")
	}
	slices.SortFunc(ims, func(a, b idMeta) int { return a.meta.CreatedAt.Compare(b.meta.CreatedAt) })

	ids := make([]string, 0, len(ims))
	for _, im := range ims {
		ids = append(ids, im.id)
	}
	return ids, nil
}

// SaveSum stores the terms of a sum under a run, one row per term keyed by
// the operator label string. Any previously stored sum of the run is
// replaced, so terms cancelled since the last save leave no stale rows.
func SaveSum[O qop.Kind[O], C qop.Complex](ctx context.Context, s *Store, runID string, sum *qop.Sum[O, C]) error {
	sqlStr := fmt.Sprintf(`DELETE FROM %s WHERE run_id=?`, tableTerms)
	if _, err := s.db.ExecContext(ctx, sqlStr, runID); err != nil {
		return errors.Wrap(err, runID)
	}
	for _, t := range sum.Terms() {
		coeff := complex128(t.Coeff())
		sqlStr := fmt.Sprintf(`INSERT INTO %s (run_id, ops, re, im) VALUES (?, ?, ?, ?)`, tableTerms)
		if _, err := s.db.ExecContext(ctx, sqlStr, runID, t.Labels(), real(coeff), imag(coeff)); err != nil {
			return errors.Wrap(err, fmt.Sprintf("%s %s", runID, t.Labels()))
		}
	}
	s.log.Debug().Str("run", runID).Int("terms", sum.Len()).Msg("sum saved")
	return nil
}

// LoadSum loads the sum of a run by parsing the stored label strings.
func LoadSum[O qop.Kind[O], C qop.Complex](ctx context.Context, s *Store, runID string) (*qop.Sum[O, C], error) {
	sqlStr := fmt.Sprintf(`SELECT ops, re, im FROM %s WHERE run_id=? ORDER BY ops`, tableTerms)
	rows, err := s.db.QueryContext(ctx, sqlStr, runID)
	if err != nil {
		return nil, errors.Wrap(err, runID)
	}
	defer rows.Close()

	sum := qop.NewSum[O, C]()
	for rows.Next() {
		var ops string
		var re, im float64
		if err := rows.Scan(&ops, &re, &im); err != nil {
			return nil, errors.Wrap(err, runID)
		}
		t, err := qop.Parse[O](ops, C(complex(re, im)))
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("%s %s", runID, ops))
		}
		sum.Add(t)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, runID)
	}
	return sum, nil
}

// SaveSpectrum stores the eigenvalues of a run.
func (s *Store) SaveSpectrum(ctx context.Context, runID string, energies []float64) error {
	for i, e := range energies {
		sqlStr := fmt.Sprintf(`INSERT OR REPLACE INTO %s (run_id, idx, energy) VALUES (?, ?, ?)`, tableSpectra)
		if _, err := s.db.ExecContext(ctx, sqlStr, runID, i, e); err != nil {
			return errors.Wrap(err, fmt.Sprintf("%s %d", runID, i))
		}
	}
	return nil
}

// Spectrum returns the stored eigenvalues of a run in ascending index order.
func (s *Store) Spectrum(ctx context.Context, runID string) ([]float64, error) {
	sqlStr := fmt.Sprintf(`SELECT energy FROM %s WHERE run_id=? ORDER BY idx`, tableSpectra)
	rows, err := s.db.QueryContext(ctx, sqlStr, runID)
	if err != nil {
		return nil, errors.Wrap(err, runID)
	}
	defer rows.Close()

	energies := make([]float64, 0)
	for rows.Next() {
		var e float64
		if err := rows.Scan(&e); err != nil {
			return nil, errors.Wrap(err, runID)
		}
		energies = append(energies, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, runID)
	}
	return energies, nil
}
