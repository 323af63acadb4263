// Command run builds model Hamiltonians, maps them to qubit operators through
// the Jordan-Wigner transform, diagonalizes them, and persists the resulting
// sums and spectra. Completed solves are marked on disk so that an
// interrupted sweep resumes where it left off. The final gather step prints a
// CSV summary of every stored run.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/fumin/tensor"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/fumin/qop"
	"github.com/fumin/qop/chem"
	"github.com/fumin/qop/fermi"
	"github.com/fumin/qop/jw"
	"github.com/fumin/qop/mat"
	"github.com/fumin/qop/pauli"
	"github.com/fumin/qop/store"
)

const (
	fnameDone  = "done.txt"
	fnameRunID = "id.txt"

	// maxDenseSites is the largest site count diagonalized densely;
	// larger systems go through the iterative ground state solver.
	maxDenseSites = 10
)

var (
	runDir = flag.String("d", "", "run directory, overrides RUN_DIR")
)

// Config holds the workflow configuration.
type Config struct {
	RunDir   string
	DBPath   string
	LogLevel string
	MaxSites int
	Workers  int
}

func loadConfig() Config {
	_ = godotenv.Load()
	cfg := Config{
		RunDir:   getEnv("RUN_DIR", filepath.Join("runs", "qop")),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		MaxSites: getEnvAsInt("MAX_SITES", 8),
		Workers:  getEnvAsInt("WORKERS", 4),
	}
	if *runDir != "" {
		cfg.RunDir = *runDir
	}
	cfg.DBPath = getEnv("DB_PATH", filepath.Join(cfg.RunDir, "qop.db"))
	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func newLogger(level string) zerolog.Logger {
	lvl := zerolog.InfoLevel
	switch level {
	case "debug":
		lvl = zerolog.DebugLevel
	case "warn":
		lvl = zerolog.WarnLevel
	case "error":
		lvl = zerolog.ErrorLevel
	}
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	return zerolog.New(output).Level(lvl).With().Timestamp().Logger()
}

// model is one Hamiltonian to solve.
type model struct {
	name     string
	sites    int
	params   map[string]float64
	hamilton func() (*qop.Sum[fermi.Fermi, complex64], error)
}

func newModels(cfg Config) []model {
	models := make([]model, 0)
	for n := 2; n <= cfg.MaxSites; n++ {
		for _, u := range []float64{0, 2} {
			m := model{
				name:   "hopping",
				sites:  n,
				params: map[string]float64{"t": 1, "u": u},
				hamilton: func() (*qop.Sum[fermi.Fermi, complex64], error) {
					return chem.HoppingChain(n, 1, complex(float32(u), 0)), nil
				},
			}
			models = append(models, m)
		}
	}
	models = append(models, model{
		name:     "H2",
		sites:    4,
		params:   map[string]float64{"bond": 0.7414},
		hamilton: h2Molecule,
	})
	return models
}

// h2Molecule returns the molecular Hamiltonian of H2 in the STO-3G basis at
// bond length 0.7414 Angstrom, on the four spin orbitals {0up, 0dn, 1up, 1dn}.
// The integral values fold the ordering signs of the physicist index
// convention, as MolecularHamiltonian expects.
func h2Molecule() (*qop.Sum[fermi.Fermi, complex64], error) {
	const (
		eNuc  = 0.7151043
		h00   = -1.2524636
		h11   = -0.4759487
		g0000 = 0.6744888
		g1111 = 0.6975784
		g0011 = 0.6634681
		g0110 = 0.1812875
	)
	h1 := [][]complex64{
		{h00, 0, 0, 0},
		{0, h00, 0, 0},
		{0, 0, h11, 0},
		{0, 0, 0, h11},
	}

	h2 := make([][][][]complex64, 4)
	for p := range h2 {
		h2[p] = make([][][]complex64, 4)
		for q := range h2[p] {
			h2[p][q] = make([][]complex64, 4)
			for r := range h2[p][q] {
				h2[p][q][r] = make([]complex64, 4)
			}
		}
	}
	set := func(p, q, r, s int, v complex64) { h2[p][q][r][s] += v }
	// Same orbital pairs: g n_p n_q.
	set(0, 1, 1, 0, g0000/2)
	set(1, 0, 0, 1, g0000/2)
	set(2, 3, 3, 2, g1111/2)
	set(3, 2, 2, 3, g1111/2)
	// Cross orbital opposite spin pairs: direct interaction only.
	for _, pq := range [][2]int{{0, 3}, {3, 0}, {1, 2}, {2, 1}} {
		set(pq[0], pq[1], pq[1], pq[0], g0011/2)
	}
	// Cross orbital same spin pairs: direct minus exchange.
	for _, pq := range [][2]int{{0, 2}, {2, 0}, {1, 3}, {3, 1}} {
		set(pq[0], pq[1], pq[1], pq[0], g0011/2)
		set(pq[0], pq[1], pq[0], pq[1], -g0110/2)
	}
	// Double excitations between the two spatial orbitals. Sorting the mode
	// operators into site order swaps one pair, flipping the sign.
	set(0, 1, 3, 2, -g0110/2)
	set(1, 0, 2, 3, -g0110/2)
	set(2, 3, 1, 0, -g0110/2)
	set(3, 2, 0, 1, -g0110/2)

	return chem.MolecularHamiltonian(eNuc, tensor.T2(h1), tensor.T4(h2), 1e-12)
}

// result is the outcome of one solve, gathered into the summary CSV.
type result struct {
	meta     store.RunMeta
	energies []float64
}

func solve(ctx context.Context, log zerolog.Logger, db *store.Store, dir string, m model, workers int) error {
	donePath := filepath.Join(dir, fnameDone)
	if _, err := os.Stat(donePath); err == nil {
		return nil
	}
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return errors.Wrap(err, "")
	}

	h, err := m.hamilton()
	if err != nil {
		return errors.Wrap(err, "")
	}
	qubits := jw.Transform[pauli.Pauli](h)
	matrix := qubits.Matrix(qop.NewMatrixOptions().Workers(workers).Sites(m.sites))

	// Diagonalize.
	var energies []float64
	var vvs []mat.ValVec
	switch {
	case m.sites <= maxDenseSites:
		vvs = matrix.Eigen()
		for _, vv := range vvs {
			energies = append(energies, real(vv.Val))
		}
	default:
		e0, vec, err := mat.GroundState(matrix)
		if err != nil {
			return errors.Wrap(err, "")
		}
		energies = []float64{e0}
		ground := mat.ValVec{Val: complex(e0, 0), Vec: make([]complex128, 0, len(vec))}
		for _, v := range vec {
			ground.Vec = append(ground.Vec, complex128(v))
		}
		vvs = []mat.ValVec{ground}
	}
	stats, err := chem.GetStatistics(m.sites, vvs)
	if err != nil {
		return errors.Wrap(err, "")
	}

	// Persist.
	params := map[string]float64{"filling": stats.Filling}
	for k, v := range m.params {
		params[k] = v
	}
	meta := store.RunMeta{Model: m.name, Sites: m.sites, Params: params, CreatedAt: time.Now()}
	runID, err := db.CreateRun(ctx, meta)
	if err != nil {
		return errors.Wrap(err, "")
	}
	if err := store.SaveSum(ctx, db, runID, qubits); err != nil {
		return errors.Wrap(err, "")
	}
	if err := db.SaveSpectrum(ctx, runID, energies); err != nil {
		return errors.Wrap(err, "")
	}

	if err := os.WriteFile(filepath.Join(dir, fnameRunID), []byte(runID), 0644); err != nil {
		return errors.Wrap(err, "")
	}
	if err := os.WriteFile(donePath, nil, 0644); err != nil {
		return errors.Wrap(err, "")
	}
	log.Info().Str("model", m.name).Int("sites", m.sites).Float64("e0", energies[0]).Msg("solved")
	return nil
}

func gather(ctx context.Context, db *store.Store) ([]result, error) {
	ids, err := db.Runs(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	results := make([]result, 0, len(ids))
	for _, id := range ids {
		meta, err := db.Run(ctx, id)
		if err != nil {
			return nil, errors.Wrap(err, id)
		}
		energies, err := db.Spectrum(ctx, id)
		if err != nil {
			return nil, errors.Wrap(err, id)
		}
		results = append(results, result{meta: meta, energies: energies})
	}
	return results, nil
}

func main() {
	flag.Parse()
	cfg := loadConfig()
	log := newLogger(cfg.LogLevel)

	if err := mainWithErr(cfg, log); err != nil {
		log.Fatal().Msgf("%+v", err)
	}
}

func mainWithErr(cfg Config, log zerolog.Logger) error {
	if err := os.MkdirAll(cfg.RunDir, os.ModePerm); err != nil {
		return errors.Wrap(err, "")
	}
	db, err := store.Open(cfg.DBPath, log)
	if err != nil {
		return errors.Wrap(err, "")
	}
	defer db.Close()
	ctx := context.Background()

	for _, m := range newModels(cfg) {
		dir := filepath.Join(cfg.RunDir, m.name, fmt.Sprintf("%d", m.sites), paramStr(m.params))
		if err := solve(ctx, log, db, dir, m, cfg.Workers); err != nil {
			return errors.Wrap(err, fmt.Sprintf("%s %d", m.name, m.sites))
		}
	}

	results, err := gather(ctx, db)
	if err != nil {
		return errors.Wrap(err, "")
	}
	fmt.Printf("model,sites,t,u,e0,filling\n")
	for _, r := range results {
		p := r.meta.Params
		fmt.Printf("%s,%d,%f,%f,%f,%f\n", r.meta.Model, r.meta.Sites, p["t"], p["u"], r.energies[0], p["filling"])
	}
	return nil
}

func paramStr(params map[string]float64) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	s := ""
	for i, k := range keys {
		if i > 0 {
			s += "_"
		}
		s += fmt.Sprintf("%s%g", k, params[k])
	}
	return s
}
