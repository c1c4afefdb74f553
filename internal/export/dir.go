package export

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/omarshaarawi/ffstats/internal/analysis"
	"github.com/omarshaarawi/ffstats/internal/models"
)

// Report is everything written by one export run.
type Report struct {
	Weeks        []int
	Standings    *analysis.Standings
	Series       []analysis.Series
	Bootstrap    map[string]models.BootstrapResult
	// PlayerErrors covers ErrorWeek only, ordered by absolute error.
	ErrorWeek    int
	PlayerErrors []analysis.PlayerError
}

// Dir lays out exports as <Root>/tables and <Root>/figures.
type Dir struct {
	Root string
}

func (d Dir) Tables() string  { return filepath.Join(d.Root, "tables") }
func (d Dir) Figures() string { return filepath.Join(d.Root, "figures") }

// WriteAll writes every part of r that is set and returns the paths written.
func (d Dir) WriteAll(r Report) ([]string, error) {
	for _, dir := range []string{d.Tables(), d.Figures()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	var written []string
	write := func(path string, fn func(io.Writer) error) error {
		if err := writeFile(path, fn); err != nil {
			return err
		}
		slog.Info("Wrote export", "path", path)
		written = append(written, path)
		return nil
	}

	if r.Standings != nil {
		for _, p := range analysis.Policies {
			rows := r.Standings.Table(p)
			path := filepath.Join(d.Tables(), StandingsFileName(p, r.Weeks))
			if err := write(path, func(w io.Writer) error { return WriteStandingsCSV(w, rows) }); err != nil {
				return written, err
			}
		}
	}

	for _, s := range r.Series {
		path := filepath.Join(d.Figures(), fmt.Sprintf("%s_%s.csv", s.Name, weeksSuffix(r.Weeks)))
		if err := write(path, func(w io.Writer) error { return WriteSeriesCSV(w, s) }); err != nil {
			return written, err
		}
	}

	names := make([]string, 0, len(r.Bootstrap))
	for name := range r.Bootstrap {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		res := r.Bootstrap[name]
		path := filepath.Join(d.Tables(), fmt.Sprintf("bootstrap_%s.csv", name))
		if err := write(path, func(w io.Writer) error { return WriteBootstrapCSV(w, res) }); err != nil {
			return written, err
		}
	}

	if len(r.PlayerErrors) > 0 {
		rankings := []struct {
			prefix string
			rows   []analysis.PlayerError
		}{
			{"abs_error", r.PlayerErrors},
			{"rel_error", analysis.ByRelativeError(r.PlayerErrors)},
		}
		for _, rk := range rankings {
			path := filepath.Join(d.Figures(), fmt.Sprintf("%s_week_%d.csv", rk.prefix, r.ErrorWeek))
			if err := write(path, func(w io.Writer) error { return WritePlayerErrorsCSV(w, rk.rows) }); err != nil {
				return written, err
			}
		}
	}

	return written, nil
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
