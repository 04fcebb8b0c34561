package history

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// Header returns the CSV header for k clusters.
func Header(k int) []string {
	header := make([]string, 0, k+5)
	header = append(header, "Point", "X", "Y")
	for c := 1; c <= k; c++ {
		header = append(header, fmt.Sprintf("Distance_to_C%d", c))
	}
	return append(header, "Assigned_Cluster", "Assigned_Distance")
}

// ClusterLabel returns the 1-based display label of a cluster index.
func ClusterLabel(cluster int) string {
	return "C" + strconv.Itoa(cluster+1)
}

// ExportCSV renders the distance table of an iteration as CSV.
// Rendered tables are cached; the caller owns the returned slice.
func (h *History) ExportCSV(iteration int) ([]byte, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	key := csvKey{gen: h.gen, iteration: iteration}
	if b, ok := h.csvCache.Get(key); ok {
		return bytes.Clone(b), nil
	}

	var buf bytes.Buffer
	if err := h.writeCSVLocked(&buf, iteration); err != nil {
		return nil, err
	}

	b := buf.Bytes()
	h.csvCache.Set(key, b)
	return bytes.Clone(b), nil
}

// WriteCSV streams the distance table of an iteration to w.
func (h *History) WriteCSV(w io.Writer, iteration int) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.writeCSVLocked(w, iteration)
}

func (h *History) writeCSVLocked(w io.Writer, iteration int) error {
	rec, err := h.getLocked(iteration)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Header(h.k)); err != nil {
		return err
	}

	row := make([]string, 0, h.k+5)
	for _, d := range rec.Distances {
		p := h.points[d.Point]
		row = row[:0]
		row = append(row, strconv.Itoa(d.Point+1), formatFloat(p.X), formatFloat(p.Y))
		for _, dist := range d.ToCluster {
			row = append(row, formatFloat(dist))
		}
		row = append(row, ClusterLabel(d.Cluster), formatFloat(d.Distance))

		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
