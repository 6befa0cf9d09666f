package risk

import (
	"math"
	"sort"
	"time"

	"github.com/Aidin1998/riskcore/pkg/models"
)

// dateKey joins series on the calendar day, ignoring time-of-day noise.
func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// ReturnSeries is an ordered daily simple-return series. Dates and Values
// are parallel; Values[i] belongs to Dates[i], the later day of each
// consecutive close pair.
type ReturnSeries struct {
	Dates  []time.Time
	Values []float64
}

// Len returns the number of return observations.
func (s ReturnSeries) Len() int { return len(s.Values) }

// Slice returns the sub-series whose dates fall inside [start, end],
// inclusive on both ends.
func (s ReturnSeries) Slice(start, end time.Time) ReturnSeries {
	sk, ek := dateKey(start), dateKey(end)
	var out ReturnSeries
	for i, d := range s.Dates {
		k := dateKey(d)
		if k >= sk && k <= ek {
			out.Dates = append(out.Dates, d)
			out.Values = append(out.Values, s.Values[i])
		}
	}
	return out
}

// BuildReturnSeries converts an ordered close series into simple returns:
// Values[i] = close[i+1]/close[i] - 1. A series of n valid prices yields
// exactly n-1 returns; the first price yields none. Points with
// non-positive closes and non-finite ratios are skipped.
func BuildReturnSeries(prices []models.PricePoint) ReturnSeries {
	var out ReturnSeries
	havePrev := false
	var prev float64
	for _, p := range prices {
		if !p.Valid() {
			continue
		}
		c := p.Close.InexactFloat64()
		if c <= 0 || math.IsInf(c, 0) || math.IsNaN(c) {
			continue
		}
		if havePrev {
			r := c/prev - 1
			if !math.IsNaN(r) && !math.IsInf(r, 0) {
				out.Dates = append(out.Dates, p.Date)
				out.Values = append(out.Values, r)
			}
		}
		prev = c
		havePrev = true
	}
	return out
}

// AlignedPair holds two return series inner-joined on date. Asset and Bench
// have identical length; dates present on only one side are dropped from
// both.
type AlignedPair struct {
	Dates []time.Time
	Asset []float64
	Bench []float64
}

// Len returns the number of joined observations.
func (p AlignedPair) Len() int { return len(p.Dates) }

// AlignSeries inner-joins an asset series with a benchmark series on
// calendar date.
func AlignSeries(asset, bench ReturnSeries) AlignedPair {
	byDate := make(map[string]float64, bench.Len())
	for i, d := range bench.Dates {
		byDate[dateKey(d)] = bench.Values[i]
	}

	var out AlignedPair
	for i, d := range asset.Dates {
		if b, ok := byDate[dateKey(d)]; ok {
			out.Dates = append(out.Dates, d)
			out.Asset = append(out.Asset, asset.Values[i])
			out.Bench = append(out.Bench, b)
		}
	}
	return out
}

// ReturnTable is a wide return table keyed by date, one column per symbol.
// Column order is fixed by Symbols so derived statistics are deterministic.
type ReturnTable struct {
	Symbols []string
	dates   []time.Time
	// cells[dateKey][column index]; a date row may miss some symbols
	cells map[string][]float64
	has   map[string][]bool
}

// BuildReturnTable assembles per-symbol return series into a wide table over
// the union of their dates. The symbols slice fixes column order; symbols
// absent from the map yield empty columns.
func BuildReturnTable(series map[string]ReturnSeries, symbols []string) ReturnTable {
	t := ReturnTable{
		Symbols: append([]string(nil), symbols...),
		cells:   make(map[string][]float64),
		has:     make(map[string][]bool),
	}

	seen := make(map[string]time.Time)
	for col, sym := range t.Symbols {
		s := series[sym]
		for i, d := range s.Dates {
			k := dateKey(d)
			if _, ok := t.cells[k]; !ok {
				t.cells[k] = make([]float64, len(t.Symbols))
				t.has[k] = make([]bool, len(t.Symbols))
				seen[k] = d
			}
			t.cells[k][col] = s.Values[i]
			t.has[k][col] = true
		}
	}

	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	t.dates = make([]time.Time, len(keys))
	for i, k := range keys {
		t.dates[i] = seen[k]
	}
	return t
}

// CompleteRows returns the dates and row-major data of the rows where every
// symbol has an observation. The data laid out as one row per date matches
// the (observations x variables) shape the matrix statistics expect.
func (t ReturnTable) CompleteRows() ([]time.Time, []float64) {
	var dates []time.Time
	var data []float64
	for _, d := range t.dates {
		k := dateKey(d)
		complete := true
		for _, ok := range t.has[k] {
			if !ok {
				complete = false
				break
			}
		}
		if !complete {
			continue
		}
		dates = append(dates, d)
		data = append(data, t.cells[k]...)
	}
	return dates, data
}

// Column returns the series of one symbol restricted to complete rows, in
// row order. The second result is false when the symbol is not in the table.
func (t ReturnTable) Column(symbol string) ([]float64, bool) {
	col := -1
	for i, s := range t.Symbols {
		if s == symbol {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, false
	}
	_, data := t.CompleteRows()
	k := len(t.Symbols)
	out := make([]float64, 0, len(data)/k)
	for i := col; i < len(data); i += k {
		out = append(out, data[i])
	}
	return out, true
}
