package ogip

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/astrogo/fitsio"

	"github.com/cwbudde/algo-xspec/mjd"
)

// File is an OGIP spectrum file opened for reading: primary HDU, rate
// extension and energy extension. The primary and energy HDUs are kept
// opaque so they can be written back unchanged.
type File struct {
	Path       string
	Primary    fitsio.HDU
	RateHeader Header
	Rate       *RateTable
	Energy     fitsio.HDU

	fits *fitsio.File
	r    *os.File
}

// Close releases the underlying file.
func (f *File) Close() error {
	var errs []error
	if f.fits != nil {
		errs = append(errs, f.fits.Close())
	}
	if f.r != nil {
		errs = append(errs, f.r.Close())
	}
	return errors.Join(errs...)
}

// ReadFile opens an OGIP rate file and decodes its rate extension.
func ReadFile(path string) (*File, error) {
	r, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	ff, err := fitsio.Open(r)
	if err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	f := &File{Path: path, fits: ff, r: r}

	hdus := ff.HDUs()
	if len(hdus) < 3 {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %s has %d", ErrLayout, path, len(hdus))
	}

	tbl, ok := hdus[1].(*fitsio.Table)
	if !ok {
		_ = f.Close()
		return nil, fmt.Errorf("%w: HDU 1 of %s is not a table", ErrLayout, path)
	}

	rate, err := readRateTable(tbl)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	f.Primary = hdus[0]
	f.RateHeader = headerFromFITS(tbl.Header())
	f.Rate = rate
	f.Energy = hdus[2]

	return f, nil
}

// headerFromFITS copies every card up to END. Keys omits commentary
// cards, so it only bounds headers that were never encoded.
func headerFromFITS(h *fitsio.Header) Header {
	n := h.Index("END")
	if n < 0 {
		for _, k := range h.Keys() {
			n = max(n, h.Index(k))
		}
		n++
	}
	cards := make([]Card, 0, n)
	for i := range n {
		c := h.Card(i)
		if c == nil {
			continue
		}
		cards = append(cards, Card{Name: c.Name, Value: c.Value, Comment: c.Comment})
	}
	return NewHeader(cards...)
}

func readRateTable(tbl *fitsio.Table) (*RateTable, error) {
	cols := tbl.Cols()
	index := make(map[string]int, len(cols))
	dests := make([]any, len(cols))
	for i, col := range cols {
		index[normalize(col.Name)] = i
		d, err := newColumnValue(col.Format)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", col.Name, err)
		}
		dests[i] = d
	}

	for _, name := range []string{"TIME", "TIMEDEL", "RATE", "STAT_ERR", "LIVETIME"} {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}

	rows, err := tbl.Read(0, tbl.NumRows())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := &RateTable{}
	col := func(name string) (any, bool) {
		i, ok := index[name]
		if !ok {
			return nil, false
		}
		return dests[i], true
	}

	for rows.Next() {
		if err := rows.Scan(dests...); err != nil {
			return nil, err
		}

		v, _ := col("TIME")
		out.Time = append(out.Time, scalarOf(v))
		v, _ = col("TIMEDEL")
		out.TimeDel = append(out.TimeDel, scalarOf(v))
		v, _ = col("LIVETIME")
		out.Livetime = append(out.Livetime, scalarOf(v))
		v, _ = col("RATE")
		out.Rate = append(out.Rate, floatsOf(v))
		v, _ = col("STAT_ERR")
		out.StatErr = append(out.StatErr, floatsOf(v))

		if v, ok := col("SYS_ERR"); ok {
			out.SysErr = append(out.SysErr, floatsOf(v))
		}
		if v, ok := col("CHANNEL"); ok {
			out.Channel = append(out.Channel, int32sOf(v))
		}
		if v, ok := col("SPEC_NUM"); ok {
			out.SpecNum = append(out.SpecNum, int64(scalarOf(v)))
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return out, out.Validate()
}

// structural keywords are written by the FITS encoder itself.
var structural = map[string]bool{
	"XTENSION": true, "BITPIX": true, "NAXIS": true, "NAXIS1": true, "NAXIS2": true,
	"PCOUNT": true, "GCOUNT": true, "TFIELDS": true, "EXTNAME": true, "END": true,
}

var columnKeyword = []string{"TTYPE", "TFORM", "TUNIT", "TDIM", "TNULL", "TSCAL", "TZERO", "TDISP", "TBCOL", "THEAP"}

func isStructural(name string) bool {
	if structural[name] {
		return true
	}
	for _, p := range columnKeyword {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// WriteSpectrum writes a three-extension spectrum file: the primary and
// energy HDUs of src unchanged and a single-row rate extension built from
// spec with header hdr. An existing path is never overwritten.
func WriteSpectrum(path string, src *File, spec *AveragedSpectrum, hdr Header) (err error) {
	if src == nil || src.Primary == nil || src.Energy == nil {
		return fmt.Errorf("%w: source file incomplete", ErrLayout)
	}

	w, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%w: %s", ErrExists, path)
		}
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := w.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	out, err := fitsio.Create(w)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}

	tbl, err := spectrumTable(spec, hdr)
	if err != nil {
		_ = out.Close()
		return err
	}
	defer tbl.Close()

	for _, hdu := range []fitsio.HDU{src.Primary, tbl, src.Energy} {
		if err := out.Write(hdu); err != nil {
			_ = out.Close()
			return fmt.Errorf("write %s HDU to %s: %w", hdu.Name(), path, err)
		}
	}

	return out.Close()
}

func spectrumTable(spec *AveragedSpectrum, hdr Header) (*fitsio.Table, error) {
	n := spec.Table.NumChannels()
	vec := func(code byte) string { return fmt.Sprintf("%d%c", n, code) }

	cols := []fitsio.Column{
		{Name: "RATE", Format: vec('D'), Unit: "counts/s"},
		{Name: "STAT_ERR", Format: vec('D'), Unit: "counts/s"},
		{Name: "CHANNEL", Format: vec('J')},
		{Name: "SPEC_NUM", Format: "K"},
		{Name: "LIVETIME", Format: vec('D')},
		{Name: "TIME", Format: "D"},
		{Name: "TIMEDEL", Format: "D", Unit: "s"},
		{Name: "SYS_ERR", Format: vec('D'), Unit: "counts/s"},
	}

	name, ok := hdr.Text("EXTNAME")
	if !ok || name == "" {
		name = "RATE"
	}

	tbl, err := fitsio.NewTable(name, cols, fitsio.BINARY_TBL)
	if err != nil {
		return nil, fmt.Errorf("new rate table: %w", err)
	}

	// Keywords the table already generated for its own columns win over
	// the copied ones; commentary cards may repeat.
	own := tbl.Header()
	var cards []fitsio.Card
	for _, c := range hdr.Cards() {
		if isStructural(c.Name) || c.Name == "" {
			continue
		}
		if c.Name != "COMMENT" && c.Name != "HISTORY" && own.Get(c.Name) != nil {
			continue
		}
		cards = append(cards, fitsio.Card{Name: c.Name, Value: cardValue(c.Value), Comment: c.Comment})
	}
	if err := tbl.Header().Append(cards...); err != nil {
		_ = tbl.Close()
		return nil, fmt.Errorf("rate header: %w", err)
	}

	row := spec.Table
	err = tbl.Write(
		arrayOf(row.Rate[0]),
		arrayOf(row.StatErr[0]),
		arrayOf(row.Channel[0]),
		&row.SpecNum[0],
		arrayOf(spec.ChannelLivetime),
		&row.Time[0],
		&row.TimeDel[0],
		arrayOf(row.SysErr[0]),
	)
	if err != nil {
		_ = tbl.Close()
		return nil, fmt.Errorf("write rate row: %w", err)
	}

	return tbl, nil
}

// cardValue narrows values to the types the FITS card encoder handles.
func cardValue(v any) any {
	switch x := v.(type) {
	case int64:
		return int(x)
	case int32:
		return int(x)
	case float32:
		return float64(x)
	}
	return v
}

// ReduceFile reads in, reduces its rate extension over [start, end) and
// writes the result to out. An empty out uses DefaultOutputName. It returns
// the path written.
func ReduceFile(in, out string, start, end any, opts ...ReduceOption) (string, *AveragedSpectrum, error) {
	src, err := ReadFile(in)
	if err != nil {
		return "", nil, err
	}
	defer src.Close()

	spec, hdr, err := Reduce(src.Rate, src.RateHeader, start, end, opts...)
	if err != nil {
		return "", nil, err
	}

	if out == "" {
		out, err = DefaultOutputName(in, start, end)
		if err != nil {
			return "", nil, err
		}
	}

	if err := WriteSpectrum(out, src, spec, hdr); err != nil {
		return "", nil, err
	}

	return out, spec, nil
}

// DefaultOutputName returns "<src without .fits>_<HHMMSS>-<HHMMSS>.fits"
// for the window bounds.
func DefaultOutputName(src string, start, end any) (string, error) {
	t0, err := mjd.Parse(start)
	if err != nil {
		return "", fmt.Errorf("window start: %w", err)
	}
	t1, err := mjd.Parse(end)
	if err != nil {
		return "", fmt.Errorf("window end: %w", err)
	}

	base := src
	if strings.EqualFold(filepath.Ext(base), ".fits") {
		base = base[:len(base)-len(".fits")]
	}

	return fmt.Sprintf("%s_%s-%s.fits", base,
		mjd.ToTime(t0).Format("150405"), mjd.ToTime(t1).Format("150405")), nil
}
