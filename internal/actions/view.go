package actions

import (
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/joeycumines/gridedit/internal/bus"
	"github.com/joeycumines/gridedit/internal/grid"
)

// SortRequest orders the displayed rows by one column.
type SortRequest struct {
	Col  int
	Desc bool
}

// FilterRequest restricts the displayed rows. Query keeps rows where a
// scanned column contains it, ignoring case and accents; Col scans one
// column, or the titled columns when negative. Expr is an expr-lang
// predicate evaluated per row. A row must satisfy both when both are set.
//
// Expr sees:
//
//	row      the 0-based row index
//	cells    the row's values
//	A, B, …  the value in that column
//	header   the values keyed by column title
//	norm(s)  s folded for matching
//	has(s,q) whether norm(s) contains norm(q)
type FilterRequest struct {
	Col   int
	Query string
	Expr  string
}

// Active reports whether the request hides anything.
func (f FilterRequest) Active() bool {
	return fold(f.Query) != "" || strings.TrimSpace(f.Expr) != ""
}

var foldChain = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// fold lower-cases s, strips accents and trims it.
func fold(s string) string {
	if s == "" {
		return ""
	}
	out, _, err := transform.String(foldChain, s)
	if err != nil {
		out = s
	}
	out = strings.NewReplacer("đ", "d", "Đ", "D").Replace(out)
	return strings.TrimSpace(cases.Fold().String(out))
}

type compiledFilter struct {
	source  string
	cols    int
	program *vm.Program
}

// Filter returns the active filter.
func (a *Actions) Filter() FilterRequest { return a.filter }

// Sort returns the active sort, if any.
func (a *Actions) Sort() (SortRequest, bool) {
	if a.sort == nil {
		return SortRequest{}, false
	}
	return *a.sort, true
}

// ApplyFilter replaces the filter and drops any sort. It returns the number
// of rows shown. An active cell that ends up hidden moves to the first row
// shown.
func (a *Actions) ApplyFilter(req FilterRequest) (int, error) {
	if !req.Active() {
		a.ClearView()
		a.filter = req
		return a.Model.Rows(), nil
	}
	prev := a.filter
	a.filter = req
	rows, err := a.filteredRows()
	if err != nil {
		a.filter = prev
		a.status("Filter error: " + err.Error())
		return 0, err
	}
	a.sort = nil
	a.show(rows)
	if active := a.Selection.Active(); len(rows) > 0 && !slices.Contains(rows, active.R) {
		a.Selection.SetActive(rows[0], active.C)
		a.Bus.Emit(bus.EventSelectionChanged, nil)
	}
	a.status(fmt.Sprintf("Filter: %d/%d rows", len(rows), a.Model.Rows()))
	return len(rows), nil
}

// ApplySort orders the filtered rows by req.Col, empty values last. A
// descending sort also hides rows empty in that column; the number hidden
// is returned.
func (a *Actions) ApplySort(req SortRequest) (int, error) {
	if req.Col < 0 || req.Col >= a.Model.Cols() {
		return 0, fmt.Errorf("%w: no column %d", ErrInvalidPayload, req.Col)
	}
	rows, err := a.filteredRows()
	if err != nil {
		return 0, err
	}
	rows, removed := a.sortRows(rows, req)
	a.sort = &req
	a.show(rows)
	if len(rows) > 0 {
		a.Selection.SetActive(rows[0], a.Selection.Active().C)
		a.Bus.Emit(bus.EventSelectionChanged, nil)
	}
	dir := "A→Z"
	if req.Desc {
		dir = "Z→A"
	}
	msg := fmt.Sprintf("Sorted %s by %q", dir, a.columnName(req.Col))
	if removed > 0 {
		msg += fmt.Sprintf(" (%d empty rows hidden)", removed)
	}
	a.status(msg)
	return removed, nil
}

// ClearView shows every row in model order.
func (a *Actions) ClearView() {
	a.filter = FilterRequest{Col: -1}
	a.sort = nil
	a.show(nil)
	a.status("")
}

func (a *Actions) show(rows []int) {
	a.Renderer.SetRowIndexList(rows)
	// layout must be current before the selection listeners scroll
	a.Renderer.Render()
}

// refreshView recomputes the row list after rows moved.
func (a *Actions) refreshView() {
	if !a.filter.Active() && a.sort == nil {
		return
	}
	rows, err := a.filteredRows()
	if err != nil {
		a.Logger.Warn("filter failed after edit", "error", err)
		a.ClearView()
		return
	}
	if a.sort != nil {
		if a.sort.Col >= a.Model.Cols() {
			a.sort = nil
		} else {
			rows, _ = a.sortRows(rows, *a.sort)
		}
	}
	a.show(rows)
}

func (a *Actions) columnName(c int) string {
	if h := a.Renderer.Headers(); c < len(h) && strings.TrimSpace(h[c]) != "" {
		return strings.TrimSpace(h[c])
	}
	return "Column " + grid.ColLabel(c)
}

func (a *Actions) sortRows(rows []int, req SortRequest) ([]int, int) {
	value := func(r int) string { return strings.TrimSpace(a.Model.Get(r, req.Col)) }
	removed := 0
	if req.Desc {
		kept := rows[:0]
		for _, r := range rows {
			if value(r) == "" {
				removed++
				continue
			}
			kept = append(kept, r)
		}
		rows = kept
	}
	slices.SortStableFunc(rows, func(ra, rb int) int {
		va, vb := value(ra), value(rb)
		switch {
		case va == "" && vb == "":
			return 0
		case va == "":
			return 1
		case vb == "":
			return -1
		}
		d := a.collator.CompareString(va, vb)
		if req.Desc {
			return -d
		}
		return d
	})
	return rows, removed
}

// filteredRows lists the model rows passing the active filter, in order.
func (a *Actions) filteredRows() ([]int, error) {
	n := a.Model.Rows()
	rows := make([]int, 0, n)
	if !a.filter.Active() {
		for r := range n {
			rows = append(rows, r)
		}
		return rows, nil
	}

	var program *vm.Program
	if src := strings.TrimSpace(a.filter.Expr); src != "" {
		p, err := a.compile(src)
		if err != nil {
			return nil, err
		}
		program = p
	}
	q := fold(a.filter.Query)
	cols := a.scanCols()
	headers := a.Renderer.Headers()

	for r := range n {
		if q != "" && !slices.ContainsFunc(cols, func(c int) bool {
			return strings.Contains(fold(a.Model.Get(r, c)), q)
		}) {
			continue
		}
		if program != nil {
			out, err := expr.Run(program, a.rowEnv(r, headers))
			if err != nil {
				return nil, fmt.Errorf("filter row %d: %w", r+1, err)
			}
			if ok, _ := out.(bool); !ok {
				continue
			}
		}
		rows = append(rows, r)
	}
	return rows, nil
}

// scanCols returns the columns a query is matched against.
func (a *Actions) scanCols() []int {
	if c := a.filter.Col; c >= 0 {
		if c < a.Model.Cols() {
			return []int{c}
		}
		return nil
	}
	var cols []int
	for c, h := range a.Renderer.Headers() {
		if c < a.Model.Cols() && strings.TrimSpace(h) != "" {
			cols = append(cols, c)
		}
	}
	if len(cols) > 0 {
		return cols
	}
	for c := range a.Model.Cols() {
		cols = append(cols, c)
	}
	return cols
}

func (a *Actions) compile(src string) (*vm.Program, error) {
	if p := a.program; p != nil && p.source == src && p.cols == a.Model.Cols() {
		return p.program, nil
	}
	program, err := expr.Compile(src,
		expr.Env(a.rowEnv(0, a.Renderer.Headers())),
		expr.AsBool(),
		expr.AllowUndefinedVariables(),
	)
	if err != nil {
		return nil, fmt.Errorf("compile filter: %w", err)
	}
	a.program = &compiledFilter{source: src, cols: a.Model.Cols(), program: program}
	return program, nil
}

func (a *Actions) rowEnv(r int, headers []string) map[string]any {
	cols := a.Model.Cols()
	cells := make([]string, cols)
	header := make(map[string]string, len(headers))
	env := make(map[string]any, cols+5)
	for c := range cols {
		v := a.Model.Get(r, c)
		cells[c] = v
		env[grid.ColLabel(c)] = v
		if c < len(headers) {
			if h := strings.TrimSpace(headers[c]); h != "" {
				header[h] = v
			}
		}
	}
	env["row"] = r
	env["cells"] = cells
	env["header"] = header
	env["norm"] = fold
	env["has"] = func(s, q string) bool { return strings.Contains(fold(s), fold(q)) }
	return env
}

func (a *Actions) viewFilter(payload any) (any, error) {
	req, err := filterRequest(payload)
	if err != nil {
		return nil, err
	}
	return a.ApplyFilter(req)
}

func (a *Actions) viewSort(payload any) (any, error) {
	req, err := sortRequest(payload, a.Selection.Active().C)
	if err != nil {
		return nil, err
	}
	return a.ApplySort(req)
}

func (a *Actions) viewClear(any) (any, error) {
	a.ClearView()
	return nil, nil
}
