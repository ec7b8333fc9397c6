package xlsheet

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Records returns the rows after the header as maps keyed by header text.
// Cells missing from a short row map to "". Header cells that are empty are
// keyed by their column name ("A", "B", ...).
func (m *Manager) Records(name string) ([]map[string]string, error) {
	sh, err := m.sheet("records", name)
	if err != nil {
		return nil, err
	}
	if len(sh.rows) == 0 {
		return nil, nil
	}
	keys := headerKeys(sh.rows[0])
	out := make([]map[string]string, 0, len(sh.rows)-1)
	for _, row := range sh.rows[1:] {
		rec := make(map[string]string, len(keys))
		for j, k := range keys {
			if j < len(row) {
				rec[k] = row[j]
			} else {
				rec[k] = ""
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

// Filter returns copies of the rows after the header for which condition,
// an expr-lang expression, evaluates to true. Each header is bound as a
// string variable; row is the 0-based data row index and num(s) parses a
// cell as a float (0 when it is not numeric). A header named row or num
// hides the builtin of that name. Headers that are not valid identifiers
// are reachable as $env["Height (m)"].
//
//	m.Filter("Levels", `num(H_m) > 3 && Name != "Roof"`)
func (m *Manager) Filter(name, condition string) ([][]string, error) {
	sh, err := m.sheet("filter", name)
	if err != nil {
		return nil, err
	}
	if len(sh.rows) == 0 {
		return nil, nil
	}
	keys := headerKeys(sh.rows[0])
	var out [][]string
	for i, row := range sh.rows[1:] {
		env := make(map[string]any, len(keys)+2)
		env["row"] = i
		env["num"] = num
		for j, k := range keys {
			v := ""
			if j < len(row) {
				v = row[j]
			}
			env[k] = v
		}
		ok, err := defaultConditions.isTrue(condition, keys, env)
		if err != nil {
			return nil, fmt.Errorf("filter %q row %d: %w", name, i+1, err)
		}
		if ok {
			out = append(out, append([]string(nil), row...))
		}
	}
	return out, nil
}

// headerKeys returns the variable name of each header column.
func headerKeys(header []string) []string {
	keys := make([]string, len(header))
	for j, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			h = ColToName(j)
		}
		keys[j] = h
	}
	return keys
}

func num(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}

// conditionCache compiles expr-lang conditions once per expression text and
// header layout.
type conditionCache struct {
	cache sync.Map // condition + header keys → compiled *vm.Program
}

var defaultConditions = &conditionCache{}

func (c *conditionCache) isTrue(condition string, keys []string, env map[string]any) (bool, error) {
	program, err := c.compile(condition, keys, env)
	if err != nil {
		return false, fmt.Errorf("compile condition %q: %w", condition, err)
	}
	result, err := expr.Run(program, env)
	if err != nil {
		return false, fmt.Errorf("evaluate condition %q: %w", condition, err)
	}
	if result == nil {
		return false, nil
	}
	b, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("condition %q evaluated to %T, expected bool", condition, result)
	}
	return b, nil
}

func (c *conditionCache) compile(condition string, keys []string, env map[string]any) (*vm.Program, error) {
	key := condition + "\x00" + strings.Join(keys, "\x00")
	if cached, ok := c.cache.Load(key); ok {
		return cached.(*vm.Program), nil
	}
	program, err := expr.Compile(condition, expr.Env(env), expr.AllowUndefinedVariables())
	if err != nil {
		return nil, err
	}
	c.cache.Store(key, program)
	return program, nil
}
