package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/mesh-intelligence/showstore/internal/sqlite"
	"github.com/mesh-intelligence/showstore/pkg/types"
)

// openStore attaches a backend using the loaded settings. The caller must
// defer Detach.
func openStore() (*sqlite.Backend, error) {
	b := sqlite.NewBackend()
	if err := b.Attach(settings.Store); err != nil {
		return nil, fmt.Errorf("attach store: %w", err)
	}
	return b, nil
}

// withStore runs fn against an attached store and detaches afterwards.
func withStore(fn func(b *sqlite.Backend) error) (err error) {
	b, err := openStore()
	if err != nil {
		return err
	}
	defer func() {
		if derr := b.Detach(); derr != nil && err == nil {
			err = derr
		}
	}()
	return fn(b)
}

func printJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// parseValues decodes a JSON object into column values. Numbers keep their
// integer form when they have one.
func parseValues(s string) (types.Values, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("values must be a JSON object: %w", err)
	}
	values := make(types.Values, len(raw))
	for k, v := range raw {
		n, ok := v.(json.Number)
		if !ok {
			values[k] = v
			continue
		}
		if i, err := n.Int64(); err == nil {
			values[k] = i
		} else if f, err := n.Float64(); err == nil {
			values[k] = f
		} else {
			return nil, fmt.Errorf("column %s: bad number %q", k, n)
		}
	}
	return values, nil
}

// parseArgs converts selection arguments given on the command line.
func parseArgs(args []string) []any {
	out := make([]any, len(args))
	for i, a := range args {
		if n, err := strconv.ParseInt(a, 10, 64); err == nil {
			out[i] = n
		} else if f, err := strconv.ParseFloat(a, 64); err == nil {
			out[i] = f
		} else {
			out[i] = a
		}
	}
	return out
}
