package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/zeusync/gridspace/internal/core/observability/log"
	"github.com/zeusync/gridspace/internal/core/spatial"
	"github.com/zeusync/gridspace/internal/core/system"
	"github.com/zeusync/gridspace/internal/injector"
	"github.com/zeusync/gridspace/pkg/encoding"
)

type options struct {
	config  string
	space   string
	restore bool
	imports string
	query   string
	types   string
	save    bool
}

func main() {
	var o options
	flag.StringVar(&o.config, "config", "gridspace.yaml", "app config file")
	flag.StringVar(&o.space, "space", "", "space to import into or query")
	flag.BoolVar(&o.restore, "restore", false, "restore every space from the snapshot store first")
	flag.StringVar(&o.imports, "import", "", "JSON snapshot file to load into -space")
	flag.StringVar(&o.query, "query", "", "radius query as x,z,radius")
	flag.StringVar(&o.types, "types", "", "comma separated types to query (default: all)")
	flag.BoolVar(&o.save, "save", false, "save every space to the snapshot store at the end")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, o); err != nil {
		fmt.Fprintln(os.Stderr, "gridspace:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, o options) error {
	f, err := os.Open(o.config)
	if err != nil {
		return err
	}
	cfg, err := injector.LoadAppConfig(f)
	_ = f.Close()
	if err != nil {
		return err
	}

	m, cleanup, err := injector.InitializeManager(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()
	logger := log.Provide()
	defer func() { _ = logger.Sync() }()

	if o.restore {
		if err = m.RestoreAll(ctx); err != nil {
			return err
		}
	}

	if o.imports != "" {
		if err = importSnapshot(m, o.space, o.imports); err != nil {
			return err
		}
	}

	if o.query != "" {
		if err = query(m, o.space, o.query, o.types); err != nil {
			return err
		}
	}

	if o.save {
		if err = m.SaveAll(ctx); err != nil {
			return err
		}
	}

	metrics := m.GetMetrics()
	logger.Info("done",
		log.Int("spaces", metrics.Spaces), log.Int("entities", metrics.Entities), log.Int("cells", metrics.Cells))
	return nil
}

func space(m *system.Manager[string], name string) (*system.Space[string], error) {
	if name == "" {
		names := m.Names()
		if len(names) != 1 {
			return nil, errors.New("-space is required when more than one space is configured")
		}
		name = names[0]
	}
	s, ok := m.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", system.ErrSpaceNotFound, name)
	}
	return s, nil
}

func importSnapshot(m *system.Manager[string], name, path string) error {
	s, err := space(m, name)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var snap spatial.Snapshot[string]
	if err = encoding.JSON.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("import %s: %w", path, err)
	}
	if skipped := s.Load(snap); skipped > 0 {
		fmt.Fprintf(os.Stderr, "skipped %d snapshot records\n", skipped)
	}
	return nil
}

func query(m *system.Manager[string], name, arg, types string) error {
	s, err := space(m, name)
	if err != nil {
		return err
	}
	center, radius, err := parseQuery(arg)
	if err != nil {
		return err
	}

	var labels []string
	if types == "" {
		for _, t := range s.Index().Registry().Types() {
			labels = append(labels, string(t))
		}
	} else {
		labels = strings.Split(types, ",")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(s.QueryRadius(center, radius, labels...))
}

func parseQuery(arg string) (spatial.Position, float64, error) {
	parts := strings.Split(arg, ",")
	if len(parts) != 3 {
		return spatial.Position{}, 0, fmt.Errorf("query %q: want x,z,radius", arg)
	}
	var v [3]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return spatial.Position{}, 0, fmt.Errorf("query %q: %w", arg, err)
		}
		v[i] = f
	}
	return spatial.Position{X: v[0], Z: v[1]}, v[2], nil
}
