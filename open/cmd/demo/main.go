package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/spf13/afero"

	"github.com/fal-labs/falrun/internal/adapter"
	"github.com/fal-labs/falrun/internal/environments"
	"github.com/fal-labs/falrun/internal/frame"
	"github.com/fal-labs/falrun/internal/model"
	"github.com/fal-labs/falrun/internal/runner"
	"github.com/fal-labs/falrun/internal/teleport"
	"github.com/fal-labs/falrun/pkg/falrun"
)

// ordersSummary reads raw_orders and writes one row per customer with the
// order count and total amount.
func ordersSummary(ctx context.Context, b model.Bindings) (any, error) {
	orders, err := b.ReadDF(ctx, "raw_orders")
	if err != nil {
		return nil, err
	}
	defer orders.Release()

	type total struct {
		count  int64
		amount float64
	}
	totals := map[string]*total{}
	var customers []string
	err = frame.EachRow(orders, func(row []any) error {
		customer, _ := row[1].(string)
		amount, _ := row[2].(float64)
		t, ok := totals[customer]
		if !ok {
			t = &total{}
			totals[customer] = t
			customers = append(customers, customer)
		}
		t.count++
		t.amount += amount
		return nil
	})
	if err != nil {
		return nil, err
	}

	rows := make([][]any, 0, len(customers))
	for _, c := range customers {
		rows = append(rows, []any{c, totals[c].count, totals[c].amount})
	}
	summary, err := frame.New(frame.Schema(
		frame.Column{Name: "customer", Type: frame.String},
		frame.Column{Name: "orders", Type: frame.Int64},
		frame.Column{Name: "amount", Type: frame.Float64},
	), rows)
	if err != nil {
		return nil, err
	}
	defer summary.Release()
	if err := b.WriteDF(ctx, "orders_summary", summary); err != nil {
		return nil, err
	}
	return len(rows), nil
}

func rawOrders() (arrow.Table, error) {
	return frame.New(frame.Schema(
		frame.Column{Name: "id", Type: frame.Int64},
		frame.Column{Name: "customer", Type: frame.String},
		frame.Column{Name: "amount", Type: frame.Float64},
	), [][]any{
		{1, "ada", 12.5},
		{2, "grace", 40.0},
		{3, "ada", 7.5},
		{4, "linus", 3.0},
	})
}

func main() {
	workDir := flag.String("dir", "", "working directory for the demo project (default: a temp dir)")
	flag.Parse()

	catalog := falrun.NewCatalog()
	if err := falrun.RegisterIn(catalog, "orders_summary", ordersSummary); err != nil {
		die("register model", err)
	}

	// Remaining arguments are handed to the regular CLI with the demo model
	// registered, e.g. "demo -- run orders_summary -p ./project".
	if flag.NArg() > 0 {
		os.Exit(falrun.Execute(context.Background(), falrun.Options{Catalog: catalog, Args: flag.Args()}))
	}

	dir := *workDir
	if dir == "" {
		tmp, err := os.MkdirTemp("", "falrun-demo-")
		if err != nil {
			die("create work dir", err)
		}
		dir = tmp
	}
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))

	fmt.Printf("==> falrun demo (project=%s)\n", dir)

	// 1) Seed the warehouse
	cfg := adapter.NewDirectConfig("demo", dir, adapter.Credentials{Type: "sqlite", Path: filepath.Join(dir, "warehouse.db")})
	reconstructor := adapter.NewReconstructor(logger)
	seed, err := reconstructor.Reconstruct(ctx, adapter.Flags{}, cfg, adapter.Manifest{}, adapter.MacroManifest{})
	if err != nil {
		die("open warehouse", err)
	}
	orders, err := rawOrders()
	if err != nil {
		die("build raw_orders", err)
	}
	resp, err := seed.WriteRelation(ctx, "raw_orders", orders)
	if err != nil {
		die("seed raw_orders", err)
	}
	_ = seed.Close()
	fmt.Printf("==> seeded raw_orders (rows=%d)\n", resp.RowsAffected)

	code, _ := catalog.Lookup("orders_summary")
	r := runner.New(reconstructor, teleport.NewURLStorage(afero.NewOsFs()), logger)
	env, _, err := environments.Fetch(afero.NewOsFs(), dir, environments.LocalName, environments.Options{})
	if err != nil {
		die("resolve environment", err)
	}

	// 2) Run the model against the database
	result, err := r.RunInEnvironmentWithAdapter(ctx, env, code, adapter.Flags{}, cfg, adapter.Manifest{}, adapter.MacroManifest{}, "sqlite")
	if err != nil {
		die("run with adapter", err)
	}
	fmt.Printf("==> adapter run wrote orders_summary (customers=%v)\n", result)

	// 3) Run the same model through teleport storage
	info := teleport.Info{
		Format:      teleport.FormatParquet,
		Credentials: teleport.Credentials{Type: teleport.CredentialsLocal, LocalPath: filepath.Join(dir, "teleport")},
	}
	locations := teleport.DataLocation{}
	relay := teleport.NewRelay(info, locations, teleport.NewURLStorage(afero.NewOsFs()), logger)
	if _, err := relay.Write(ctx, "raw_orders", orders); err != nil {
		die("stage raw_orders", err)
	}
	orders.Release()
	result, err = r.RunInEnvironmentWithTeleport(ctx, env, code, info, locations, cfg)
	if err != nil {
		die("run with teleport", err)
	}
	fmt.Printf("==> teleport run wrote orders_summary (customers=%v)\n", result)
	fmt.Printf("==> locations: %s\n", locations)

	summary, err := relay.Read(ctx, "orders_summary")
	if err != nil {
		die("read orders_summary", err)
	}
	defer summary.Release()
	printTable(summary)
}

func printTable(tbl arrow.Table) {
	tr := array.NewTableReader(tbl, -1)
	defer tr.Release()
	fmt.Println()
	for tr.Next() {
		rec := tr.Record()
		for i := 0; i < int(rec.NumRows()); i++ {
			fmt.Printf("  %v\t%v\t%v\n", frame.Value(rec.Column(0), i), frame.Value(rec.Column(1), i), frame.Value(rec.Column(2), i))
		}
	}
}

func die(step string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", step, err)
	os.Exit(1)
}
