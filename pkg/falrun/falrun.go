// Package falrun is the entry point for programs that ship their own models.
// Models are registered by name and then run through the falrun commands:
//
//	func main() {
//		falrun.Register("orders_summary", ordersSummary)
//		os.Exit(falrun.Main())
//	}
package falrun

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"

	"github.com/fal-labs/falrun/internal/cli"
	"github.com/fal-labs/falrun/internal/model"
)

type (
	Bindings = model.Bindings
	MainFunc = model.MainFunc
	Catalog  = model.Catalog
)

var ErrDuplicateModel = model.ErrDuplicateModel

// Models is the catalog Main runs from.
var Models = model.NewCatalog()

func NewCatalog() *Catalog {
	return model.NewCatalog()
}

// Register adds main to Models under name. It panics when name is empty or
// already taken.
func Register(name string, main MainFunc) {
	if err := RegisterIn(Models, name, main); err != nil {
		panic("falrun: " + err.Error())
	}
}

func RegisterIn(catalog *Catalog, name string, main MainFunc) error {
	return catalog.Register(model.NewCode(name, main))
}

// Options configure Execute. Zero values fall back to Models, os.Args, the
// process streams and the OS filesystem.
type Options struct {
	Catalog *Catalog
	Args    []string
	FS      afero.Fs
	Logger  *slog.Logger
	Stdout  io.Writer
	Stderr  io.Writer
}

// Execute runs the falrun commands and returns the process exit code.
func Execute(ctx context.Context, opts Options) int {
	catalog := opts.Catalog
	if catalog == nil {
		catalog = Models
	}
	app := &cli.App{
		FS:      opts.FS,
		Catalog: catalog,
		Logger:  opts.Logger,
		Stdout:  opts.Stdout,
		Stderr:  opts.Stderr,
	}
	return cli.Execute(ctx, app, opts.Args)
}

// Main runs the commands against Models until SIGINT or SIGTERM.
func Main() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return Execute(ctx, Options{})
}
