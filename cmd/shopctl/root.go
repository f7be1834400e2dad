package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ShopFlow/internal/cart"
	"ShopFlow/internal/catalog"
	"ShopFlow/pkg/kit"
)

type app struct {
	out io.Writer

	dataDir    string
	sqlitePath string
	delay      time.Duration
	asJSON     bool
	logLevel   string

	log     *zap.Logger
	catalog *catalog.Service
	cart    *cart.Store
	closers []func()
}

// run executes shopctl with args, releasing storage however the command
// ends.
func run(ctx context.Context, out io.Writer, args []string) error {
	a := &app{out: out}
	defer a.close()

	root := a.rootCmd()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "shopctl",
		Short:         "Browse the ShopFlow catalog and manage a local cart",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd.Context())
		},
	}
	root.SetOut(a.out)

	root.PersistentFlags().StringVar(&a.dataDir, "data-dir", kit.Getenv("SHOPCTL_DATA_DIR", defaultDataDir()), "Directory the cart file is kept in")
	root.PersistentFlags().StringVar(&a.sqlitePath, "sqlite", kit.Getenv("SHOPCTL_SQLITE", ""), "Keep the cart in this SQLite database instead of a file")
	root.PersistentFlags().DurationVar(&a.delay, "delay", 0, "Artificial latency for catalog queries and cart adds")
	root.PersistentFlags().BoolVar(&a.asJSON, "json", false, "Print JSON instead of tables")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", kit.Getenv("LOG_LEVEL", "error"), "Log level (debug, info, warn, error)")

	root.AddCommand(a.productsCmd(), a.categoriesCmd(), a.cartCmd())
	return root
}

func defaultDataDir() string {
	return filepath.Join(".", ".shopflow")
}

// open builds the catalog and cart every subcommand runs against.
func (a *app) open(ctx context.Context) error {
	a.log = kit.NewLogger("shopctl", a.logLevel)

	seed, err := catalog.NewSeedStore()
	if err != nil {
		return err
	}
	a.catalog = catalog.NewService(seed, a.delay)

	var kv cart.KV
	if a.sqlitePath != "" {
		skv, err := cart.OpenSQLiteKV(a.sqlitePath)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, func() { _ = skv.Close() })
		kv = skv
	} else {
		fkv, err := cart.NewFileKV(a.dataDir)
		if err != nil {
			return err
		}
		kv = fkv
	}

	a.cart = cart.NewStore(ctx, cart.Options{
		Persister: cart.NewSlotPersister(kv, cart.DefaultSlotKey),
		Notifier:  cart.NotifierFunc(a.printNotification),
		Log:       a.log,
		AddDelay:  a.delay,
	})
	return nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
	if a.log != nil {
		_ = a.log.Sync()
	}
}

func (a *app) printNotification(n cart.Notification) {
	if a.asJSON {
		return
	}
	fmt.Fprintln(a.out, "»", n.Message)
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func money(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}
