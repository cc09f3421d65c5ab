// borrowctl exercises the borrow cart engine against a live library service:
// it wires config, logger, mirror, sync client and store the same way an
// embedding application would, and exposes the cart operations as
// subcommands.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/library-fullstack/borrowcart/config"
	"github.com/library-fullstack/borrowcart/internal/app/model"
	"github.com/library-fullstack/borrowcart/internal/app/store"
	"github.com/library-fullstack/borrowcart/internal/bus"
	"github.com/library-fullstack/borrowcart/internal/client"
	"github.com/library-fullstack/borrowcart/internal/mirror"
	"github.com/library-fullstack/borrowcart/internal/notify"
	"github.com/library-fullstack/borrowcart/internal/scheduler"
	"github.com/library-fullstack/borrowcart/internal/session"
	"github.com/library-fullstack/borrowcart/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	logger.Initialize(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		EnableColor: true,
	})

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	gate := session.NewJWTGate(session.StaticTokenStore(cfg.API.AccessToken))

	syncClient, err := client.NewHTTPClient(client.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
		Tokens:  gate,
	})
	if err != nil {
		logger.Fatal("Failed to create sync client", err)
	}

	m := buildMirror(cfg)
	cartStore := store.NewCartStore(syncClient, m)

	ctx := context.Background()
	switch os.Args[1] {
	case "list":
		if err := cartStore.Initialize(ctx); err != nil {
			logger.Fatal("Failed to fetch cart", err)
		}
		printCart(cartStore.Cart())

	case "add":
		bookID, qty := parseBookArgs(os.Args[2:], true)
		cart, err := cartStore.AddItem(ctx, model.CartItem{BookID: bookID, Quantity: qty})
		exitOnCartError(err)
		printCart(cart)

	case "update":
		bookID, qty := parseBookArgs(os.Args[2:], true)
		cart, err := cartStore.UpdateQuantity(ctx, bookID, qty)
		exitOnCartError(err)
		printCart(cart)

	case "remove":
		bookID, _ := parseBookArgs(os.Args[2:], false)
		cart, err := cartStore.RemoveItem(ctx, bookID)
		exitOnCartError(err)
		printCart(cart)

	case "clear":
		cart, err := cartStore.ClearCart(ctx)
		exitOnCartError(err)
		printCart(cart)

	case "refetch":
		cart, err := cartStore.Refetch(ctx)
		exitOnCartError(err)
		printCart(cart)

	case "watch":
		watch(ctx, cfg, cartStore, gate)

	default:
		usage()
		os.Exit(2)
	}
}

// watch runs the engine the way an embedding application would: bind the
// session, keep the cart fresh on a schedule and react to server pushes
// until interrupted.
func watch(ctx context.Context, cfg *config.Config, cartStore store.CartStore, gate session.Gate) {
	b := bus.New()

	binder := session.NewBinder(cartStore, gate, b)
	binder.Bind(ctx)
	defer binder.Close()

	if cfg.Refresh.Enabled {
		sched := scheduler.NewRefreshScheduler(cartStore, cfg.Refresh.CronSpec)
		if err := sched.Start(); err != nil {
			logger.Fatal("Failed to start refresh scheduler", err)
		}
		defer sched.Stop()
	}

	if cfg.Notify.Enabled {
		listener := notify.NewListener(cfg.Notify.URL, cfg.API.AccessToken, b)
		listener.Start(ctx)
		defer listener.Stop()
	}

	logger.Info("Watching cart, press Ctrl+C to stop", nil)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
}

func buildMirror(cfg *config.Config) mirror.PersistenceMirror {
	switch cfg.Mirror.Backend {
	case "redis":
		m, err := mirror.NewRedisMirror(mirror.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Key:      cfg.Mirror.StorageKey,
		})
		if err != nil {
			logger.Fatal("Failed to connect Redis mirror", err)
		}
		return m
	case "memory":
		return mirror.NewMemoryMirror()
	default:
		return mirror.NewFileMirror(cfg.Mirror.FilePath)
	}
}

func parseBookArgs(args []string, needQty bool) (int64, int) {
	if len(args) < 1 || (needQty && len(args) < 2) {
		usage()
		os.Exit(2)
	}
	bookID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		logger.Fatal("Invalid book id", err, map[string]interface{}{"arg": args[0]})
	}
	qty := 1
	if needQty {
		qty, err = strconv.Atoi(args[1])
		if err != nil {
			logger.Fatal("Invalid quantity", err, map[string]interface{}{"arg": args[1]})
		}
	}
	return bookID, qty
}

func exitOnCartError(err error) {
	if err == nil {
		return
	}
	logger.Error("Cart operation failed", err)
	os.Exit(1)
}

func printCart(cart *model.Cart) {
	if cart == nil || cart.IsEmpty() {
		fmt.Println("cart is empty")
		return
	}
	for _, item := range cart.Items {
		avail := "?"
		if item.AvailableCount != nil {
			avail = strconv.Itoa(*item.AvailableCount)
		}
		fmt.Printf("%8d  x%-3d %-40s (available: %s)\n", item.BookID, item.Quantity, item.Title, avail)
	}
	fmt.Printf("total books: %d, distinct titles: %d\n", cart.TotalBooks, cart.TotalCopies)
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: borrowctl <command> [args]

commands:
  list                 fetch and print the cart
  add <bookID> <qty>   add copies of a book
  update <bookID> <qty> set the quantity for a book (0 removes it)
  remove <bookID>      remove a book
  clear                empty the cart
  refetch              replace local state with the server's cart
  watch                run the engine until interrupted`)
}
