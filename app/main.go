package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	log "github.com/go-pkgz/lgr"
	"github.com/go-pkgz/notify"
	"github.com/go-pkgz/repeater"
	"github.com/go-pkgz/repeater/strategy"
	"github.com/go-pkgz/syncs"
	"github.com/umputun/go-flags"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/umputun/nsnt/app/backup"
	"github.com/umputun/nsnt/app/snapshot"
	"github.com/umputun/nsnt/app/web"
	"github.com/umputun/nsnt/app/web/enums"
	"github.com/umputun/nsnt/app/web/persistence"
)

var opts struct {
	DB          string   `short:"d" long:"db" env:"NSNT_DB" default:"nsnt.db" description:"sqlite database file"`
	Import      []string `short:"i" long:"import" env:"NSNT_IMPORT" env-delim:"," description:"snapshot file or url to import on start"`
	Export      string   `short:"e" long:"export" env:"NSNT_EXPORT" description:"export watched and ignored items to file and exit"`
	Concurrency int      `long:"concurrency" env:"NSNT_CONCURRENCY" default:"4" description:"max concurrent snapshot fetches"`
	Dbg         bool     `long:"dbg" env:"NSNT_DEBUG" description:"debug mode"`

	Web struct {
		Address      string `long:"address" env:"ADDRESS" default:":8080" description:"web server listen address"`
		BaseURL      string `long:"base-url" env:"BASE_URL" description:"base url path for reverse proxy, e.g. /nsnt"`
		PageSize     int    `long:"page-size" env:"PAGE_SIZE" default:"50" description:"max items shown per list"`
		PasswordHash string `long:"password-hash" env:"PASSWORD_HASH" description:"bcrypt hash of web ui password, empty disables auth"`
	} `group:"web" namespace:"web" env-namespace:"NSNT_WEB"`

	Backup struct {
		Enabled        bool          `long:"enabled" env:"ENABLED" description:"enable scheduled backups"`
		Dir            string        `long:"dir" env:"DIR" default:"backups" description:"backup directory"`
		Schedule       string        `long:"schedule" env:"SCHEDULE" default:"@daily" description:"backup cron schedule"`
		Keep           int           `long:"keep" env:"KEEP" default:"7" description:"number of backups to keep, 0 keeps all"`
		MinFreePercent float64       `long:"min-free" env:"MIN_FREE" default:"5" description:"min free disk space percent"`
		Attempts       int           `long:"attempts" env:"ATTEMPTS" default:"3" description:"export attempts"`
		Duration       time.Duration `long:"duration" env:"DURATION" default:"1s" description:"initial retry duration"`
		Factor         float64       `long:"factor" env:"FACTOR" default:"2" description:"retry backoff factor"`
		Webhook        string        `long:"webhook" env:"WEBHOOK" description:"webhook url for failure notifications"`
		WebhookHeaders []string      `long:"webhook-header" env:"WEBHOOK_HEADERS" env-delim:"," description:"webhook headers, key:value"`
	} `group:"backup" namespace:"backup" env-namespace:"NSNT_BACKUP"`

	Log struct {
		Enabled         bool   `long:"enabled" env:"ENABLED" description:"enable logging to file"`
		Filename        string `long:"filename" env:"FILENAME" default:"nsnt.log" description:"log file name"`
		MaxSize         int    `long:"max-size" env:"MAX_SIZE" default:"100" description:"max log file size in megabytes"`
		MaxBackups      int    `long:"max-backups" env:"MAX_BACKUPS" default:"7" description:"max number of old log files"`
		MaxAge          int    `long:"max-age" env:"MAX_AGE" default:"0" description:"max days to keep old log files"`
		EnabledCompress bool   `long:"compress" env:"COMPRESS" description:"compress rotated log files"`
	} `group:"log" namespace:"log" env-namespace:"NSNT_LOG"`
}

var revision = "unknown"

func main() {
	fmt.Printf("nsnt %s\n", revision)

	if _, err := flags.Parse(&opts); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(2)
	}
	logOut := setupLogs()

	defer func() {
		if x := recover(); x != nil {
			log.Printf("[WARN] run time panic:\n%v", x)
			panic(x)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	signals(cancel) // handle SIGQUIT, SIGINT and SIGTERM

	err := run(ctx)
	cancel()
	if err != nil {
		log.Printf("[ERROR] %v", err)
	}
	closeLogs(logOut)
	if err != nil {
		os.Exit(1)
	}
}

// run opens the store, applies startup imports and runs either one-shot export or the server
func run(ctx context.Context) error {
	store, err := persistence.NewSQLiteStore(opts.DB)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("[WARN] failed to close store: %v", err)
		}
	}()

	if len(opts.Import) > 0 {
		if err := importSnapshots(ctx, store, opts.Import, opts.Concurrency); err != nil {
			return err
		}
	}

	if opts.Export != "" {
		return exportSnapshot(ctx, store, opts.Export)
	}

	if opts.Backup.Enabled {
		svc := makeBackup(store)
		go func() {
			if err := svc.Run(ctx); err != nil {
				log.Printf("[WARN] backup scheduler failed: %v", err)
			}
		}()
	}

	srv, err := web.New(web.Config{
		Store:        store,
		BaseURL:      validateBaseURL(opts.Web.BaseURL),
		Version:      revision,
		PageSize:     opts.Web.PageSize,
		PasswordHash: opts.Web.PasswordHash,
	})
	if err != nil {
		return fmt.Errorf("failed to create web server: %w", err)
	}
	return srv.Run(ctx, opts.Web.Address)
}

// importSnapshots fetches and parses all locations concurrently, then imports them in the given order
func importSnapshots(ctx context.Context, store snapshot.Importer, locations []string, concurrency int) error {
	docs := make([]snapshot.Document, len(locations))
	gr := syncs.NewErrSizedGroup(max(concurrency, 1), syncs.Context(ctx))
	for i, loc := range locations {
		gr.Go(func() error {
			data, err := snapshot.Fetch(ctx, loc)
			if err != nil {
				return fmt.Errorf("failed to load %s: %w", loc, err)
			}
			doc, err := snapshot.Parse(data, snapshot.FormatFromName(loc))
			if err != nil {
				return fmt.Errorf("invalid snapshot %s: %w", loc, err)
			}
			docs[i] = doc
			return nil
		})
	}
	if err := gr.Wait(); err != nil {
		return err
	}

	for i, doc := range docs {
		if _, err := snapshot.ImportDocument(ctx, store, doc); err != nil {
			return fmt.Errorf("failed to import %s: %w", locations[i], err)
		}
		log.Printf("[INFO] imported %s", locations[i])
	}
	return nil
}

// exportSnapshot writes watched and ignored items to a file, format is picked by file extension
func exportSnapshot(ctx context.Context, store snapshot.Lister, fname string) error {
	exp, err := snapshot.Export(ctx, store, enums.PartitionWatched, enums.PartitionIgnored)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(fname); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create export directory: %w", err)
		}
	}
	fh, err := os.Create(fname) //nolint:gosec // export file name is set by the user
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	if err := snapshot.Encode(fh, exp, snapshot.FormatFromName(fname)); err != nil {
		_ = fh.Close()
		return err
	}
	if err := fh.Close(); err != nil {
		return fmt.Errorf("failed to close export file: %w", err)
	}
	log.Printf("[INFO] exported %d watched and %d ignored items to %s", len(exp.WatchedData), len(exp.IgnoreData), fname)
	return nil
}

func makeBackup(store backup.Lister) *backup.Service {
	svc := &backup.Service{
		Store:          store,
		Dir:            opts.Backup.Dir,
		Schedule:       opts.Backup.Schedule,
		Keep:           opts.Backup.Keep,
		MinFreePercent: opts.Backup.MinFreePercent,
		Repeater: repeater.New(&strategy.Backoff{Repeats: opts.Backup.Attempts, Duration: opts.Backup.Duration,
			Factor: opts.Backup.Factor, Jitter: true}),
	}
	if opts.Backup.Webhook != "" {
		svc.Notifier = notify.NewWebhook(notify.WebhookParams{Timeout: 10 * time.Second, Headers: opts.Backup.WebhookHeaders})
		svc.NotifyDest = opts.Backup.Webhook
	}
	return svc
}

// setupLogs configures lgr and returns the writer used for log output
func setupLogs() io.Writer {
	logOpts := []log.Option{log.Msec, log.LevelBraces}
	if opts.Dbg {
		logOpts = []log.Option{log.Debug, log.CallerFile, log.CallerFunc, log.Msec, log.LevelBraces}
	}

	if !opts.Log.Enabled {
		log.Setup(logOpts...)
		return os.Stdout
	}

	out := &lumberjack.Logger{
		Filename:   opts.Log.Filename,
		MaxSize:    opts.Log.MaxSize,
		MaxBackups: opts.Log.MaxBackups,
		MaxAge:     opts.Log.MaxAge,
		Compress:   opts.Log.EnabledCompress,
	}
	logOpts = append(logOpts, log.Out(io.MultiWriter(os.Stdout, out)), log.Err(io.MultiWriter(os.Stderr, out)))
	log.Setup(logOpts...)
	return out
}

// closeLogs closes the rotated log file, stdout is left open
func closeLogs(out io.Writer) {
	lj, ok := out.(*lumberjack.Logger)
	if !ok {
		return
	}
	if err := lj.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to close log file: %v\n", err)
	}
}

// validateBaseURL normalizes base url path, "/" and empty mean root
func validateBaseURL(baseURL string) string {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return ""
	}
	if !strings.HasPrefix(baseURL, "/") {
		baseURL = "/" + baseURL
	}
	return baseURL
}

func signals(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	go func() {
		stacktrace := make([]byte, 8192)
		for sig := range sigChan {
			if sig == syscall.SIGQUIT { // catch SIGQUIT and print stack traces
				length := runtime.Stack(stacktrace, true)
				fmt.Println(string(stacktrace[:length]))
				continue
			}
			log.Printf("[INFO] %s received, shutting down", sig)
			cancel()
		}
	}()
	signal.Notify(sigChan, syscall.SIGQUIT, syscall.SIGTERM, syscall.SIGINT)
}
