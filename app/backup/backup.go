// Package backup exports all partitions into timestamped snapshot files on a cron schedule
package backup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	log "github.com/go-pkgz/lgr"
	"github.com/robfig/cron/v3"
	"github.com/shirou/gopsutil/v4/disk"

	"github.com/umputun/nsnt/app/snapshot"
	"github.com/umputun/nsnt/app/web/enums"
)

//go:generate moq -out mocks/lister.go -pkg mocks -skip-ensure -fmt goimports . Lister
//go:generate moq -out mocks/notifier.go -pkg mocks -skip-ensure -fmt goimports . Notifier

const filePrefix = "nsnt-"

// ErrLowDisk returned when free space at the backup location is below the threshold
var ErrLowDisk = errors.New("not enough free disk space")

// Lister reads partitions to back up
type Lister interface {
	snapshot.Lister
}

// Notifier delivers failure messages, destination is notifier specific (e.g. webhook url)
type Notifier interface {
	Send(ctx context.Context, destination, text string) error
}

// Repeater repeats failed function
type Repeater interface {
	Do(ctx context.Context, fun func() error, errors ...error) (err error)
}

// Service runs scheduled backups
type Service struct {
	Store          Lister
	Dir            string
	Schedule       string  // cron spec, standard 5 fields or @descriptor
	Keep           int     // number of backup files to keep, 0 keeps all
	MinFreePercent float64 // skip backup if free disk space at Dir is below this percent, 0 disables the check
	Repeater       Repeater
	Notifier       Notifier
	NotifyDest     string

	diskFree func(path string) (float64, error) // returns free space percent, replaced in tests
}

// Run schedules backups and blocks until ctx is canceled
func (s *Service) Run(ctx context.Context) error {
	if s.Store == nil {
		return errors.New("backup store is not set")
	}
	if err := os.MkdirAll(s.Dir, 0o750); err != nil {
		return fmt.Errorf("failed to create backup directory %s: %w", s.Dir, err)
	}

	c := cron.New()
	if _, err := c.AddFunc(s.Schedule, func() {
		fname, err := s.Backup(ctx)
		if err != nil {
			log.Printf("[WARN] backup failed, %v", err)
			s.notify(ctx, err)
			return
		}
		log.Printf("[INFO] backup saved to %s", fname)
	}); err != nil {
		return fmt.Errorf("invalid backup schedule %q: %w", s.Schedule, err)
	}

	log.Printf("[INFO] backup scheduled %q to %s, keep %d", s.Schedule, s.Dir, s.Keep)
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	log.Printf("[INFO] backup scheduler stopped")
	return nil
}

// Backup writes a single snapshot file with all partitions and prunes old ones. Returns the file name.
func (s *Service) Backup(ctx context.Context) (string, error) {
	if err := s.checkDisk(); err != nil {
		return "", err
	}

	var exp snapshot.ExportDocument
	exportFn := func() (err error) {
		exp, err = snapshot.Export(ctx, s.Store, enums.PartitionWatched, enums.PartitionIgnored, enums.PartitionCached)
		return err
	}
	var err error
	if s.Repeater != nil {
		err = s.Repeater.Do(ctx, exportFn)
	} else {
		err = exportFn()
	}
	if err != nil {
		return "", fmt.Errorf("failed to export: %w", err)
	}

	fname := filepath.Join(s.Dir, filePrefix+time.Now().Format("20060102-150405")+".json")
	if err := writeFile(fname, exp); err != nil {
		return "", err
	}

	if err := s.prune(); err != nil {
		log.Printf("[WARN] failed to prune old backups, %v", err)
	}
	return fname, nil
}

// writeFile writes into a temp file and renames it, so a partial backup is never visible
func writeFile(fname string, exp snapshot.ExportDocument) error {
	tmp, err := os.CreateTemp(filepath.Dir(fname), filePrefix+"*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after successful rename

	if err := snapshot.Encode(tmp, exp, enums.FormatJSON); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), fname); err != nil {
		return fmt.Errorf("failed to rename %s to %s: %w", tmp.Name(), fname, err)
	}
	return nil
}

// prune removes the oldest backup files keeping s.Keep newest
func (s *Service) prune() error {
	if s.Keep <= 0 {
		return nil
	}
	files, err := filepath.Glob(filepath.Join(s.Dir, filePrefix+"*.json"))
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(files) <= s.Keep {
		return nil
	}
	sort.Strings(files) // timestamped names, oldest first

	for _, f := range files[:len(files)-s.Keep] {
		if err := os.Remove(f); err != nil {
			return fmt.Errorf("failed to remove %s: %w", f, err)
		}
		log.Printf("[DEBUG] old backup %s removed", f)
	}
	return nil
}

func (s *Service) checkDisk() error {
	if s.MinFreePercent <= 0 {
		return nil
	}
	freeFn := s.diskFree
	if freeFn == nil {
		freeFn = diskFreePercent
	}
	free, err := freeFn(s.Dir)
	if err != nil {
		log.Printf("[WARN] can't check free disk space at %s, %v", s.Dir, err)
		return nil
	}
	if free < s.MinFreePercent {
		return fmt.Errorf("%w at %s: %.1f%% < %.1f%%", ErrLowDisk, s.Dir, free, s.MinFreePercent)
	}
	return nil
}

func (s *Service) notify(ctx context.Context, backupErr error) {
	if s.Notifier == nil || s.NotifyDest == "" {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	host, _ := os.Hostname()
	msg := fmt.Sprintf("nsnt backup to %s failed on %s: %v", s.Dir, host, backupErr)
	if err := s.Notifier.Send(ctx, s.NotifyDest, msg); err != nil {
		log.Printf("[WARN] failed to send backup notification, %v", err)
	}
}

func diskFreePercent(path string) (float64, error) {
	usage, err := disk.Usage(path)
	if err != nil {
		return 0, fmt.Errorf("failed to get disk usage: %w", err)
	}
	return 100 - usage.UsedPercent, nil
}
