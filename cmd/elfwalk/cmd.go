package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/cobra"
	"github.com/vietanhduong/elfwalk/pkg/logging"
	"github.com/vietanhduong/elfwalk/pkg/logging/logfields"
)

var errFailed = errors.New("one or more files could not be parsed")

func newCommand() *cobra.Command {
	this := &cobra.Command{
		Use:   "elfwalk [flags] <file>...",
		Short: "Print the dynamic symbols of ELF64 executables and shared objects.",
		Long: `
Print the dynamic symbols of ELF64 executables and shared objects.
elfwalk parses the raw file: it validates the header, walks the program headers,
reads the PT_DYNAMIC segment and prints every symbol of the dynamic symbol table
with its virtual address. Statically linked binaries have no dynamic symbols,
this is reported but is not an error.
		`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := newViper(cmd.Flags())
			if err != nil {
				return err
			}
			logging.SetupLoggingWithViper(v)
			if v.GetBool(verboseFlag) {
				logging.SetLogLevelToDebug()
			}
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
			defer cancel()

			reports := analyzeAll(ctx, args, cfg)
			if err = printReports(cmd.OutOrStdout(), cmd.ErrOrStderr(), reports, cfg); err != nil {
				return err
			}
			for _, r := range reports {
				if r.fatal() {
					return errFailed
				}
			}
			return nil
		},
	}
	registerFlags(this.Flags())
	return this
}

// analyzeAll parses every path on its own goroutine, bounded by cfg.jobs, and
// returns the reports in argument order.
func analyzeAll(ctx context.Context, paths []string, cfg *config) []*report {
	log := logging.DefaultLogger.WithField(logfields.LogComponent, "cmd")

	results := cmap.New[*report]()
	p := pool.New().WithMaxGoroutines(cfg.jobs)
	for _, path := range paths {
		path := path
		if results.Has(path) {
			continue
		}
		results.Set(path, nil)
		p.Go(func() {
			if err := ctx.Err(); err != nil {
				results.Set(path, failedReport(path, err, kindCanceled))
				return
			}
			r := analyze(path, cfg)
			log.WithFields(logrus.Fields{
				logfields.File:    path,
				logfields.Symbols: len(r.Symbols),
			}).Debug("Analyzed file")
			results.Set(path, r)
		})
	}
	p.Wait()

	ret := make([]*report, 0, results.Count())
	for _, path := range paths {
		if r, ok := results.Pop(path); ok && r != nil {
			ret = append(ret, r)
		}
	}
	return ret
}
