package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"ddp_extract/internal/catalog"
	"ddp_extract/internal/diagnostics"
	"ddp_extract/internal/fields"
	"ddp_extract/internal/filters"
	"ddp_extract/internal/markup"
	"ddp_extract/internal/messages"
	"ddp_extract/internal/tables"
	"ddp_extract/internal/utils"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

// Run analyzes every configured archive and writes one report per archive into the output
// folder. It fails when an archive cannot be read from disk or when no archive produced data.
func Run(cfg Config) error {
	if validateErr := cfg.Validate(); validateErr != nil {
		return fmt.Errorf("invalid configuration: %w", validateErr)
	}

	logger, loggerErr := newLogger(cfg.LogLevel)
	if loggerErr != nil {
		return fmt.Errorf("init logger: %w", loggerErr)
	}
	defer logger.Sync()

	absoluteOutputRoot, absErr := filepath.Abs(cfg.Output)
	if absErr != nil {
		return fmt.Errorf("resolve output folder: %w", absErr)
	}
	if mkErr := utils.EnsureDir(absoluteOutputRoot); mkErr != nil {
		return fmt.Errorf("create output folder %q: %w", absoluteOutputRoot, mkErr)
	}

	opts, optsErr := optionsFromConfig(cfg)
	if optsErr != nil {
		return optsErr
	}
	logger.Debug("configuration loaded",
		zap.Int("archives", len(cfg.Files)),
		zap.String("generator", opts.Extractor.Version()),
		zap.String("groups", string(opts.Groups)),
		zap.Strings("tables", cfg.Tables),
	)

	workers := cfg.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}

	targets := reportPaths(absoluteOutputRoot, cfg.Files, cfg.Format)
	reports := make([]Report, len(cfg.Files))
	readErrs := make([]error, len(cfg.Files))

	var group errgroup.Group
	group.SetLimit(workers)
	for index, archiveFilePath := range cfg.Files {
		index, archiveFilePath := index, archiveFilePath
		group.Go(func() error {
			data, readErr := os.ReadFile(archiveFilePath)
			if readErr != nil {
				logger.Error("read archive", zap.String("file", archiveFilePath), zap.Error(readErr))
				readErrs[index] = fmt.Errorf("read archive %q: %w", archiveFilePath, readErr)
				return nil
			}

			recorder := &diagnostics.Recorder{}
			archiveOpts := opts
			archiveOpts.SessionID = ""
			archiveOpts.Sink = diagnostics.Tee(
				diagnostics.NewZapSink(logger.With(zap.String("file", filepath.Base(archiveFilePath)))),
				recorder,
			)
			report := Analyze(data, archiveOpts)
			report.File = filepath.Base(archiveFilePath)
			if cfg.Tracking {
				report.Tracking = recorder.Events()
			}
			reports[index] = report

			targetPath := targets[index]
			var writeErr error
			if cfg.Format == FormatYAML {
				writeErr = utils.WriteYAML(targetPath, report)
			} else {
				writeErr = utils.WritePrettyJSON(targetPath, report)
			}
			if writeErr != nil {
				logger.Error("write report", zap.String("path", targetPath), zap.Error(writeErr))
				return writeErr
			}
			logger.Info("archive analyzed",
				zap.String("file", report.File),
				zap.String("session", report.SessionID),
				zap.String("category", report.Category),
				zap.String("outcome", string(report.Outcome)),
				zap.Strings("tables", report.Results.Keys()),
				zap.Int("recovered", len(multierr.Errors(report.Recovered))),
			)
			utils.PrintLine(targetPath)
			return nil
		})
	}
	if waitErr := group.Wait(); waitErr != nil {
		return waitErr
	}

	combinedErr := multierr.Combine(readErrs...)
	outcomes := make(map[string]tables.Outcome, len(reports))
	for index, report := range reports {
		if readErrs[index] != nil {
			continue
		}
		if report.Outcome == tables.OutcomeData {
			return combinedErr
		}
		outcomes[cfg.Files[index]] = report.Outcome
	}
	if len(outcomes) == 0 {
		return combinedErr
	}
	return multierr.Append(combinedErr, filters.BuildNoDataError(outcomes, cfg.Tables))
}

func newLogger(level string) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if level != "" {
		parsed, parseErr := zapcore.ParseLevel(level)
		if parseErr != nil {
			return nil, parseErr
		}
		config.Level = zap.NewAtomicLevelAt(parsed)
	}
	return config.Build()
}

func optionsFromConfig(cfg Config) (Options, error) {
	opts := Options{Tables: cfg.Tables}

	groups, groupsErr := messages.ParseGroupMode(cfg.Groups)
	if groupsErr != nil {
		return opts, groupsErr
	}
	opts.Groups = groups

	opts.Catalog = catalog.Default()
	if cfg.CatalogPath != "" {
		loaded, loadErr := catalog.LoadFile(cfg.CatalogPath)
		if loadErr != nil {
			return opts, loadErr
		}
		opts.Catalog = loaded
	}

	variants := fields.DefaultVariants()
	if cfg.VariantsPath != "" {
		raw, readErr := os.ReadFile(cfg.VariantsPath)
		if readErr != nil {
			return opts, fmt.Errorf("read variants %q: %w", cfg.VariantsPath, readErr)
		}
		parsed, parseErr := fields.ParseVariants(raw)
		if parseErr != nil {
			return opts, parseErr
		}
		variants = parsed
	}
	opts.Resolver = fields.NewResolver(variants)

	extractor, extractorErr := markup.NewExtractor(nil, cfg.Generator, variants)
	if extractorErr != nil {
		return opts, extractorErr
	}
	opts.Extractor = extractor
	return opts, nil
}

// reportPaths names each report after its archive, numbering repeated base names. Numbered
// names are reserved too, so they never collide with an archive that already carries one.
func reportPaths(outputRoot string, files []string, format string) []string {
	used := make(map[string]bool, len(files))
	paths := make([]string, len(files))
	for index, file := range files {
		stem := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		base := stem
		for suffix := 2; used[base]; suffix++ {
			base = fmt.Sprintf("%s_%d", stem, suffix)
		}
		used[base] = true
		paths[index] = filepath.Join(outputRoot, base+"."+format)
	}
	return paths
}
