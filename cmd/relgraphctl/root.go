package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/Harshitk-cp/relgraph/internal/config"
	"github.com/Harshitk-cp/relgraph/internal/domain"
	"github.com/Harshitk-cp/relgraph/internal/logging"
	"github.com/Harshitk-cp/relgraph/internal/relation"
	"github.com/Harshitk-cp/relgraph/internal/service"
	"github.com/Harshitk-cp/relgraph/internal/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// globalOptions are the persistent flags shared by every subcommand. Unset
// values fall back to the same environment the server reads.
type globalOptions struct {
	store       string
	databaseURL string
	badgerDir   string
	vocabulary  string
	userID      string
	output      string
	logLevel    string
}

// NewRootCommand builds a fresh command tree.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "relgraphctl",
		Short: "Operate on relationship graphs",
		Long: `relgraphctl reads and writes the per-user relationship graphs directly
through the configured store, without going through the HTTP server.

Store settings default to the same environment variables the server uses
(GRAPH_STORE, DATABASE_URL, BADGER_DIR, RELATION_VOCABULARY_FILE).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Load(); err != nil {
				return err
			}
			opts.applyDefaults()
			switch opts.output {
			case "text", "json", "yaml":
			default:
				return fmt.Errorf("unknown output format %q", opts.output)
			}
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.store, "store", "", "graph store backend: memory, badger, postgres (default $GRAPH_STORE)")
	flags.StringVar(&opts.databaseURL, "database-url", "", "Postgres connection string (default $DATABASE_URL)")
	flags.StringVar(&opts.badgerDir, "badger-dir", "", "Badger data directory (default $BADGER_DIR)")
	flags.StringVar(&opts.vocabulary, "vocabulary", "", "YAML relation vocabulary overlay (default $RELATION_VOCABULARY_FILE)")
	flags.StringVarP(&opts.userID, "user", "u", "", "user whose graph to operate on")
	flags.StringVarP(&opts.output, "output", "o", "text", "output format: text, json, yaml")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "log level written to stderr")

	root.AddCommand(
		newMigrateCommand(opts),
		newIngestCommand(opts),
		newQueryCommand(opts),
		newListCommand(opts),
		newRelationsCommand(opts),
		newResetCommand(opts),
		newAuditCommand(opts),
		newVersionCommand(opts),
	)
	return root
}

func (o *globalOptions) applyDefaults() {
	if o.store == "" {
		o.store = config.GraphStore()
	}
	if o.databaseURL == "" {
		o.databaseURL = config.DatabaseURL()
	}
	if o.badgerDir == "" {
		o.badgerDir = config.BadgerDir()
	}
	if o.vocabulary == "" {
		o.vocabulary = config.VocabularyFile()
	}
}

func (o *globalOptions) logger(cmd *cobra.Command) *zap.Logger {
	logger, _ := logging.NewWithWriter(logging.Options{Level: o.logLevel}, zapcore.AddSync(cmd.ErrOrStderr()))
	return logger
}

func (o *globalOptions) requireUser() error {
	if o.userID == "" {
		return fmt.Errorf("--user is required")
	}
	return nil
}

// session is an open store plus the knowledge service over it.
type session struct {
	store     domain.EdgeStore
	knowledge *service.KnowledgeService
	logger    *zap.Logger
}

func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		s.logger.Error("failed to close graph store", zap.Error(err))
	}
	_ = s.logger.Sync()
}

func (o *globalOptions) open(ctx context.Context, cmd *cobra.Command) (*session, error) {
	logger := o.logger(cmd)

	st, err := store.Open(ctx, store.BackendOptions{
		Kind:        o.store,
		DatabaseURL: o.databaseURL,
		BadgerDir:   o.badgerDir,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", o.store, err)
	}

	vocab := relation.DefaultVocabulary()
	if o.vocabulary != "" {
		if _, err := relation.LoadOverlay(o.vocabulary, vocab); err != nil {
			_ = st.Close()
			return nil, err
		}
	}

	ks := service.NewKnowledgeService(st, service.Options{
		MaxHops:        config.MaxInferenceHops(),
		FoldDiacritics: config.FoldDiacritics(),
		Vocabulary:     vocab,
	}, logger.Named("knowledge"))

	return &session{store: st, knowledge: ks, logger: logger}, nil
}

// render writes v as JSON or YAML, or calls text for the text format.
func (o *globalOptions) render(w io.Writer, v any, text func(io.Writer) error) error {
	switch o.output {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return text(w)
}
