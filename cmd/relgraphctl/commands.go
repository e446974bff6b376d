package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/Harshitk-cp/relgraph/internal/buildconfig"
	"github.com/Harshitk-cp/relgraph/internal/domain"
	"github.com/Harshitk-cp/relgraph/internal/service"
	"github.com/Harshitk-cp/relgraph/internal/store"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

type edgeRow struct {
	Entity1  string `json:"entity1" yaml:"entity1"`
	Relation string `json:"relation" yaml:"relation"`
	Entity2  string `json:"entity2" yaml:"entity2"`
	Kind     string `json:"kind" yaml:"kind"`
	Category string `json:"category" yaml:"category"`
}

func toRows(edges []domain.Edge) []edgeRow {
	rows := make([]edgeRow, 0, len(edges))
	for _, e := range edges {
		rows = append(rows, edgeRow{
			Entity1:  e.Subject.Name,
			Relation: service.Label(e),
			Entity2:  e.Object.Name,
			Kind:     string(e.Relation.Kind),
			Category: string(e.Category),
		})
	}
	return rows
}

func writeRows(w io.Writer, rows []edgeRow) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ENTITY1\tRELATION\tENTITY2\tCATEGORY")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Entity1, r.Relation, r.Entity2, r.Category)
	}
	return tw.Flush()
}

func newMigrateCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending Postgres migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.databaseURL == "" {
				return fmt.Errorf("migrate needs --database-url or DATABASE_URL")
			}
			logger := opts.logger(cmd)
			defer func() { _ = logger.Sync() }()

			pool, err := pgxpool.New(cmd.Context(), opts.databaseURL)
			if err != nil {
				return fmt.Errorf("failed to create pool: %w", err)
			}
			defer pool.Close()

			if err := store.Migrate(cmd.Context(), pool, logger); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

// readTriples accepts either {"triples": [...]} or a bare JSON array.
func readTriples(r io.Reader) ([]domain.Triple, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("no triples given")
	}

	var triples []domain.Triple
	if data[0] == '[' {
		err = json.Unmarshal(data, &triples)
	} else {
		var doc struct {
			Triples []domain.Triple `json:"triples"`
		}
		err = json.Unmarshal(data, &doc)
		triples = doc.Triples
	}
	if err != nil {
		return nil, fmt.Errorf("parse triples: %w", err)
	}
	return triples, nil
}

func newIngestCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest [file]",
		Short: "Ingest extracted triples from a JSON file or stdin",
		Long: `Ingest a batch of triples into a user's graph. The input is either a JSON
array of {"entity1","relation","entity2","type"} objects or an object with a
"triples" field. With no file, or "-", triples are read from stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.requireUser(); err != nil {
				return err
			}

			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			triples, err := readTriples(in)
			if err != nil {
				return err
			}

			sess, err := opts.open(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			res, err := sess.knowledge.Ingest(cmd.Context(), opts.userID, triples)
			if err != nil {
				return err
			}
			return opts.render(cmd.OutOrStdout(), res, func(w io.Writer) error {
				fmt.Fprintf(w, "stored %d edges, rejected %d triples\n", res.Stored, res.Rejected)
				for _, rej := range res.Rejections {
					fmt.Fprintf(w, "  #%d: %s\n", rej.Index, rej.Reason)
				}
				return nil
			})
		},
	}
}

func newQueryCommand(opts *globalOptions) *cobra.Command {
	var explain bool
	cmd := &cobra.Command{
		Use:   "query <from> <to>",
		Short: "Infer what <to> is to <from>",
		Example: `  relgraphctl query -u u1 yo maría
  relgraphctl query -u u1 --explain yo pedro`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.requireUser(); err != nil {
				return err
			}
			sess, err := opts.open(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			res, err := sess.knowledge.Query(cmd.Context(), opts.userID, args[0], args[1])
			if err != nil {
				return err
			}
			if !explain {
				res.Path = nil
			}
			return opts.render(cmd.OutOrStdout(), res, func(w io.Writer) error {
				if !res.Found {
					fmt.Fprintln(w, "not found")
					return nil
				}
				fmt.Fprintf(w, "%s (%s, %d hops)\n", res.Label, res.Kind, res.PathLength)
				for _, s := range res.Path {
					fmt.Fprintf(w, "  %s -> %s: %s\n", s.From.Name, s.To.Name, s.Relation)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&explain, "explain", false, "print the traversed path")
	return cmd
}

func newListCommand(opts *globalOptions) *cobra.Command {
	var grouped bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every relationship in a user's graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.requireUser(); err != nil {
				return err
			}
			sess, err := opts.open(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			if !grouped {
				edges, err := sess.knowledge.ListAll(cmd.Context(), opts.userID)
				if err != nil {
					return err
				}
				rows := toRows(edges)
				return opts.render(cmd.OutOrStdout(), rows, func(w io.Writer) error {
					return writeRows(w, rows)
				})
			}

			groups, err := sess.knowledge.ListGrouped(cmd.Context(), opts.userID)
			if err != nil {
				return err
			}
			out := make(map[string][]edgeRow, len(groups))
			for _, g := range groups {
				out[string(g.Category)] = toRows(g.Edges)
			}
			return opts.render(cmd.OutOrStdout(), out, func(w io.Writer) error {
				for _, g := range groups {
					fmt.Fprintf(w, "%s:\n", strings.ToUpper(string(g.Category)))
					if err := writeRows(w, toRows(g.Edges)); err != nil {
						return err
					}
					fmt.Fprintln(w)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&grouped, "grouped", false, "group relationships by category")
	return cmd
}

func newRelationsCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "relations <entity>",
		Short: "List the direct relationships of one entity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.requireUser(); err != nil {
				return err
			}
			sess, err := opts.open(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			edges, err := sess.knowledge.Relations(cmd.Context(), opts.userID, args[0])
			if err != nil {
				return err
			}
			rows := toRows(edges)
			return opts.render(cmd.OutOrStdout(), rows, func(w io.Writer) error {
				return writeRows(w, rows)
			})
		},
	}
}

func newResetCommand(opts *globalOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete a user's whole graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.requireUser(); err != nil {
				return err
			}
			if !yes {
				return fmt.Errorf("refusing to reset %q without --yes", opts.userID)
			}
			sess, err := opts.open(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			n, err := sess.knowledge.Reset(cmd.Context(), opts.userID)
			if err != nil {
				return err
			}
			return opts.render(cmd.OutOrStdout(), map[string]int{"deleted": n}, func(w io.Writer) error {
				fmt.Fprintf(w, "deleted %d edges\n", n)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the reset")
	return cmd
}

func newAuditCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "audit",
		Short: "Check graphs for reciprocal edges without their inverse",
		Long: `Audit one user's graph (with --user) or every stored graph. Exits non-zero
when a violation is found.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := opts.open(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			if opts.userID == "" {
				auditor := service.NewAuditorService(sess.knowledge, sess.logger.Named("auditor"))
				report := auditor.Run(cmd.Context())
				if err := opts.render(cmd.OutOrStdout(), report, func(w io.Writer) error {
					fmt.Fprintf(w, "audited %d users, %d violations\n", report.Users, report.Violations)
					for user, n := range report.ByUser {
						fmt.Fprintf(w, "  %s: %d\n", user, n)
					}
					return nil
				}); err != nil {
					return err
				}
				if report.Violations > 0 || len(report.Failed) > 0 {
					return fmt.Errorf("audit found %d violations in %d users", report.Violations, len(report.ByUser))
				}
				return nil
			}

			violations, err := sess.knowledge.Audit(cmd.Context(), opts.userID)
			if err != nil {
				return err
			}
			if err := opts.render(cmd.OutOrStdout(), violations, func(w io.Writer) error {
				fmt.Fprintf(w, "%d violations\n", len(violations))
				for _, v := range violations {
					fmt.Fprintf(w, "  %s %s %s: missing %s\n",
						v.Edge.Subject.Name, v.Edge.Relation, v.Edge.Object.Name, v.Missing.Relation)
				}
				return nil
			}); err != nil {
				return err
			}
			if len(violations) > 0 {
				return fmt.Errorf("audit found %d violations", len(violations))
			}
			return nil
		},
	}
}

func newVersionCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := buildconfig.VersionInfo()
			return opts.render(cmd.OutOrStdout(), info, func(w io.Writer) error {
				fmt.Fprintf(w, "relgraphctl %s (%s)\n", info["version"], info["commit"])
				return nil
			})
		},
	}
}
