package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/shelfdex/internal/domain"
	"github.com/kailas-cloud/shelfdex/internal/domain/book"
	"github.com/kailas-cloud/shelfdex/internal/domain/book/patch"
	chiTransport "github.com/kailas-cloud/shelfdex/internal/transport/chi"
	bulkuc "github.com/kailas-cloud/shelfdex/internal/usecase/bulk"
)

func newLoadCmd(opts *rootOptions) *cobra.Command {
	var quiet bool
	cmd := &cobra.Command{
		Use:   "load <file>",
		Short: "Bulk load a JSON array of documents",
		Long: `Bulk load a JSON array of book documents. Items without an "_id" get
their 1-indexed position as id. Failed items are listed; the rest are stored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withServices(cmd, func(svc *services) error {
				var progress bulkuc.Progress
				if !quiet {
					progress = newEmbedProgress(cmd.ErrOrStderr()).Func()
				}
				res, err := svc.bulk.LoadFile(cmd.Context(), args[0], progress)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Loaded %d documents, %d failed, %d without embedding\n",
					res.Succeeded, len(res.Failures), len(res.Degraded))
				return printJSON(cmd.OutOrStdout(), res)
			})
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "hide the progress bar")
	return cmd
}

// warnDegraded notes on stderr that a document was stored without an embedding.
func warnDegraded(cmd *cobra.Command, failure *domain.EmbeddingFailureError) {
	if failure != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: stored without embedding: %v\n", failure)
	}
}

// docInput reads a JSON document from --data or --file.
type docInput struct {
	data string
	file string
}

func (d *docInput) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&d.data, "data", "", "JSON document")
	cmd.Flags().StringVar(&d.file, "file", "", "file holding the JSON document")
	cmd.MarkFlagsMutuallyExclusive("data", "file")
	cmd.MarkFlagsOneRequired("data", "file")
}

func (d *docInput) read() ([]byte, error) {
	if d.file != "" {
		raw, err := os.ReadFile(d.file)
		if err != nil {
			return nil, fmt.Errorf("read document: %w", err)
		}
		return raw, nil
	}
	return []byte(d.data), nil
}

func newCreateCmd(opts *rootOptions) *cobra.Command {
	var in docInput
	cmd := &cobra.Command{
		Use:   "create <id>",
		Short: "Create or overwrite a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := in.read()
			if err != nil {
				return err
			}
			b, err := book.Decode(raw)
			if err != nil {
				return err
			}
			return opts.withServices(cmd, func(svc *services) error {
				res, err := svc.documents.Create(cmd.Context(), args[0], b)
				if err != nil {
					return err
				}
				warnDegraded(cmd, res.EmbeddingFailure)
				return printJSON(cmd.OutOrStdout(), chiTransport.BookResponse{ID: args[0], Document: res.Book})
			})
		},
	}
	in.register(cmd)
	return cmd
}

func newGetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Print a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withServices(cmd, func(svc *services) error {
				b, err := svc.documents.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), chiTransport.BookResponse{ID: args[0], Document: b})
			})
		},
	}
}

func newUpdateCmd(opts *rootOptions) *cobra.Command {
	var in docInput
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Merge fields into an existing document",
		Long:  `Merge the supplied fields into a document. A JSON null removes a field.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := in.read()
			if err != nil {
				return err
			}
			p, err := patch.Decode(raw)
			if err != nil {
				return err
			}
			return opts.withServices(cmd, func(svc *services) error {
				res, err := svc.documents.Update(cmd.Context(), args[0], p)
				if err != nil {
					return err
				}
				warnDegraded(cmd, res.EmbeddingFailure)
				return printJSON(cmd.OutOrStdout(), chiTransport.BookResponse{ID: args[0], Document: res.Book})
			})
		},
	}
	in.register(cmd)
	return cmd
}

func newDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withServices(cmd, func(svc *services) error {
				deleted, err := svc.documents.Delete(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if !deleted {
					return fmt.Errorf("document %q not found", args[0])
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
				return nil
			})
		},
	}
}

func newListCmd(opts *rootOptions) *cobra.Command {
	var (
		cursor string
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List documents page by page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withServices(cmd, func(svc *services) error {
				entries, next, err := svc.documents.List(cmd.Context(), cursor, limit)
				if err != nil {
					return err
				}
				items := make([]chiTransport.BookResponse, len(entries))
				for i, e := range entries {
					items[i] = chiTransport.BookResponse{ID: e.ID, Document: e.Book}
				}
				return printJSON(cmd.OutOrStdout(), chiTransport.BookListResponse{
					Items: items, NextCursor: next, HasMore: next != "",
				})
			})
		},
	}
	cmd.Flags().StringVar(&cursor, "cursor", "", "cursor from a previous page")
	cmd.Flags().IntVar(&limit, "limit", 0, "page size (0 uses the configured default)")
	return cmd
}

func newSearchCmd(opts *rootOptions) *cobra.Command {
	var size int
	cmd := &cobra.Command{
		Use:   "search <field> <value>",
		Short: "Lexical match on title, author or description",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withServices(cmd, func(svc *services) error {
				hits, err := svc.search.Lexical(cmd.Context(), args[0], args[1], size)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), chiTransport.SearchResponse{Hits: hits, Total: len(hits)})
			})
		},
	}
	cmd.Flags().IntVar(&size, "size", 0, "maximum hits (0 uses the default)")
	return cmd
}

func newKNNCmd(opts *rootOptions) *cobra.Command {
	var (
		text   string
		vector string
		k      int
	)
	cmd := &cobra.Command{
		Use:   "knn",
		Short: "Vector search by query text or vector",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var vec []float32
			if vector != "" {
				var err error
				if vec, err = parseVector(vector); err != nil {
					return err
				}
			}
			return opts.withServices(cmd, func(svc *services) error {
				var (
					resp chiTransport.SearchResponse
					err  error
				)
				if vec != nil {
					resp.Hits, err = svc.search.KNN(cmd.Context(), vec, k)
				} else {
					resp.Hits, err = svc.search.KNNText(cmd.Context(), text, k)
				}
				if err != nil {
					return err
				}
				resp.Total = len(resp.Hits)
				return printJSON(cmd.OutOrStdout(), resp)
			})
		},
	}
	cmd.Flags().StringVar(&text, "query", "", "query text, embedded before the search")
	cmd.Flags().StringVar(&vector, "vector", "", "comma-separated query vector")
	cmd.Flags().IntVar(&k, "k", 0, "number of neighbors (default 5 for text queries)")
	cmd.MarkFlagsMutuallyExclusive("query", "vector")
	cmd.MarkFlagsOneRequired("query", "vector")
	return cmd
}

// parseVector parses "0.1,0.2,0.3".
func parseVector(s string) ([]float32, error) {
	parts := strings.Split(s, ",")
	vec := make([]float32, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return nil, fmt.Errorf("vector element %d: %w", i, errors.Unwrap(err))
		}
		vec[i] = float32(f)
	}
	return vec, nil
}
