package cli

import (
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jravasi/mediawiki-wikilog/internal/query"
)

// ItemsOptions holds flags for the items command.
type ItemsOptions struct {
	*RootOptions
	Query                string // raw request query string
	Wikilog              string
	Show                 string
	Category             string
	Author               string
	Tag                  string
	Year, Month, Day     int
	LastCommentTimestamp bool
}

// NewItemsCommand creates the items command.
func NewItemsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ItemsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "items",
		Short: "Compile a wikilog item listing filter",
		Long: `Compile a wikilog item filter into a query descriptor.

Flags override the matching parameters of --query. Without --wikilog the
listing covers every wikilog; "Blog:*" restricts it to one namespace.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runItems(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Query, "query", "q", "", "request query string, e.g. \"wikilog=Blog:Main&show=drafts\"")
	cmd.Flags().StringVar(&opts.Wikilog, "wikilog", "", "wikilog title or namespace wildcard (Blog:*)")
	cmd.Flags().StringVar(&opts.Show, "show", "", "publication status (published|drafts|all)")
	cmd.Flags().StringVar(&opts.Category, "category", "", "category name")
	cmd.Flags().StringVar(&opts.Author, "author", "", "author user name")
	cmd.Flags().StringVar(&opts.Tag, "tag", "", "tag")
	cmd.Flags().IntVar(&opts.Year, "year", 0, "publication year")
	cmd.Flags().IntVar(&opts.Month, "month", 0, "publication month")
	cmd.Flags().IntVar(&opts.Day, "day", 0, "publication day")
	cmd.Flags().BoolVar(&opts.LastCommentTimestamp, "last-comment-timestamp", false, "include the latest comment timestamp of each item")

	return cmd
}

func runItems(opts *ItemsOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	values, err := url.ParseQuery(opts.Query)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeInvalidArgument, "parsing --query", err)
	}
	flags := cmd.Flags()
	overrideString(values, flags.Changed("wikilog"), query.ParamWikilog, opts.Wikilog)
	overrideString(values, flags.Changed("show"), query.ParamShow, opts.Show)
	overrideString(values, flags.Changed("category"), query.ParamCategory, opts.Category)
	overrideString(values, flags.Changed("author"), query.ParamAuthor, opts.Author)
	overrideString(values, flags.Changed("tag"), query.ParamTag, opts.Tag)
	overrideInt(values, flags.Changed("year"), query.ParamYear, opts.Year)
	overrideInt(values, flags.Changed("month"), query.ParamMonth, opts.Month)
	overrideInt(values, flags.Changed("day"), query.ParamDay, opts.Day)

	sess, err := openSession(opts.RootOptions, cmd, formatter)
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx := cmd.Context()
	q, err := query.ParseItemQuery(ctx, sess.env, values)
	if err != nil {
		return queryError(formatter, err)
	}
	if opts.LastCommentTimestamp {
		q.IncludeLastCommentTimestamp(true)
	}

	res, err := buildResult(ctx, sess, "items", q, formatter)
	if err != nil {
		return err
	}
	return formatter.Success(res)
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
		Trace:     opts.Trace,
	}
}

// queryError maps builder errors to exit codes: rejected filter values are
// command errors, anything else (lookup failures) is an execution failure.
func queryError(formatter *OutputFormatter, err error) error {
	if query.IsInvalidArgument(err) || query.IsUnknownOption(err) {
		return fail(formatter, ExitCommandError, ErrCodeInvalidArgument, "invalid filter", err)
	}
	return fail(formatter, ExitFailure, ErrCodeExecute, "resolving filter", err)
}

func overrideString(values url.Values, changed bool, key, value string) {
	if changed {
		values.Set(key, value)
	}
}

func overrideInt(values url.Values, changed bool, key string, value int) {
	if changed {
		values.Set(key, strconv.Itoa(value))
	}
}
