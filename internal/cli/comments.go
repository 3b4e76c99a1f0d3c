package cli

import (
	"net/url"

	"github.com/spf13/cobra"

	"github.com/jravasi/mediawiki-wikilog/internal/query"
)

// CommentsOptions holds flags for the comments command.
type CommentsOptions struct {
	*RootOptions
	Query            string // raw request query string
	Wikilog          string
	Item             string
	Show             string
	Thread           string
	Author           string
	Year, Month, Day int
	IncludeItem      bool
}

// NewCommentsCommand creates the comments command.
func NewCommentsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CommentsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "comments",
		Short: "Compile a wikilog comment listing filter",
		Long: `Compile a wikilog comment filter into a query descriptor.

Flags override the matching parameters of --query. --item takes precedence
over --wikilog; --thread only applies together with --item.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runComments(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Query, "query", "q", "", "request query string, e.g. \"item=Blog:Main/Post&show=pending\"")
	cmd.Flags().StringVar(&opts.Wikilog, "wikilog", "", "wikilog title or namespace wildcard (Blog:*)")
	cmd.Flags().StringVar(&opts.Item, "item", "", "wikilog item title")
	cmd.Flags().StringVar(&opts.Show, "show", "", "moderation status (all|accepted|pending|notdeleted|notpending)")
	cmd.Flags().StringVar(&opts.Thread, "thread", "", "thread path below the item")
	cmd.Flags().StringVar(&opts.Author, "author", "", "comment author user name")
	cmd.Flags().IntVar(&opts.Year, "year", 0, "comment year")
	cmd.Flags().IntVar(&opts.Month, "month", 0, "comment month")
	cmd.Flags().IntVar(&opts.Day, "day", 0, "comment day")
	cmd.Flags().BoolVar(&opts.IncludeItem, "include-item", false, "include the columns of each comment's item")

	return cmd
}

func runComments(opts *CommentsOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	values, err := url.ParseQuery(opts.Query)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeInvalidArgument, "parsing --query", err)
	}
	flags := cmd.Flags()
	overrideString(values, flags.Changed("wikilog"), query.ParamWikilog, opts.Wikilog)
	overrideString(values, flags.Changed("item"), query.ParamItem, opts.Item)
	overrideString(values, flags.Changed("show"), query.ParamShow, opts.Show)
	overrideString(values, flags.Changed("thread"), query.ParamThread, opts.Thread)
	overrideString(values, flags.Changed("author"), query.ParamAuthor, opts.Author)
	overrideInt(values, flags.Changed("year"), query.ParamYear, opts.Year)
	overrideInt(values, flags.Changed("month"), query.ParamMonth, opts.Month)
	overrideInt(values, flags.Changed("day"), query.ParamDay, opts.Day)

	sess, err := openSession(opts.RootOptions, cmd, formatter)
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx := cmd.Context()
	q, err := query.ParseCommentQuery(ctx, sess.env, values)
	if err != nil {
		return queryError(formatter, err)
	}
	if opts.IncludeItem {
		q.IncludeItem(true)
	}

	res, err := buildResult(ctx, sess, "comments", q, formatter)
	if err != nil {
		return err
	}
	return formatter.Success(res)
}
