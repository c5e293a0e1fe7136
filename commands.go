package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/ortelius/pdvd-notices/internal/api"
	"github.com/ortelius/pdvd-notices/internal/config"
	"github.com/ortelius/pdvd-notices/internal/datasource"
	"github.com/ortelius/pdvd-notices/internal/matcher"
	"github.com/ortelius/pdvd-notices/internal/services"
	"github.com/ortelius/pdvd-notices/model"
	"github.com/ortelius/pdvd-notices/storage"
	"github.com/ortelius/pdvd-notices/util"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// rootOptions holds the persistent flags shared by every command
type rootOptions struct {
	configPath string
	debug      bool
	endpoint   string
	cacheFile  string

	cfg    *config.Config
	logger *zap.Logger
}

// showOptions holds the flags describing the run being checked
type showOptions struct {
	outdir       string
	cliVersion   string
	noCache      bool
	acknowledged []int
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	show := &showOptions{}

	rootCmd := &cobra.Command{
		Use:           "pdvd-notices",
		Short:         "Show known issues that affect your tool version and construct tree",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load()
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runShow(cmd, opts, show)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", config.DefaultPath(), "path to the config file")
	flags.BoolVar(&opts.debug, "debug", false, "enable debug logging on stderr")
	flags.StringVar(&opts.endpoint, "endpoint", "", "notices catalog URL (overrides config)")
	flags.StringVar(&opts.cacheFile, "cache-file", "", "notices cache file (overrides config)")

	addShowFlags(rootCmd, show)

	rootCmd.AddCommand(
		newShowCmd(opts),
		newListCmd(opts),
		newAcknowledgeCmd(opts),
		newInventoryCmd(opts),
		newServeCmd(opts),
	)
	return rootCmd
}

func addShowFlags(cmd *cobra.Command, show *showOptions) {
	cmd.Flags().StringVarP(&show.outdir, "outdir", "o", "", "directory holding the construct tree (defaults to config outdir)")
	cmd.Flags().StringVar(&show.cliVersion, "cli-version", version, "tool version to check notices against")
	cmd.Flags().BoolVar(&show.noCache, "no-cache", false, "always fetch the catalog instead of using the cache")
	cmd.Flags().IntSliceVar(&show.acknowledged, "acknowledged", nil, "issue numbers to hide, merged with the config file")
}

// load reads the config file and applies flag overrides
func (o *rootOptions) load() error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	cfg.Endpoint = util.GetStringOrDefault(o.endpoint, cfg.Endpoint)
	cfg.CacheFile = util.GetStringOrDefault(o.cacheFile, cfg.CacheFile)

	o.cfg = cfg
	o.logger = storage.InitLogger(o.debug)
	return nil
}

// dataSource builds the website source, wrapped in the cache unless skipCache is set
func (o *rootOptions) dataSource(skipCache bool) datasource.NoticeDataSource {
	web := datasource.NewWebsiteDataSource(o.cfg.Endpoint, o.logger)
	web.Timeout = o.cfg.Timeout

	return datasource.NewCachedDataSource(o.cfg.CacheFile, web,
		datasource.WithTTL(o.cfg.CacheTTL),
		datasource.WithSkipCache(skipCache),
		datasource.WithLogger(o.logger),
	)
}

// service wires a NoticeService over ds using the configured matcher and issue link
func (o *rootOptions) service(ds datasource.NoticeDataSource) *services.NoticeService {
	svc := services.NewNoticeService(ds, o.logger)
	svc.Matcher = matcher.New(o.cfg.FrameworkModules...)
	svc.IssueURL = o.cfg.IssueURL
	return svc
}

// displayContext merges show flags with the config file
func (o *rootOptions) displayContext(show *showOptions, withAcks bool) model.DisplayContext {
	dc := model.DisplayContext{
		Outdir:      util.GetStringOrDefault(show.outdir, o.cfg.Outdir),
		ToolVersion: show.cliVersion,
	}
	if withAcks {
		dc.AcknowledgedIssueNumbers = util.MergeInts(o.cfg.Acknowledged, show.acknowledged...)
	}
	return dc
}

func newShowCmd(opts *rootOptions) *cobra.Command {
	show := &showOptions{}
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the notices that apply to this run and were not acknowledged",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runShow(cmd, opts, show)
		},
	}
	addShowFlags(cmd, show)
	return cmd
}

func runShow(cmd *cobra.Command, opts *rootOptions, show *showOptions) error {
	svc := opts.service(opts.dataSource(show.noCache))
	msg := svc.GenerateMessage(cmd.Context(), opts.displayContext(show, true))
	if msg != "" {
		fmt.Fprintln(cmd.OutOrStdout(), msg)
	}
	return nil
}

func newListCmd(opts *rootOptions) *cobra.Command {
	show := &showOptions{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Fetch a fresh catalog and print every applicable notice, including acknowledged ones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc := opts.service(opts.dataSource(true))
			msg := svc.GenerateMessage(cmd.Context(), opts.displayContext(show, false))
			if msg != "" {
				fmt.Fprintln(cmd.OutOrStdout(), msg)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&show.outdir, "outdir", "o", "", "directory holding the construct tree (defaults to config outdir)")
	cmd.Flags().StringVar(&show.cliVersion, "cli-version", version, "tool version to check notices against")
	return cmd
}

func newAcknowledgeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "acknowledge <issue-number>",
		Aliases: []string{"ack"},
		Short:   "Stop showing a notice",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			issue, err := strconv.Atoi(args[0])
			if err != nil || issue <= 0 {
				return fmt.Errorf("invalid issue number %q", args[0])
			}

			fileCfg, err := config.LoadFile(opts.configPath)
			if err != nil {
				return err
			}
			if !fileCfg.Acknowledge(issue) {
				fmt.Fprintf(cmd.OutOrStdout(), "Notice %d was already acknowledged\n", issue)
				return nil
			}
			if err := fileCfg.Save(opts.configPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Acknowledged notice %d in %s\n", issue, opts.configPath)
			return nil
		},
	}
}

func newInventoryCmd(opts *rootOptions) *cobra.Command {
	show := &showOptions{}
	cmd := &cobra.Command{
		Use:   "inventory",
		Short: "Print the facts notices are matched against",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc := opts.service(nil)
			dc := opts.displayContext(show, false)
			return printInventory(cmd.OutOrStdout(), svc.Scanner.Scan(dc.Outdir, dc.ToolVersion))
		},
	}
	cmd.Flags().StringVarP(&show.outdir, "outdir", "o", "", "directory holding the construct tree (defaults to config outdir)")
	cmd.Flags().StringVar(&show.cliVersion, "cli-version", version, "tool version to report")
	return cmd
}

func printInventory(out io.Writer, facts []model.InventoryFact) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KIND\tMODULE\tVERSION\tCONSTRUCT\tPURL")
	for _, f := range facts {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			f.Kind, orDash(f.ModuleName), f.Version, orDash(f.ConstructFqn), orDash(f.PURL()))
	}
	return w.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	var (
		listen    string
		catalog   string
		accessLog bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve notices over REST and GraphQL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var ds datasource.NoticeDataSource
			if catalog != "" {
				ds = datasource.NewFileDataSource(catalog)
			} else {
				ds = opts.dataSource(false)
			}

			defaults := model.DisplayContext{
				Outdir:                   opts.cfg.Outdir,
				ToolVersion:              version,
				AcknowledgedIssueNumbers: opts.cfg.Acknowledged,
			}
			app, err := api.NewFiberApp(opts.service(ds), defaults, accessLog)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "Starting server on %s\n", listen)
			fmt.Fprintln(cmd.ErrOrStderr(), "GraphQL endpoint available at /api/v1/graphql")
			return app.Listen(listen)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "127.0.0.1:"+util.GetEnvDefault("MS_PORT", "3000"), "address to listen on")
	cmd.Flags().StringVar(&catalog, "catalog", "", "serve a local catalog file instead of the remote endpoint")
	cmd.Flags().BoolVar(&accessLog, "access-log", false, "log every request")
	return cmd
}
