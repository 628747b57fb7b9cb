package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gookit/slog"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/OCHA-DAP/ocha-mailchimp/internal/config"
	"github.com/OCHA-DAP/ocha-mailchimp/internal/mailchimp"
	"github.com/OCHA-DAP/ocha-mailchimp/internal/statemgr"
	"github.com/OCHA-DAP/ocha-mailchimp/internal/version"
)

type app struct {
	out    io.Writer
	viper  *viper.Viper
	client *mailchimp.Client
	redis  *statemgr.Redis // nil unless redis is configured
}

type subscriberRow struct {
	EmailAddress string `json:"email_address"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Status       string `json:"status"`
}

func run(ctx context.Context, args []string, out io.Writer, v *viper.Viper) error {
	a := &app{out: out, viper: v}
	defer a.close()

	root := a.rootCommand()
	root.SetArgs(args)
	root.SetOut(out)
	return root.ExecuteContext(ctx)
}

func (a *app) setup(ctx context.Context) error {
	if a.client != nil {
		return nil
	}

	cfg, err := config.Load(a.viper)
	if err != nil {
		return err
	}
	if used := a.viper.ConfigFileUsed(); len(used) > 0 {
		slog.Info(fmt.Sprintf("configuration initialized. Config file used: %v", used))
	}

	opts := []mailchimp.ClientOption{
		mailchimp.WithHTTPClient(&http.Client{Timeout: cfg.Mailchimp.Timeout()}),
	}
	if len(cfg.Mailchimp.BaseUrl) > 0 {
		opts = append(opts, mailchimp.WithBaseURL(cfg.Mailchimp.BaseUrl))
	}

	a.client, err = mailchimp.NewClient(cfg.Mailchimp.ApiKey, cfg.Mailchimp.ServerPrefix, opts...)
	if err != nil {
		return err
	}

	if cfg.Redis.Enabled() {
		a.redis = statemgr.NewRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err := a.redis.Ping(ctx); err != nil {
			return errors.Wrapf(err, "make sure redis is available on '%v'", cfg.Redis.Addr)
		}
	}

	return nil
}

func (a *app) close() {
	if a.redis != nil {
		a.redis.Close()
	}
}

func (a *app) print(v interface{}) error {
	bytes, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return errors.Wrap(err, "unable to marshal the output")
	}
	_, err = fmt.Fprintln(a.out, string(bytes))
	return err
}

// withSetup wraps a command body so it runs with a configured client.
func (a *app) withSetup(fn func(ctx context.Context, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := a.setup(cmd.Context()); err != nil {
			return err
		}
		return fn(cmd.Context(), args)
	}
}

func (a *app) rootCommand() *cobra.Command {
	var quiet bool

	root := &cobra.Command{
		Use:           "ocha-mailchimp",
		Short:         "Manage Mailchimp subscribers, interests and tags",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if quiet {
				slog.SetLogLevel(slog.ErrorLevel)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only log errors")

	root.AddCommand(
		a.listsCommand(),
		a.subscribersCommand(),
		a.categoriesCommand(),
		a.interestsCommand(),
		a.interestMembersCommand(),
		a.groupCommand("add-to-group", "Add a subscriber to an interest group", true),
		a.groupCommand("remove-from-group", "Remove a subscriber from an interest group", false),
		a.tagCommand("tag", "Activate a tag on a subscriber", true),
		a.tagCommand("untag", "Deactivate a tag on a subscriber", false),
		a.tagInterestCommand(),
		a.lastRunCommand(),
		versionCommand(a),
	)

	return root
}

func requireFlags(cmd *cobra.Command, names ...string) {
	for _, n := range names {
		// only fails for an unknown flag name
		if err := cmd.MarkFlagRequired(n); err != nil {
			panic(err)
		}
	}
}

func (a *app) listsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "lists",
		Short: "Show the lists of the account",
		Args:  cobra.NoArgs,
		RunE: a.withSetup(func(ctx context.Context, _ []string) error {
			lists, err := a.client.GetLists(ctx)
			if err != nil {
				return err
			}
			slog.Info(fmt.Sprintf("found %v lists", len(lists)))
			return a.print(lists)
		}),
	}
}

func (a *app) subscribersCommand() *cobra.Command {
	var listId string

	cmd := &cobra.Command{
		Use:   "subscribers",
		Short: "Show every subscribed member of a list",
		Args:  cobra.NoArgs,
		RunE: a.withSetup(func(ctx context.Context, _ []string) error {
			members, err := a.client.GetSubscribers(ctx, listId)

			rows := make([]subscriberRow, 0, len(members))
			for _, m := range members {
				first, last := m.Names()
				rows = append(rows, subscriberRow{
					EmailAddress: m.EmailAddress,
					FirstName:    first,
					LastName:     last,
					Status:       m.Status,
				})
			}

			// print what was fetched even when a later page failed
			if perr := a.print(rows); perr != nil {
				return perr
			}
			return err
		}),
	}
	cmd.Flags().StringVar(&listId, "list", "", "list id")
	requireFlags(cmd, "list")
	return cmd
}

func (a *app) categoriesCommand() *cobra.Command {
	var listId string

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Show the interest categories of a list",
		Args:  cobra.NoArgs,
		RunE: a.withSetup(func(ctx context.Context, _ []string) error {
			categories, err := a.client.GetInterestCategories(ctx, listId)
			if err != nil {
				return err
			}
			return a.print(categories)
		}),
	}
	cmd.Flags().StringVar(&listId, "list", "", "list id")
	requireFlags(cmd, "list")
	return cmd
}

func (a *app) interestsCommand() *cobra.Command {
	var listId, categoryId string

	cmd := &cobra.Command{
		Use:   "interests",
		Short: "Show the interests of a category",
		Args:  cobra.NoArgs,
		RunE: a.withSetup(func(ctx context.Context, _ []string) error {
			interests, err := a.client.GetInterests(ctx, listId, categoryId)
			if err != nil {
				return err
			}
			return a.print(interests)
		}),
	}
	cmd.Flags().StringVar(&listId, "list", "", "list id")
	cmd.Flags().StringVar(&categoryId, "category", "", "interest category id")
	requireFlags(cmd, "list", "category")
	return cmd
}

func (a *app) interestMembersCommand() *cobra.Command {
	var listId, interestId string

	cmd := &cobra.Command{
		Use:   "interest-members",
		Short: "Show the email addresses subscribed to an interest (first 1000 only)",
		Args:  cobra.NoArgs,
		RunE: a.withSetup(func(ctx context.Context, _ []string) error {
			emails, err := a.client.GetSubscribersWithInterest(ctx, listId, interestId)
			if err != nil {
				return err
			}
			return a.print(emails)
		}),
	}
	cmd.Flags().StringVar(&listId, "list", "", "list id")
	cmd.Flags().StringVar(&interestId, "interest", "", "interest id")
	requireFlags(cmd, "list", "interest")
	return cmd
}

func (a *app) groupCommand(use string, short string, add bool) *cobra.Command {
	var listId, groupId, email string

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: a.withSetup(func(ctx context.Context, _ []string) error {
			if add {
				return a.client.AddSubscriberToGroup(ctx, email, groupId, listId)
			}
			return a.client.RemoveSubscriberFromGroup(ctx, email, groupId, listId)
		}),
	}
	cmd.Flags().StringVar(&listId, "list", "", "list id")
	cmd.Flags().StringVar(&groupId, "group", "", "interest (group) id")
	cmd.Flags().StringVar(&email, "email", "", "subscriber email address")
	requireFlags(cmd, "list", "group", "email")
	return cmd
}

func (a *app) tagCommand(use string, short string, add bool) *cobra.Command {
	var listId, tagName, email string

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: a.withSetup(func(ctx context.Context, _ []string) error {
			if add {
				return a.client.AddTagToSubscriber(ctx, email, tagName, listId)
			}
			return a.client.RemoveTagFromSubscriber(ctx, email, tagName, listId)
		}),
	}
	cmd.Flags().StringVar(&listId, "list", "", "list id")
	cmd.Flags().StringVar(&tagName, "tag", "", "tag name")
	cmd.Flags().StringVar(&email, "email", "", "subscriber email address")
	requireFlags(cmd, "list", "tag", "email")
	return cmd
}

func (a *app) tagInterestCommand() *cobra.Command {
	var listId, interestId, tagName string

	cmd := &cobra.Command{
		Use:   "tag-interest",
		Short: "Tag every subscriber of an interest",
		Args:  cobra.NoArgs,
		RunE: a.withSetup(func(ctx context.Context, _ []string) error {
			nowTimestamp := time.Now()

			report, err := a.client.AddTagToInterestSubscribers(ctx, listId, interestId, tagName)
			if err != nil {
				return err
			}

			if a.redis != nil {
				err = a.redis.SetCompletedRun(ctx, statemgr.Run{
					ListId:      listId,
					InterestId:  interestId,
					Tag:         tagName,
					CompletedAt: nowTimestamp,
					Tagged:      len(report.Tagged),
					Failed:      len(report.Failed),
				})
				if err != nil {
					return err
				}
			}

			slog.Info(fmt.Sprintf("finished tagging. Time elapsed: %v", time.Since(nowTimestamp)))

			if err := a.print(report); err != nil {
				return err
			}
			if len(report.Failed) > 0 {
				return errors.Errorf("%v subscribers could not be tagged", len(report.Failed))
			}
			return nil
		}),
	}
	cmd.Flags().StringVar(&listId, "list", "", "list id")
	cmd.Flags().StringVar(&interestId, "interest", "", "interest id")
	cmd.Flags().StringVar(&tagName, "tag", "", "tag name")
	requireFlags(cmd, "list", "interest", "tag")
	return cmd
}

func (a *app) lastRunCommand() *cobra.Command {
	var listId, interestId, tagName string

	cmd := &cobra.Command{
		Use:   "last-run",
		Short: "Show when tag-interest last completed for an interest and tag",
		Args:  cobra.NoArgs,
		RunE: a.withSetup(func(ctx context.Context, _ []string) error {
			if a.redis == nil {
				return errors.New("run history needs redis - set Redis.Addr in config.json or OCHA_REDIS_ADDR")
			}
			run, err := a.redis.GetLastRun(ctx, listId, interestId, tagName)
			if err != nil {
				return err
			}
			if run == nil {
				return errors.Errorf("no completed run for list %v, interest %v and tag '%v'", listId, interestId, tagName)
			}
			return a.print(run)
		}),
	}
	cmd.Flags().StringVar(&listId, "list", "", "list id")
	cmd.Flags().StringVar(&interestId, "interest", "", "interest id")
	cmd.Flags().StringVar(&tagName, "tag", "", "tag name")
	requireFlags(cmd, "list", "interest", "tag")
	return cmd
}

func versionCommand(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.Get()
			switch output {
			case "json":
				return a.print(info)
			case "text":
				_, err := fmt.Fprintln(a.out, info.String())
				return err
			default:
				return errors.Errorf("unsupported output format: %s", output)
			}
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format (text, json)")
	return cmd
}
