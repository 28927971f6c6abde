package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/terra-clan/interview-console/internal/auth"
	"github.com/terra-clan/interview-console/pkg/client"
)

var version = "dev"

const defaultAPIURL = "http://localhost:8081"

// rootOptions are the persistent flags shared by every command
type rootOptions struct {
	apiURL      string
	credentials string
	timeout     time.Duration
	debug       bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "interviewctl",
		Short: "interviewctl - practice AI mock interviews from the terminal",
		Long: `interviewctl talks to the interview backend directly.

Sign in with a one-time code, set up an interview with the guided wizard,
then answer the interviewer in a chat. Coding challenges can be run against
the configured judge before they are submitted.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.debug {
				slog.SetLogLoggerLevel(slog.LevelDebug)
			}
		},
	}

	apiURL := os.Getenv("INTERVIEW_API_URL")
	if apiURL == "" {
		apiURL = defaultAPIURL
	}

	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&opts.apiURL, "api", apiURL, "Interview backend base URL (env INTERVIEW_API_URL)")
	cmd.PersistentFlags().StringVar(&opts.credentials, "credentials", "", "Credentials file (default ~/.config/interviewctl/credentials.yaml)")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 60*time.Second, "Backend request timeout")

	cmd.AddCommand(newLoginCommand(opts))
	cmd.AddCommand(newRegisterCommand(opts))
	cmd.AddCommand(newLogoutCommand(opts))
	cmd.AddCommand(newHistoryCommand(opts))
	cmd.AddCommand(newStartCommand(opts))
	cmd.AddCommand(newChatCommand(opts))
	cmd.AddCommand(newAdminCommand(opts))

	return cmd
}

func execute() error {
	return newRootCommand().Execute()
}

// store opens the credentials file
func (o *rootOptions) store() (*auth.FileStore, error) {
	path := o.credentials
	if path == "" {
		p, err := auth.DefaultCredentialsPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return auth.NewFileStore(path), nil
}

// client builds an API client bound to the credentials file
func (o *rootOptions) client() (*client.Client, *auth.FileStore, error) {
	store, err := o.store()
	if err != nil {
		return nil, nil, err
	}
	c := client.NewClient(o.apiURL,
		client.WithTimeout(o.timeout),
		client.WithCredentialStore(store),
		client.WithAuthExpiredHandler(func() {
			slog.Debug("stored credentials cleared after failed refresh", "path", store.Path())
		}),
	)
	return c, store, nil
}
