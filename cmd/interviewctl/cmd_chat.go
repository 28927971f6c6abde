package main

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/terra-clan/interview-console/internal/catalog"
	"github.com/terra-clan/interview-console/internal/config"
	"github.com/terra-clan/interview-console/internal/judge"
	"github.com/terra-clan/interview-console/internal/speech"
	"github.com/terra-clan/interview-console/internal/wizard"
	"github.com/terra-clan/interview-console/pkg/client"
)

// chatOptions configure the terminal conversation
type chatOptions struct {
	speakCmd  string
	listenCmd string
}

func (o *chatOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.speakCmd, "speak-cmd", "", "Command that reads text on stdin and speaks it, e.g. \"espeak\"")
	cmd.Flags().StringVar(&o.listenCmd, "listen-cmd", "", "Command that prints one cumulative transcript per line")
}

// speech returns the adapter for the configured commands
func (o *chatOptions) speech() *speech.Command {
	return speech.NewCommand(strings.Fields(o.speakCmd), strings.Fields(o.listenCmd))
}

func newStartCommand(opts *rootOptions) *cobra.Command {
	chatOpts := &chatOptions{}

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Set up a new interview and start chatting",
		Long: `Set up a new interview with the guided wizard, then start chatting.

The wizard asks for the role, skills and interview type, an optional resume
and the duration.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, store, err := opts.client()
			if err != nil {
				return err
			}
			creds, err := store.Load(cmd.Context())
			if err != nil {
				return err
			}
			if creds.AccessToken == "" {
				return fmt.Errorf("not signed in: %w", client.ErrAuthExpired)
			}

			res, err := wizard.RunForm(cmd.Context(), wizard.New(creds.PhoneNumber, api, nil), cmd.InOrStdin(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Interview %d started.\n\n", res.InterviewID) //nolint:errcheck

			return runChat(cmd, api, chatOpts, res.InterviewID, res.InitialQuestion)
		},
	}
	chatOpts.bind(cmd)

	return cmd
}

func newChatCommand(opts *rootOptions) *cobra.Command {
	chatOpts := &chatOptions{}

	cmd := &cobra.Command{
		Use:   "chat <interview-id>",
		Short: "Continue an interview that is still in progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid interview id: %s", args[0])
			}

			api, _, err := opts.client()
			if err != nil {
				return err
			}
			iv, err := api.GetInterview(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to load interview: %w", err)
			}
			if iv.IsCompleted() {
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Interview %d has already ended.\n", id) //nolint:errcheck
				if iv.Feedback != "" {
					renderFeedback(out, iv.Feedback)
				}
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Resuming interview %d (%s).\n\n", id, iv.Role) //nolint:errcheck
			return runChat(cmd, api, chatOpts, id, "")
		},
	}
	chatOpts.bind(cmd)

	return cmd
}

func runChat(cmd *cobra.Command, api *client.Client, opts *chatOptions, interviewID int64, question string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	cat := catalog.NewLoader()
	if err := cat.LoadFromDir(cfg.Catalog.Dir); err != nil {
		slog.Debug("using built-in catalog", "dir", cfg.Catalog.Dir, "error", err)
	}

	runner, err := cfg.Runner(cat.Languages(), cat.LanguageIDs())
	if err != nil {
		return err
	}
	if d, ok := runner.(*judge.DockerRunner); ok {
		defer d.Close()
	}

	voice := opts.speech()
	defer voice.Close()

	tc := newTerminalChat(cmd.OutOrStdout(), runner, cat)
	return tc.run(cmd.Context(), cmd.InOrStdin(), api, voice, interviewID, question)
}
