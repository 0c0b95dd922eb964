package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"portfolio-backend/pkg/contactclient"

	"github.com/spf13/cobra"
)

type Config struct {
	OutputWriter io.Writer
	HTTPClient   *http.Client
}

func DefaultConfig() Config {
	return Config{OutputWriter: os.Stdout}
}

// errNotSent makes the process exit non-zero after the result was printed.
var errNotSent = errors.New("message not sent")

func NewRootCommand(cfg Config) *cobra.Command {
	root := &cobra.Command{
		Use:           "contact",
		Short:         "Portfolio contact form CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newSendCommand(cfg))
	return root
}

func newSendCommand(cfg Config) *cobra.Command {
	var (
		server  string
		timeout time.Duration
		sub     contactclient.Submission
	)

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a message through the contact form",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cfg.OutputWriter
			if out == nil {
				out = cmd.OutOrStdout()
			}
			if server == "" {
				server = os.Getenv("CONTACT_SERVER")
			}
			if server == "" {
				server = "http://localhost:8080"
			}

			opts := []contactclient.Option{contactclient.WithServer(server)}
			if cfg.HTTPClient != nil {
				opts = append(opts, contactclient.WithHTTPClient(cfg.HTTPClient))
			}
			client, err := contactclient.New(opts...)
			if err != nil {
				return err
			}

			form := contactclient.NewForm(client)
			form.Name = sub.Name
			form.Email = sub.Email
			form.Subject = sub.Subject
			form.Message = sub.Message

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			res, err := form.Submit(ctx)
			_, _ = fmt.Fprintln(out, res.Message)
			if err != nil {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
			}
			if !res.Success {
				return errNotSent
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "Portfolio backend URL (default $CONTACT_SERVER or http://localhost:8080)")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Overall request timeout")
	cmd.Flags().StringVar(&sub.Name, "name", "", "Your name")
	cmd.Flags().StringVar(&sub.Email, "email", "", "Your email address")
	cmd.Flags().StringVar(&sub.Subject, "subject", "", "Message subject")
	cmd.Flags().StringVar(&sub.Message, "message", "", "Message body")

	return cmd
}
