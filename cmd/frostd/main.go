// Command frostd runs the session rendezvous server.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quorumsig/frost/server"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// errUsage marks operator misuse, reported with exit code 2 instead of the
// generic failure code 1.
var errUsage = errors.New("usage error")

func main() {
	var (
		ip             string
		port           int
		tlsCert        string
		tlsKey         string
		dbPath         string
		sessionTimeout time.Duration
	)

	cmd := &cobra.Command{
		Use:          "frostd",
		Short:        "FROST session rendezvous server",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := zerolog.New(os.Stderr).With().Timestamp().Logger()
			if dbPath != "" {
				log.Warn().Str("db-path", dbPath).Msg("account persistence is not enabled; accounts are in-memory")
			}
			srv := server.New(server.Config{
				Addr:           fmt.Sprintf("%s:%d", ip, port),
				TLSCert:        tlsCert,
				TLSKey:         tlsKey,
				SessionTimeout: sessionTimeout,
				Logger:         log,
			})
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.ListenAndServe(ctx)
		},
	}
	cmd.Flags().StringVar(&ip, "ip", "0.0.0.0", "address to bind")
	cmd.Flags().IntVar(&port, "port", 2744, "port to bind")
	cmd.Flags().StringVar(&tlsCert, "tls-cert", "", "path to the TLS certificate")
	cmd.Flags().StringVar(&tlsKey, "tls-key", "", "path to the TLS key")
	cmd.Flags().StringVar(&dbPath, "db-path", "", "reserved: path for persistent account storage")
	cmd.Flags().DurationVar(&sessionTimeout, "session-timeout", server.DefaultSessionTimeout, "idle session eviction timeout")
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", errUsage, err)
	})

	if err := cmd.Execute(); err != nil {
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
