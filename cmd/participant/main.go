// Command participant serves one signing attempt: it commits, waits for
// the coordinator's signing package, and returns its signature share.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/quorumsig/frost/pkg/comms"
	"github.com/quorumsig/frost/pkg/config"
	"github.com/quorumsig/frost/pkg/party"
	"github.com/spf13/cobra"
)

// errUsage marks operator misuse, reported with exit code 2 instead of the
// generic failure code 1.
var errUsage = errors.New("usage error")

func main() {
	var (
		configPath     string
		identityName   string
		groupName      string
		coordinatorID  uint16
		sessionID      string
		serverURL      string
	)

	cmd := &cobra.Command{
		Use:          "participant",
		Short:        "participate in one threshold signing attempt",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := config.Load(configPath)
			if err != nil {
				return err
			}
			identity, err := doc.Identity(identityName)
			if err != nil {
				return err
			}
			group, err := doc.Group(groupName)
			if err != nil {
				return err
			}
			keyPackage, _, err := group.Keys()
			if err != nil {
				return err
			}

			var coordinator *comms.Peer
			for _, peer := range group.Peers(keyPackage.Identifier) {
				if peer.Identifier == party.ID(coordinatorID) {
					p := peer
					coordinator = &p
					break
				}
			}
			if coordinator == nil {
				return fmt.Errorf("%w: coordinator %d is not a group member", errUsage, coordinatorID)
			}

			session := uuid.Nil
			if sessionID != "" {
				if session, err = uuid.Parse(sessionID); err != nil {
					return err
				}
			}
			url := serverURL
			if url == "" {
				url = group.ServerURL
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			client := comms.NewClient(url)
			if err := client.Login(ctx, identity); err != nil {
				return err
			}
			defer client.Logout(context.Background())

			return comms.RunParticipant(ctx, comms.ParticipantConfig{
				Client:      client,
				Identity:    identity,
				KeyPackage:  keyPackage,
				Coordinator: *coordinator,
				SessionID:   session,
			})
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "frost.cfg", "path to the config document")
	cmd.Flags().StringVar(&identityName, "identity", "", "identity name")
	cmd.Flags().StringVar(&groupName, "group", "", "group name")
	cmd.Flags().Uint16Var(&coordinatorID, "coordinator", 0, "coordinator's group identifier")
	cmd.Flags().StringVar(&sessionID, "session", "", "session id (discovered when omitted)")
	cmd.Flags().StringVar(&serverURL, "server-url", "", "rendezvous server URL (defaults to the group's)")
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
