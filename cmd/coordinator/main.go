// Command coordinator drives one signing attempt: it collects commitments
// from the chosen signers, distributes the signing package, aggregates the
// shares and prints the signature.
package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

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
		configPath   string
		identityName string
		groupName    string
		signerSpec   string
		messageHex   string
		messageFile  string
		randomized   bool
		serverURL    string
	)

	cmd := &cobra.Command{
		Use:          "coordinator",
		Short:        "coordinate one threshold signing attempt",
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
			_, publicKeyPackage, err := group.Keys()
			if err != nil {
				return err
			}

			message, err := readMessage(messageHex, messageFile)
			if err != nil {
				return err
			}
			signers, err := pickSigners(group, signerSpec)
			if err != nil {
				return err
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

			signature, err := comms.RunCoordinator(ctx, comms.SigningConfig{
				Client:           client,
				Identity:         identity,
				PublicKeyPackage: publicKeyPackage,
				Signers:          signers,
				Message:          message,
				Randomized:       randomized,
			})
			if err != nil {
				return err
			}
			encoded, err := signature.Encode()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(encoded))
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "frost.cfg", "path to the config document")
	cmd.Flags().StringVar(&identityName, "identity", "", "identity name")
	cmd.Flags().StringVar(&groupName, "group", "", "group name")
	cmd.Flags().StringVar(&signerSpec, "signers", "", "comma-separated signer identifiers")
	cmd.Flags().StringVar(&messageHex, "message", "", "message to sign, hex")
	cmd.Flags().StringVar(&messageFile, "message-file", "", "file containing the raw message to sign")
	cmd.Flags().BoolVar(&randomized, "randomized", false, "produce a rerandomized signature")
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

func readMessage(messageHex, messageFile string) ([]byte, error) {
	switch {
	case messageHex != "" && messageFile != "":
		return nil, fmt.Errorf("%w: --message and --message-file are mutually exclusive", errUsage)
	case messageHex != "":
		return hex.DecodeString(messageHex)
	case messageFile != "":
		return os.ReadFile(messageFile)
	}
	return nil, fmt.Errorf("%w: one of --message or --message-file is required", errUsage)
}

func pickSigners(group *config.Group, spec string) ([]comms.Peer, error) {
	all := group.Peers(0)
	byID := make(map[party.ID]comms.Peer, len(all))
	for _, peer := range all {
		byID[peer.Identifier] = peer
	}
	var signers []comms.Peer
	for _, field := range strings.Split(spec, ",") {
		id, err := party.FromString(strings.TrimSpace(field))
		if err != nil {
			return nil, fmt.Errorf("%w: signer %q: %v", errUsage, field, err)
		}
		peer, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: signer %s is not a group member", errUsage, id)
		}
		signers = append(signers, peer)
	}
	return signers, nil
}
