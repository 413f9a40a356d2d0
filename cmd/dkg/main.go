// Command dkg runs distributed key generation, either over a rendezvous
// server (run) or offline through files (part-1, part-2, part-3).
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
	"github.com/quorumsig/frost/pkg/frost"
	"github.com/quorumsig/frost/pkg/frost/dkg"
	"github.com/quorumsig/frost/pkg/party"
	"github.com/spf13/cobra"
)

// errUsage marks operator misuse, reported with exit code 2 instead of the
// generic failure code 1.
var errUsage = errors.New("usage error")

func main() {
	root := &cobra.Command{
		Use:          "dkg",
		Short:        "distributed key generation",
		SilenceUsage: true,
	}
	root.AddCommand(runCmd(), part1Cmd(), part2Cmd(), part3Cmd())
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", errUsage, err)
	})
	if err := root.Execute(); err != nil {
		// cobra reports an unrecognized subcommand as a plain error; that
		// is misuse too.
		if errors.Is(err, errUsage) || strings.HasPrefix(err.Error(), "unknown command") {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	var (
		configPath   string
		identityName string
		groupName    string
		suiteName    string
		selfID       uint16
		threshold    uint16
		serverURL    string
		create       bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "run DKG online over a rendezvous server",
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
			suite, err := frost.SuiteByName(suiteName)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			client := comms.NewClient(serverURL)
			if err := client.Login(ctx, identity); err != nil {
				return err
			}
			defer client.Logout(context.Background())

			result, err := comms.RunDKG(ctx, comms.DKGConfig{
				Client:        client,
				Identity:      identity,
				Suite:         suite,
				SelfID:        party.ID(selfID),
				Threshold:     threshold,
				Peers:         group.Peers(party.ID(selfID)),
				CreateSession: create,
			})
			if err != nil {
				return err
			}

			if group.KeyPackage, err = result.KeyPackage.Encode(); err != nil {
				return err
			}
			if group.PublicKeyPackage, err = result.PublicKeyPackage.Encode(); err != nil {
				return err
			}
			group.Suite = suite.Name()
			group.Identifier = selfID
			group.ServerURL = serverURL
			if err := config.Save(configPath, doc); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "key generation complete; group stored")
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "frost.cfg", "path to the config document")
	cmd.Flags().StringVar(&identityName, "identity", "", "identity name")
	cmd.Flags().StringVar(&groupName, "group", "", "group name (members must already be configured)")
	cmd.Flags().StringVar(&suiteName, "suite", frost.Ed25519Suite{}.Name(), "ciphersuite context string")
	cmd.Flags().Uint16Var(&selfID, "identifier", 0, "own participant identifier")
	cmd.Flags().Uint16VarP(&threshold, "threshold", "t", 2, "minimum number of signers")
	cmd.Flags().StringVar(&serverURL, "server-url", "", "rendezvous server URL")
	cmd.Flags().BoolVar(&create, "create-session", false, "open the rendezvous session (one participant only)")
	return cmd
}

func part1Cmd() *cobra.Command {
	var (
		suiteName  string
		selfID     uint16
		threshold  uint16
		maxSigners uint16
		secretOut  string
	)
	cmd := &cobra.Command{
		Use:   "part-1",
		Short: "deal a polynomial; prints the broadcast package",
		RunE: func(cmd *cobra.Command, args []string) error {
			suite, err := frost.SuiteByName(suiteName)
			if err != nil {
				return err
			}
			secret, public, err := dkg.Part1(suite, party.ID(selfID), threshold, maxSigners)
			if err != nil {
				return err
			}
			encodedSecret, err := secret.Encode()
			if err != nil {
				return err
			}
			if err := os.WriteFile(secretOut, []byte(hex.EncodeToString(encodedSecret)), 0o600); err != nil {
				return err
			}
			encodedPublic, err := public.Encode(suite)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(encodedPublic))
			return nil
		},
	}
	cmd.Flags().StringVar(&suiteName, "suite", frost.Ed25519Suite{}.Name(), "ciphersuite context string")
	cmd.Flags().Uint16Var(&selfID, "identifier", 0, "own participant identifier")
	cmd.Flags().Uint16VarP(&threshold, "threshold", "t", 2, "minimum number of signers")
	cmd.Flags().Uint16VarP(&maxSigners, "max-signers", "n", 3, "number of participants")
	cmd.Flags().StringVar(&secretOut, "secret-out", "dkg-round1.secret", "file for the round 1 secret state")
	return cmd
}

func part2Cmd() *cobra.Command {
	var (
		suiteName string
		secretIn  string
		secretOut string
		packages  []string
	)
	cmd := &cobra.Command{
		Use:   "part-2",
		Short: "verify broadcasts and deal shares; prints one share package per peer",
		RunE: func(cmd *cobra.Command, args []string) error {
			suite, err := frost.SuiteByName(suiteName)
			if err != nil {
				return err
			}
			secret, err := readSecret1(suite, secretIn)
			if err != nil {
				return err
			}
			round1, err := parsePackages(packages, func(data []byte) (interface{}, error) {
				return dkg.DecodeRound1Package(suite, data)
			})
			if err != nil {
				return err
			}
			round1Typed := make(map[party.ID]*dkg.Round1Package, len(round1))
			for id, pkg := range round1 {
				round1Typed[id] = pkg.(*dkg.Round1Package)
			}
			round2Secret, shares, err := dkg.Part2(secret, round1Typed)
			if err != nil {
				return err
			}
			encodedSecret, err := round2Secret.Encode()
			if err != nil {
				return err
			}
			if err := os.WriteFile(secretOut, []byte(hex.EncodeToString(encodedSecret)), 0o600); err != nil {
				return err
			}
			for id, pkg := range shares {
				encoded, err := pkg.Encode(suite)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s:%s\n", id, hex.EncodeToString(encoded))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&suiteName, "suite", frost.Ed25519Suite{}.Name(), "ciphersuite context string")
	cmd.Flags().StringVar(&secretIn, "secret-in", "dkg-round1.secret", "round 1 secret state")
	cmd.Flags().StringVar(&secretOut, "secret-out", "dkg-round2.secret", "file for the round 2 secret state")
	cmd.Flags().StringArrayVar(&packages, "package", nil, "id:hex round 1 package, repeated per peer")
	return cmd
}

func part3Cmd() *cobra.Command {
	var (
		suiteName      string
		secretIn       string
		round1Packages []string
		round2Packages []string
		keyOut         string
		publicOut      string
	)
	cmd := &cobra.Command{
		Use:   "part-3",
		Short: "verify shares and derive the key material",
		RunE: func(cmd *cobra.Command, args []string) error {
			suite, err := frost.SuiteByName(suiteName)
			if err != nil {
				return err
			}
			secret, err := readSecret2(suite, secretIn)
			if err != nil {
				return err
			}
			round1, err := parsePackages(round1Packages, func(data []byte) (interface{}, error) {
				return dkg.DecodeRound1Package(suite, data)
			})
			if err != nil {
				return err
			}
			round2, err := parsePackages(round2Packages, func(data []byte) (interface{}, error) {
				return dkg.DecodeRound2Package(suite, data)
			})
			if err != nil {
				return err
			}
			round1Typed := make(map[party.ID]*dkg.Round1Package, len(round1))
			for id, pkg := range round1 {
				round1Typed[id] = pkg.(*dkg.Round1Package)
			}
			round2Typed := make(map[party.ID]*dkg.Round2Package, len(round2))
			for id, pkg := range round2 {
				round2Typed[id] = pkg.(*dkg.Round2Package)
			}
			keyPackage, publicKeyPackage, err := dkg.Part3(secret, round1Typed, round2Typed)
			if err != nil {
				return err
			}
			encodedKey, err := keyPackage.Encode()
			if err != nil {
				return err
			}
			if err := os.WriteFile(keyOut, []byte(hex.EncodeToString(encodedKey)), 0o600); err != nil {
				return err
			}
			encodedPublic, err := publicKeyPackage.Encode()
			if err != nil {
				return err
			}
			return os.WriteFile(publicOut, []byte(hex.EncodeToString(encodedPublic)), 0o644)
		},
	}
	cmd.Flags().StringVar(&suiteName, "suite", frost.Ed25519Suite{}.Name(), "ciphersuite context string")
	cmd.Flags().StringVar(&secretIn, "secret-in", "dkg-round2.secret", "round 2 secret state")
	cmd.Flags().StringArrayVar(&round1Packages, "round1-package", nil, "id:hex round 1 package, repeated per peer")
	cmd.Flags().StringArrayVar(&round2Packages, "round2-package", nil, "id:hex round 2 package, repeated per peer")
	cmd.Flags().StringVar(&keyOut, "key-out", "key-package.hex", "file for the private key package")
	cmd.Flags().StringVar(&publicOut, "public-out", "public-key-package.hex", "file for the public key package")
	return cmd
}

func parsePackages(specs []string, decode func([]byte) (interface{}, error)) (map[party.ID]interface{}, error) {
	out := make(map[party.ID]interface{}, len(specs))
	for _, spec := range specs {
		idStr, hexStr, ok := strings.Cut(spec, ":")
		if !ok {
			return nil, fmt.Errorf("package %q: want id:hex", spec)
		}
		id, err := party.FromString(idStr)
		if err != nil {
			return nil, err
		}
		data, err := hex.DecodeString(strings.TrimSpace(hexStr))
		if err != nil {
			return nil, err
		}
		pkg, err := decode(data)
		if err != nil {
			return nil, err
		}
		out[id] = pkg
	}
	return out, nil
}

func readSecret1(suite frost.Suite, path string) (*dkg.Round1SecretPackage, error) {
	data, err := readHexFile(path)
	if err != nil {
		return nil, err
	}
	return dkg.DecodeRound1SecretPackage(suite, data)
}

func readSecret2(suite frost.Suite, path string) (*dkg.Round2SecretPackage, error) {
	data, err := readHexFile(path)
	if err != nil {
		return nil, err
	}
	return dkg.DecodeRound2SecretPackage(suite, data)
}

func readHexFile(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return hex.DecodeString(strings.TrimSpace(string(raw)))
}
