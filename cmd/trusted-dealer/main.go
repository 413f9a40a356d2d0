// Command trusted-dealer generates key material for a signing group from a
// single trusted machine. The dealer sees the joint secret; it is wiped
// after the key packages are written.
package main

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/quorumsig/frost/pkg/frost"
	"github.com/quorumsig/frost/pkg/frost/dealer"
	"github.com/spf13/cobra"
)

// errUsage marks operator misuse, reported with exit code 2 instead of the
// generic failure code 1.
var errUsage = errors.New("usage error")

func main() {
	var (
		suiteName  string
		threshold  uint16
		maxSigners uint16
		outputDir  string
	)

	cmd := &cobra.Command{
		Use:          "trusted-dealer",
		Short:        "generate threshold key material with a trusted dealer",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			suite, err := frost.SuiteByName(suiteName)
			if err != nil {
				return err
			}
			keyPackages, publicKeyPackage, err := dealer.Keygen(suite, threshold, maxSigners, rand.Reader)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(outputDir, 0o700); err != nil {
				return err
			}
			for id, kp := range keyPackages {
				encoded, err := kp.Encode()
				if err != nil {
					return err
				}
				name := filepath.Join(outputDir, fmt.Sprintf("key-package-%s.hex", id))
				if err := os.WriteFile(name, []byte(hex.EncodeToString(encoded)), 0o600); err != nil {
					return err
				}
				kp.Wipe()
			}
			encoded, err := publicKeyPackage.Encode()
			if err != nil {
				return err
			}
			name := filepath.Join(outputDir, "public-key-package.hex")
			if err := os.WriteFile(name, []byte(hex.EncodeToString(encoded)), 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d key packages and the public key package to %s\n",
				len(keyPackages), outputDir)
			return nil
		},
	}
	cmd.Flags().StringVar(&suiteName, "suite", frost.Ed25519Suite{}.Name(), "ciphersuite context string")
	cmd.Flags().Uint16VarP(&threshold, "threshold", "t", 2, "minimum number of signers")
	cmd.Flags().Uint16VarP(&maxSigners, "max-signers", "n", 3, "number of participants")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", ".", "directory for the generated files")
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
