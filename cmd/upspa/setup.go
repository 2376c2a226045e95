package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/upspa/upspa-go"
)

var (
	setupUid      string
	setupPassword string
	setupNsp      int
	setupTsp      int
	setupSeedHex  string
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Run the initial setup flow and print the resulting JSON",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)

	setupCmd.Flags().StringVar(&setupUid, "uid", "", "user identifier")
	setupCmd.Flags().StringVar(&setupPassword, "password", "", "user password")
	setupCmd.Flags().IntVar(&setupNsp, "nsp", 5, "total number of service providers")
	setupCmd.Flags().IntVar(&setupTsp, "tsp", 3, "reconstruction threshold")
	setupCmd.Flags().StringVar(&setupSeedHex, "seed-hex", "", "64 hex-char RNG seed (defaults to a fixed demo seed)")
}

// parseSeed returns the 32-byte RNG seed for --seed-hex, or a fixed demo
// seed (all 0x2a bytes) when the flag is omitted.
func parseSeed(seedHex string) ([32]byte, error) {
	var out [32]byte
	if seedHex == "" {
		for i := range out {
			out[i] = 0x2a
		}
		return out, nil
	}
	b, err := hex.DecodeString(seedHex)
	if err != nil {
		return out, fmt.Errorf("invalid hex seed: %w", err)
	}
	if len(b) != 32 {
		return out, fmt.Errorf("seed-hex must be 32 bytes (64 hex chars)")
	}
	copy(out[:], b)
	return out, nil
}

func runSetup(cmd *cobra.Command, args []string) error {
	seed, err := parseSeed(setupSeedHex)
	if err != nil {
		return err
	}
	rng := upspa.DeterministicRNG(seed)

	out, payloads, err := upspa.Setup([]byte(setupUid), []byte(setupPassword), setupNsp, setupTsp, rng)
	if err != nil {
		return err
	}

	result := struct {
		Setup      upspa.SetupOutput      `json:"setup"`
		SpPayloads []upspa.SetupSpPayload `json:"sp_payloads"`
	}{Setup: out, SpPayloads: payloads}

	enc, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(enc))
	return nil
}
