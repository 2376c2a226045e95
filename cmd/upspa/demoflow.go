package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/upspa/upspa-go"
)

var (
	demoUid         string
	demoLsj         string
	demoPassword    string
	demoNewPassword string
	demoNsp         int
	demoTsp         int
)

// demoTimestamp is the fixed demo timestamp used by password-update, taken
// verbatim from the original reference driver.
const demoTimestamp uint64 = 1_700_000_000

var demoFlowCmd = &cobra.Command{
	Use:   "demo-flow",
	Short: "Run setup -> OPRF -> register -> authenticate -> secret-update -> password-update end to end",
	RunE:  runDemoFlow,
}

func init() {
	rootCmd.AddCommand(demoFlowCmd)

	demoFlowCmd.Flags().StringVar(&demoUid, "uid", "", "user identifier")
	demoFlowCmd.Flags().StringVar(&demoLsj, "lsj", "", "login service identifier")
	demoFlowCmd.Flags().StringVar(&demoPassword, "password", "", "current password")
	demoFlowCmd.Flags().StringVar(&demoNewPassword, "new-password", "", "new password for password-update")
	demoFlowCmd.Flags().IntVar(&demoNsp, "nsp", 5, "total number of service providers")
	demoFlowCmd.Flags().IntVar(&demoTsp, "tsp", 3, "reconstruction threshold")
}

func runDemoFlow(cmd *cobra.Command, args []string) error {
	var seed [32]byte
	for i := range seed {
		seed[i] = 0x07
	}
	rng := upspa.DeterministicRNG(seed)

	uid := []byte(demoUid)
	lsj := []byte(demoLsj)
	password := []byte(demoPassword)

	setupOut, _, err := upspa.Setup(uid, password, demoNsp, demoTsp, rng)
	if err != nil {
		return err
	}

	client := upspa.ToprfClient{}
	state, blinded, err := client.Begin(password, rng)
	if err != nil {
		return err
	}

	partials := make([]upspa.ToprfPartial, 0, demoTsp)
	for _, sh := range setupOut.Shares[:demoTsp] {
		y, err := upspa.ToprfServerEval(blinded, sh.Value)
		if err != nil {
			return fmt.Errorf("toprf server eval: %w", err)
		}
		partials = append(partials, upspa.ToprfPartial{ID: sh.ID, Y: y})
	}

	stateKey, err := client.Finish(password, state, partials)
	if err != nil {
		return err
	}

	reg, err := upspa.Register(uid, lsj, stateKey, setupOut.Cid, demoNsp, rng)
	if err != nil {
		return err
	}

	authQ, err := upspa.AuthPrepare(uid, lsj, stateKey, setupOut.Cid, demoNsp)
	if err != nil {
		return err
	}

	cjs := make([]upspa.CipherSP, 0, demoTsp)
	for _, m := range reg.PerSp[:demoTsp] {
		cjs = append(cjs, m.Cj)
	}
	authRes, err := upspa.AuthFinish(uid, lsj, authQ.K0, cjs)
	if err != nil {
		return err
	}

	suQ, err := upspa.SecretUpdatePrepare(uid, lsj, stateKey, setupOut.Cid, demoNsp)
	if err != nil {
		return err
	}
	suRes, err := upspa.SecretUpdateFinish(uid, lsj, suQ.K0, cjs, rng)
	if err != nil {
		return err
	}

	pwRes, err := upspa.PasswordUpdate(uid, stateKey, setupOut.Cid, demoNsp, demoTsp, []byte(demoNewPassword), demoTimestamp, rng)
	if err != nil {
		return err
	}

	result := struct {
		Setup          upspa.SetupOutput          `json:"setup"`
		Registration   upspa.RegistrationOutput   `json:"registration"`
		Authentication upspa.AuthResult           `json:"authentication"`
		SecretUpdate   upspa.SecretUpdateOutput   `json:"secret_update"`
		PasswordUpdate upspa.PasswordUpdateOutput `json:"password_update"`
	}{
		Setup:          setupOut,
		Registration:   reg,
		Authentication: authRes,
		SecretUpdate:   suRes,
		PasswordUpdate: pwRes,
	}

	enc, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(enc))
	return nil
}
