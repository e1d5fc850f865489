package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"scoreoracle/internal/config"
	"scoreoracle/internal/domain"
	"scoreoracle/internal/infra/keys/soft"
	"scoreoracle/internal/infra/ledger"
	"scoreoracle/internal/infra/oracle"
	"scoreoracle/internal/infra/scoring"
	"scoreoracle/internal/logsetup"
	"scoreoracle/internal/usecase"
)

func main() {
	cfg := config.FromEnv()
	logsetup.Configure(cfg.LogLevel)

	app := &cli.App{
		Name:  "scoreoracle",
		Usage: "offline oracle attestation tooling",
		Commands: []*cli.Command{
			{
				Name:  "score",
				Usage: "derive features, score a subject, and sign the datum for a transaction hash",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "subject", Required: true, Usage: "subject identifier (wallet address)"},
					&cli.StringFlag{Name: "tx-hash", Required: true, Usage: "transaction hash for signature binding"},
				},
				Action: func(c *cli.Context) error {
					return runScore(cfg, c.String("subject"), c.String("tx-hash"))
				},
			},
			{
				Name:  "lookup",
				Usage: "look up the ledger record for a subject",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "subject", Required: true, Usage: "subject identifier to look up"},
				},
				Action: func(c *cli.Context) error {
					return runLookup(cfg, c.String("subject"))
				},
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runScore(cfg config.Config, subject, txHash string) error {
	model, err := scoring.LoadModel(cfg.ModelDir)
	if err != nil {
		return err
	}
	engine := scoring.NewEngine(model)
	signer := oracle.NewSigner(cfg.OraclePolicyID, soft.NewManager(cfg.KeyDir))

	features := engine.Derive(subject)
	score, err := engine.Score(features)
	if err != nil {
		return err
	}
	pubKey, err := signer.PublicKeyHex()
	if err != nil {
		return err
	}
	datum := domain.ScoreDatum{
		Subject:         subject,
		Score:           score,
		Timestamp:       time.Now().Unix(),
		ModelVersion:    engine.Version(),
		Features:        features,
		OraclePublicKey: pubKey,
	}
	attestation, err := signer.Sign(datum, txHash)
	if err != nil {
		return err
	}
	return printJSON(attestation)
}

func runLookup(cfg config.Config, subject string) error {
	uc := &usecase.LookupScore{Ledger: ledger.NewFileStore(cfg.LedgerDir)}
	record, err := uc.Execute(context.Background(), subject)
	if err != nil {
		return err
	}
	return printJSON(record)
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
