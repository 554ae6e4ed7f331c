package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/ernest-money/ernest-oracle/internal/config"
	"github.com/ernest-money/ernest-oracle/internal/database"
	"github.com/ernest-money/ernest-oracle/internal/feeds"
	"github.com/ernest-money/ernest-oracle/internal/models"
	"github.com/ernest-money/ernest-oracle/internal/oracle"
	"github.com/ernest-money/ernest-oracle/internal/repository"
)

func main() {
	root := &cobra.Command{
		Use:          "oracle-admin",
		Short:        "CLI for the Ernest DLC oracle",
		SilenceUsage: true,
	}

	root.AddCommand(migrateCmd())
	root.AddCommand(eventsCmd())
	root.AddCommand(createEventCmd())
	root.AddCommand(signEventCmd())
	root.AddCommand(outcomeCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func setup() (*config.Config, *oracle.Oracle, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if err := database.Connect(cfg.GetDSN()); err != nil {
		return nil, nil, err
	}
	signer, err := oracle.NewSigner(cfg.Oracle.SecretKey)
	if err != nil {
		return nil, nil, err
	}
	repo, err := repository.New(database.GetDB())
	if err != nil {
		return nil, nil, err
	}
	return cfg, oracle.New(repo, signer, cfg.Oracle.Name, cfg.Oracle.DigitBase, cfg.Oracle.NbDigits), nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := database.Connect(cfg.GetDSN()); err != nil {
				return err
			}
			return database.AutoMigrate()
		},
	}
}

func eventsCmd() *cobra.Command {
	var eventID string
	var eventType string

	cmd := &cobra.Command{
		Use:   "events",
		Short: "List oracle events",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, oracleService, err := setup()
			if err != nil {
				return err
			}
			ctx := context.Background()

			if eventID != "" {
				event, err := oracleService.GetEvent(ctx, eventID)
				if err != nil {
					return err
				}
				return printJSON(event)
			}

			var events []*models.Event
			if eventType != "" {
				events, err = oracleService.ListEventsByType(ctx, eventType)
			} else {
				events, err = oracleService.ListEvents(ctx)
			}
			if err != nil {
				return err
			}
			return printJSON(events)
		},
	}

	cmd.Flags().StringVar(&eventID, "id", "", "show a single event")
	cmd.Flags().StringVar(&eventType, "event-type", "", "filter by contract category (e.g. parlay)")
	return cmd
}

func createEventCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "create-event",
		Short: "Create and announce a parlay event from a JSON definition",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			var req models.CreateEventRequest
			if err := json.Unmarshal(raw, &req); err != nil {
				return fmt.Errorf("invalid event definition: %w", err)
			}

			_, oracleService, err := setup()
			if err != nil {
				return err
			}
			ctx := context.Background()

			event, err := oracleService.CreateParlayEvent(ctx, &req)
			if err != nil {
				return err
			}
			if _, err := oracleService.AnnounceEvent(ctx, event.EventID); err != nil {
				return err
			}
			announcement, err := oracleService.GetAnnouncement(ctx, event.EventID)
			if err != nil {
				return err
			}
			return printJSON(announcement)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "path to the event definition JSON")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func signEventCmd() *cobra.Command {
	var value int64
	var manual bool

	cmd := &cobra.Command{
		Use:   "sign-event <event-id>",
		Short: "Attest an announced event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, oracleService, err := setup()
			if err != nil {
				return err
			}
			ctx := context.Background()
			eventID := args[0]

			if manual {
				log.Printf("Signing event with manual outcome. event_id=%s outcome=%d", eventID, value)
				attestation, err := oracleService.AttestEvent(ctx, eventID, value)
				if err != nil {
					return err
				}
				return printJSON(attestation)
			}

			feedClient := feeds.NewClient(cfg.Mempool.BaseURL)
			if err := oracleService.AttestMaturedEvent(ctx, eventID, feedClient); err != nil {
				return err
			}
			attestation, err := oracleService.GetAttestation(ctx, eventID)
			if err != nil {
				return err
			}
			return printJSON(attestation)
		},
	}

	cmd.Flags().Int64Var(&value, "value", 0, "outcome value to sign when --manual is set")
	cmd.Flags().BoolVar(&manual, "manual", false, "sign the given --value instead of fetching feeds")
	return cmd
}

func outcomeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "outcome <event-id>",
		Short: "Show the attestation outcome for an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, oracleService, err := setup()
			if err != nil {
				return err
			}
			outcome, err := oracleService.GetOutcome(context.Background(), args[0])
			if err != nil {
				return err
			}
			return printJSON(outcome)
		},
	}
}

func printJSON(v interface{}) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(raw))
	return nil
}
