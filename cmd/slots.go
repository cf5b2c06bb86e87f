package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/consultcal/internal/booking"
	"github.com/teemow/consultcal/internal/instrumentation"
	"github.com/teemow/consultcal/internal/server"
)

func newSlotsCmd() *cobra.Command {
	var (
		date       string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "slots",
		Short: "Print the free slots for a date",
		Long: `Print the free consultation slots of the calendar for one date,
one "HH:mm" label per line. The date defaults to today in the
configured timezone.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := loadSettings(cmd, configFile)
			if err != nil {
				return err
			}
			logger, err := newLogger(s, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			svc, err := newBookingService(cmd.Context(), s, logger, nil, instrumentation.AuditLoggingConfig{})
			if err != nil {
				return err
			}

			if strings.TrimSpace(date) == "" {
				date = time.Now().In(svc.Config().Location).Format(booking.DateLayout)
			}
			slots, err := svc.AvailableSlots(cmd.Context(), date)
			if err != nil {
				return err
			}
			return printSlots(cmd.OutOrStdout(), date, slots, jsonOutput)
		},
	}

	addCalendarFlags(cmd)
	cmd.Flags().StringVar(&date, "date", "", "Date to query (YYYY-MM-DD). Defaults to today.")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the API response body instead of plain labels")

	return cmd
}

func printSlots(w io.Writer, date string, slots []string, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(server.SlotsResponse{Date: date, Slots: slots})
	}
	if len(slots) == 0 {
		_, err := fmt.Fprintf(w, "no free slots on %s\n", date)
		return err
	}
	for _, slot := range slots {
		if _, err := fmt.Fprintln(w, slot); err != nil {
			return err
		}
	}
	return nil
}
