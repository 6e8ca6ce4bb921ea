package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"pagos-service/internal/application/query"

	"github.com/spf13/cobra"
)

func pendingCmd(open openStore) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pending",
		Short: "List payments recorded locally but never confirmed by the gateway",
		Long: `List preliminary payments whose gateway charge was declined or never
completed. These records are left in place by the payment flow and need
manual reconciliation against the gateway dashboard.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			olderThan, _ := cmd.Flags().GetDuration("older-than")
			asJSON, _ := cmd.Flags().GetBool("json")

			_, payments, closeFn, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			views, err := query.NewListPendingPaymentsHandler(payments).
				Handle(cmd.Context(), &query.ListPendingPaymentsQuery{OlderThan: olderThan})
			if err != nil {
				return err
			}
			return writePending(cmd.OutOrStdout(), views, asJSON)
		},
	}

	cmd.Flags().Duration("older-than", 15*time.Minute, "Only report payments made at least this long ago")
	cmd.Flags().BoolP("json", "j", false, "Output as JSON")

	return cmd
}

func checkDefaultsCmd(open openStore) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check-defaults",
		Short: "Report owners holding more than one default payment method",
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")

			methods, _, closeFn, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			conflicts, err := query.NewFindDefaultConflictsHandler(methods).Handle(cmd.Context())
			if err != nil {
				return err
			}
			if err := writeConflicts(cmd.OutOrStdout(), conflicts, asJSON); err != nil {
				return err
			}
			if len(conflicts) > 0 {
				return fmt.Errorf("%d owner(s) with more than one default payment method", len(conflicts))
			}
			return nil
		},
	}

	cmd.Flags().BoolP("json", "j", false, "Output as JSON")

	return cmd
}

func writePending(w io.Writer, views []*query.PaymentView, asJSON bool) error {
	if asJSON {
		return writeJSON(w, views)
	}
	if len(views) == 0 {
		_, err := fmt.Fprintln(w, "No pending payments.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PAYMENT\tOWNER\tMETHOD\tRESERVATION\tAMOUNT\tPAID AT")
	for _, v := range views {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			v.ID, v.OwnerID, v.PaymentMethodID, v.ReservationID, v.Amount.StringFixed(2), v.PaidAt.Format(time.RFC3339))
	}
	return tw.Flush()
}

func writeConflicts(w io.Writer, conflicts []query.DefaultConflict, asJSON bool) error {
	if asJSON {
		return writeJSON(w, conflicts)
	}
	if len(conflicts) == 0 {
		_, err := fmt.Fprintln(w, "Every owner has at most one default payment method.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "OWNER\tDEFAULT METHODS")
	for _, c := range conflicts {
		fmt.Fprintf(tw, "%s\t%s\n", c.OwnerID, strings.Join(c.PaymentMethodIDs, ","))
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
