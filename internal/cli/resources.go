package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
)

func runAccounts(ctx context.Context, a *App, args []string) error {
	if err := expectArgs(args, 1, "accounts list"); err != nil || args[0] != "list" {
		return usageError("expected: accounts list")
	}
	client, err := a.client()
	if err != nil {
		return err
	}
	accounts, err := client.BusinessAccounts().List(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPHONE\tSTATUS\tQUALITY")
	for _, acct := range accounts.Data {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", acct.ID, acct.BusinessName, acct.PhoneNumber, acct.Status, acct.QualityRating)
	}
	return tw.Flush()
}

func runWebhooks(ctx context.Context, a *App, args []string) error {
	if err := expectArgs(args, 1, "webhooks list"); err != nil || args[0] != "list" {
		return usageError("expected: webhooks list")
	}
	client, err := a.client()
	if err != nil {
		return err
	}
	webhooks, err := client.Webhooks().List(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tURL\tACTIVE\tEVENTS")
	for _, w := range webhooks.Data {
		fmt.Fprintf(tw, "%s\t%s\t%t\t%s\n", w.ID, w.URL, w.IsActive(), strings.Join(w.Events, ","))
	}
	return tw.Flush()
}

func runUsage(ctx context.Context, a *App, args []string) error {
	if err := expectArgs(args, 0, "usage"); err != nil {
		return err
	}
	client, err := a.client()
	if err != nil {
		return err
	}
	usage, err := client.Usage().Fetch(ctx)
	if err != nil {
		return err
	}
	return a.printJSON(usage)
}
