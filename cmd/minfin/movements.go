package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func movementsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "movements",
		Short: "Inspect the bank-movement ledger",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List an account's ledger entries, newest first",
		RunE:  runMovementsList,
	}
	listCmd.Flags().Int64("account", 0, "bank account id")
	_ = listCmd.MarkFlagRequired("account")

	cmd.AddCommand(listCmd)
	return cmd
}

func runMovementsList(cmd *cobra.Command, _ []string) error {
	userID, err := resolveUserID()
	if err != nil {
		return err
	}
	accountID, _ := cmd.Flags().GetInt64("account")

	store, err := openStorage()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	movements, err := store.ListMovements(cmd.Context(), accountID, userID)
	if err != nil {
		return err
	}

	for _, movement := range movements {
		fmt.Printf("%d  %s  %-6s %12.2f  %s\n",
			movement.ID,
			movement.Date.Format("2006-01-02"),
			movement.Direction,
			movement.Amount,
			movement.Memo)
	}
	return nil
}
