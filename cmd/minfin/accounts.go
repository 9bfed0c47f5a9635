package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rodsouza/minhasfinancas/internal/model"
)

func accountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage bank accounts",
	}

	addCmd := &cobra.Command{
		Use:   "add DESCRIPTION",
		Short: "Register a bank account",
		Args:  cobra.ExactArgs(1),
		RunE:  runAccountsAdd,
	}
	addCmd.Flags().String("type", "checking", "account type (checking, savings, salary, investment)")
	addCmd.Flags().Float64("balance", 0, "opening balance")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List bank accounts",
		RunE:  runAccountsList,
	}

	cmd.AddCommand(addCmd)
	cmd.AddCommand(listCmd)
	return cmd
}

func runAccountsAdd(cmd *cobra.Command, args []string) error {
	userID, err := resolveUserID()
	if err != nil {
		return err
	}

	accountType, _ := cmd.Flags().GetString("type")
	balance, _ := cmd.Flags().GetFloat64("balance")

	store, err := openStorage()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	account := &model.Account{
		Description: args[0],
		Type:        model.AccountType(accountType),
		Balance:     balance,
		Active:      true,
		UserID:      userID,
	}
	if err := store.CreateAccount(cmd.Context(), account); err != nil {
		return err
	}

	fmt.Printf("created account %d (%s)\n", account.ID, account.Description)
	return nil
}

func runAccountsList(cmd *cobra.Command, _ []string) error {
	userID, err := resolveUserID()
	if err != nil {
		return err
	}

	store, err := openStorage()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	accounts, err := store.ListAccounts(cmd.Context(), userID)
	if err != nil {
		return err
	}

	for _, account := range accounts {
		fmt.Printf("%d  %-30s %-12s %12.2f\n",
			account.ID, account.Description, account.Type, account.Balance)
	}
	return nil
}
