package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rodsouza/minhasfinancas/internal/model"
)

func personsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "persons",
		Short: "Manage persons (payees/payers)",
	}

	addCmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Register a person",
		Args:  cobra.ExactArgs(1),
		RunE:  runPersonsAdd,
	}

	cmd.AddCommand(addCmd)
	return cmd
}

func runPersonsAdd(cmd *cobra.Command, args []string) error {
	userID, err := resolveUserID()
	if err != nil {
		return err
	}

	store, err := openStorage()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	person := &model.Person{
		Name:   args[0],
		UserID: userID,
	}
	if err := store.CreatePerson(cmd.Context(), person); err != nil {
		return err
	}

	fmt.Printf("created person %d (%s)\n", person.ID, person.Name)
	return nil
}
