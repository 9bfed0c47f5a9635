package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rodsouza/minhasfinancas/internal/cli"
	"github.com/rodsouza/minhasfinancas/internal/model"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage the chart of accounts",
	}

	addCmd := &cobra.Command{
		Use:   "add DESCRIPTION",
		Short: "Create a category",
		Args:  cobra.ExactArgs(1),
		RunE:  runCategoriesAdd,
	}
	addCmd.Flags().String("kind", "expense", "category kind (income, expense)")
	addCmd.Flags().Int64("parent", 0, "parent category id")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List categories as a tree",
		RunE:  runCategoriesList,
	}

	cmd.AddCommand(addCmd)
	cmd.AddCommand(listCmd)
	return cmd
}

func runCategoriesAdd(cmd *cobra.Command, args []string) error {
	userID, err := resolveUserID()
	if err != nil {
		return err
	}

	kind, _ := cmd.Flags().GetString("kind")
	parent, _ := cmd.Flags().GetInt64("parent")

	store, err := openStorage()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	category := &model.Category{
		Description: args[0],
		Kind:        model.CategoryKind(kind),
		ParentID:    parent,
		UserID:      userID,
	}
	if err := store.CreateCategory(cmd.Context(), category); err != nil {
		return err
	}

	fmt.Printf("created category %d (%s)\n", category.ID, category.Description)
	return nil
}

func runCategoriesList(cmd *cobra.Command, _ []string) error {
	userID, err := resolveUserID()
	if err != nil {
		return err
	}

	store, err := openStorage()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	categories, err := store.ListCategories(cmd.Context(), userID)
	if err != nil {
		return err
	}

	fmt.Print(cli.RenderCategoryTree(categories))
	return nil
}
