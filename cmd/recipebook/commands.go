package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tbourn/go-recipe-book/internal/repository"
	"github.com/tbourn/go-recipe-book/internal/services"
	"github.com/tbourn/go-recipe-book/internal/store"
	"github.com/tbourn/go-recipe-book/internal/utils"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := openDB(cfg.DBPath); err != nil {
			return err
		}
		log.Info().Str("db", cfg.DBPath).Msg("schema up to date")
		return nil
	},
}

var shareCmd = &cobra.Command{
	Use:   "share <recipe-id>",
	Short: "Print a recipe as share text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := utils.ParseID(args[0])
		if err != nil {
			return err
		}
		db, err := openDB(cfg.DBPath)
		if err != nil {
			return err
		}
		details := services.NewDetailsController(repository.NewRecipeRepository(store.NewRecipes(db)), nil)
		text, err := details.Share(cmd.Context(), id)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
		return err
	},
}
