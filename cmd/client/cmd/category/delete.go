// cmd/client/cmd/category/delete.go
package category

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var DeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Удалить категорию",
	Long:  `Помечает категорию удаленной. Товары категории остаются на месте.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		if err := app.DeleteCategory(args[0]); err != nil {
			return fmt.Errorf("ошибка удаления категории: %w", err)
		}

		color.Green("Категория удалена: %s", args[0])
		return nil
	},
}
