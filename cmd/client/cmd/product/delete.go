// cmd/client/cmd/product/delete.go
package product

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var DeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Удалить товар",
	Long: `Помечает товар удаленным в локальном каталоге.

Товар остается в базе, но исчезает из списков. Удаление разойдется на
остальные устройства при синхронизации.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		if err := app.DeleteProduct(args[0]); err != nil {
			return fmt.Errorf("ошибка удаления товара: %w", err)
		}

		color.Green("Товар удален: %s", args[0])
		return nil
	},
}
