// cmd/client/cmd/product/update.go
package product

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	updateName        string
	updateDescription string
	updateCategoryID  string
	updatePrice       int64
	updateQuantity    int
	updateBarcode     string
)

var UpdateCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Изменить товар",
	Long: `Частичное обновление товара: меняются только поля, заданные флагами.

Изменение попадет на сервер при ближайшей синхронизации. Если товар
параллельно правили с другого устройства, сервер зафиксирует конфликт.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		patch := map[string]any{}
		if cmd.Flags().Changed("name") {
			patch["name"] = updateName
		}
		if cmd.Flags().Changed("description") {
			patch["description"] = updateDescription
		}
		if cmd.Flags().Changed("category") {
			patch["category_id"] = updateCategoryID
		}
		if cmd.Flags().Changed("price") {
			patch["price"] = updatePrice
		}
		if cmd.Flags().Changed("quantity") {
			patch["quantity"] = updateQuantity
		}
		if cmd.Flags().Changed("barcode") {
			patch["barcode"] = updateBarcode
		}

		if len(patch) == 0 {
			return fmt.Errorf("не задано ни одного изменения")
		}

		if err := app.UpdateProduct(args[0], patch); err != nil {
			return fmt.Errorf("ошибка обновления товара: %w", err)
		}

		color.Green("Товар обновлен: %s", args[0])
		return nil
	},
}

func init() {
	UpdateCmd.Flags().StringVarP(&updateName, "name", "n", "", "название товара")
	UpdateCmd.Flags().StringVarP(&updateDescription, "description", "d", "", "описание")
	UpdateCmd.Flags().StringVarP(&updateCategoryID, "category", "c", "", "идентификатор категории")
	UpdateCmd.Flags().Int64VarP(&updatePrice, "price", "p", 0, "цена в копейках")
	UpdateCmd.Flags().IntVarP(&updateQuantity, "quantity", "q", 0, "количество на складе")
	UpdateCmd.Flags().StringVarP(&updateBarcode, "barcode", "b", "", "штрихкод")
}
