// cmd/client/cmd/product/create.go
package product

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"marketsync/internal/domain/catalog"
)

var (
	createName        string
	createDescription string
	createCategoryID  string
	createPrice       int64
	createQuantity    int
	createBarcode     string
)

var CreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Создать товар",
	Long: `Создание товара в локальном каталоге.

Цена задается в минимальных денежных единицах (копейках).`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		if createName == "" {
			return fmt.Errorf("имя товара обязательно (--name)")
		}
		if createPrice < 0 {
			return fmt.Errorf("цена не может быть отрицательной")
		}

		p := &catalog.Product{
			Name:        createName,
			Description: createDescription,
			CategoryID:  createCategoryID,
			Price:       createPrice,
			Quantity:    createQuantity,
			Barcode:     createBarcode,
		}

		if err := app.CreateProduct(p); err != nil {
			return fmt.Errorf("ошибка создания товара: %w", err)
		}

		color.Green("Товар создан: %s", p.ID)
		fmt.Println("Изменение будет отправлено при ближайшей синхронизации")
		return nil
	},
}

func init() {
	CreateCmd.Flags().StringVarP(&createName, "name", "n", "", "название товара")
	CreateCmd.Flags().StringVarP(&createDescription, "description", "d", "", "описание")
	CreateCmd.Flags().StringVarP(&createCategoryID, "category", "c", "", "идентификатор категории")
	CreateCmd.Flags().Int64VarP(&createPrice, "price", "p", 0, "цена в копейках")
	CreateCmd.Flags().IntVarP(&createQuantity, "quantity", "q", 0, "количество на складе")
	CreateCmd.Flags().StringVarP(&createBarcode, "barcode", "b", "", "штрихкод")
}
