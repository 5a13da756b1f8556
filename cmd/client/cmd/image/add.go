// cmd/client/cmd/image/add.go
package image

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"marketsync/internal/domain/catalog"
)

var (
	addProductID string
	addURL       string
	addPosition  int
)

var AddCmd = &cobra.Command{
	Use:   "add",
	Short: "Привязать изображение к товару",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		if addProductID == "" || addURL == "" {
			return fmt.Errorf("обязательны флаги --product и --url")
		}

		// Товар должен существовать локально
		if _, err := app.GetProduct(addProductID); err != nil {
			return err
		}

		img := &catalog.Image{
			ProductID: addProductID,
			URL:       addURL,
			Position:  addPosition,
		}

		if err := app.AddImage(img); err != nil {
			return fmt.Errorf("ошибка добавления изображения: %w", err)
		}

		color.Green("Изображение добавлено: %s", img.ID)
		return nil
	},
}

func init() {
	AddCmd.Flags().StringVarP(&addProductID, "product", "p", "", "идентификатор товара")
	AddCmd.Flags().StringVarP(&addURL, "url", "u", "", "адрес изображения")
	AddCmd.Flags().IntVar(&addPosition, "position", 0, "позиция в галерее")
}
