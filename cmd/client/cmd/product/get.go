// cmd/client/cmd/product/get.go
package product

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var getFormat string

var GetCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Просмотреть товар",
	Long:  `Просмотр товара локального каталога по идентификатору.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		p, err := app.GetProduct(args[0])
		if err != nil {
			return fmt.Errorf("ошибка получения товара: %w", err)
		}

		if getFormat == "json" {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(p)
		}

		fmt.Printf("ID:        %s\n", p.ID)
		fmt.Printf("Название:  %s\n", p.Name)
		if p.Description != "" {
			fmt.Printf("Описание:  %s\n", p.Description)
		}
		fmt.Printf("Цена:      %.2f\n", float64(p.Price)/100)
		fmt.Printf("Кол-во:    %d\n", p.Quantity)
		if p.CategoryID != "" {
			fmt.Printf("Категория: %s\n", p.CategoryID)
		}
		if p.Barcode != "" {
			fmt.Printf("Штрихкод:  %s\n", p.Barcode)
		}
		fmt.Printf("Обновлен:  %s\n", p.UpdatedAt.Format("2006-01-02 15:04:05"))
		if p.Deleted {
			fmt.Println("Статус:    удален")
		}

		images, err := app.ListImages(p.ID)
		if err == nil && len(images) > 0 {
			fmt.Println("Изображения:")
			for _, img := range images {
				fmt.Printf("  %d. %s (%s)\n", img.Position, img.URL, img.ID)
			}
		}

		return nil
	},
}

func init() {
	GetCmd.Flags().StringVarP(&getFormat, "format", "f", "text", "формат вывода (text, json)")
}
