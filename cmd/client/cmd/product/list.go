// cmd/client/cmd/product/list.go
package product

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"marketsync/internal/app/client"
	"marketsync/internal/domain/catalog"
)

var (
	listCategory string
	listFormat   string
	showDeleted  bool
	limit        int
	offset       int
)

var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "Список товаров",
	Long: `Просмотр товаров локального каталога с фильтрацией по категории.

Поддерживается пагинация через флаги --limit и --offset.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		products, err := app.ListProducts(&client.ProductFilter{
			CategoryID:  listCategory,
			ShowDeleted: showDeleted,
			Limit:       limit,
			Offset:      offset,
		})
		if err != nil {
			return fmt.Errorf("ошибка получения списка товаров: %w", err)
		}

		switch listFormat {
		case "json":
			return printProductsJSON(products)
		default:
			return printProductsTable(products)
		}
	},
}

func printProductsTable(products []*catalog.Product) error {
	if len(products) == 0 {
		fmt.Println("Товары не найдены")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tНАЗВАНИЕ\tЦЕНА\tКОЛ-ВО\tКАТЕГОРИЯ\tСТАТУС")
	for _, p := range products {
		status := "активен"
		if p.Deleted {
			status = "удален"
		}
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%d\t%s\t%s\n",
			p.ID, p.Name, float64(p.Price)/100, p.Quantity, p.CategoryID, status)
	}
	return w.Flush()
}

func printProductsJSON(products []*catalog.Product) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(products)
}

func init() {
	ListCmd.Flags().StringVarP(&listCategory, "category", "c", "", "фильтр по категории")
	ListCmd.Flags().StringVarP(&listFormat, "format", "f", "table", "формат вывода (table, json)")
	ListCmd.Flags().BoolVar(&showDeleted, "deleted", false, "показывать удаленные товары")
	ListCmd.Flags().IntVar(&limit, "limit", 0, "ограничение количества записей")
	ListCmd.Flags().IntVar(&offset, "offset", 0, "смещение")
}
