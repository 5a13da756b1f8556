// cmd/client/cmd/category/list.go
package category

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var showDeleted bool

var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "Список категорий",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		categories, err := app.ListCategories(showDeleted)
		if err != nil {
			return fmt.Errorf("ошибка получения списка категорий: %w", err)
		}

		if len(categories) == 0 {
			fmt.Println("Категории не найдены")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tНАЗВАНИЕ\tРОДИТЕЛЬ\tПОРЯДОК\tСТАТУС")
		for _, c := range categories {
			status := "активна"
			if c.Deleted {
				status = "удалена"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", c.ID, c.Name, c.ParentID, c.SortOrder, status)
		}
		return w.Flush()
	},
}

func init() {
	ListCmd.Flags().BoolVar(&showDeleted, "deleted", false, "показывать удаленные категории")
}
