// cmd/client/cmd/category/create.go
package category

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"marketsync/internal/domain/catalog"
)

var (
	createName      string
	createParentID  string
	createSortOrder int
)

var CreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Создать категорию",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		if createName == "" {
			return fmt.Errorf("имя категории обязательно (--name)")
		}

		c := &catalog.Category{
			Name:      createName,
			ParentID:  createParentID,
			SortOrder: createSortOrder,
		}

		if err := app.CreateCategory(c); err != nil {
			return fmt.Errorf("ошибка создания категории: %w", err)
		}

		color.Green("Категория создана: %s", c.ID)
		return nil
	},
}

func init() {
	CreateCmd.Flags().StringVarP(&createName, "name", "n", "", "название категории")
	CreateCmd.Flags().StringVarP(&createParentID, "parent", "p", "", "идентификатор родительской категории")
	CreateCmd.Flags().IntVarP(&createSortOrder, "sort", "s", 0, "порядок сортировки")
}
