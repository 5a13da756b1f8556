// cmd/client/cmd/image/list.go
package image

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var ListCmd = &cobra.Command{
	Use:   "list [product-id]",
	Short: "Список изображений товара",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		images, err := app.ListImages(args[0])
		if err != nil {
			return fmt.Errorf("ошибка получения списка изображений: %w", err)
		}

		if len(images) == 0 {
			fmt.Println("Изображения не найдены")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tПОЗИЦИЯ\tURL")
		for _, img := range images {
			fmt.Fprintf(w, "%s\t%d\t%s\n", img.ID, img.Position, img.URL)
		}
		return w.Flush()
	},
}
