// cmd/client/cmd/image/remove.go
package image

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var RemoveCmd = &cobra.Command{
	Use:   "remove [id]",
	Short: "Удалить изображение",
	Long: `Удаляет изображение безвозвратно: и локально, и на сервере после
синхронизации.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		if err := app.DeleteImage(args[0]); err != nil {
			return fmt.Errorf("ошибка удаления изображения: %w", err)
		}

		color.Green("Изображение удалено: %s", args[0])
		return nil
	},
}
