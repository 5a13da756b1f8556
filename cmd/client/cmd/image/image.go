package image

import (
	"fmt"

	"github.com/spf13/cobra"

	"marketsync/cmd/client/cmd/types"
	"marketsync/internal/app/client"
)

var ImageCmd = &cobra.Command{
	Use:   "image",
	Short: "Работа с изображениями товаров",
	Long: `Привязка и удаление изображений товаров.

В отличие от товаров и категорий изображения удаляются безвозвратно.`,
}

func appFrom(cmd *cobra.Command) (*client.App, error) {
	app, _ := cmd.Context().Value(types.ClientAppKey).(*client.App)
	if app == nil {
		return nil, fmt.Errorf("приложение не инициализировано")
	}
	return app, nil
}
