package category

import (
	"fmt"

	"github.com/spf13/cobra"

	"marketsync/cmd/client/cmd/types"
	"marketsync/internal/app/client"
)

var CategoryCmd = &cobra.Command{
	Use:   "category",
	Short: "Работа с категориями",
	Long:  `Создание, просмотр и удаление категорий локального каталога.`,
}

func appFrom(cmd *cobra.Command) (*client.App, error) {
	app, _ := cmd.Context().Value(types.ClientAppKey).(*client.App)
	if app == nil {
		return nil, fmt.Errorf("приложение не инициализировано")
	}
	return app, nil
}
