package product

import (
	"fmt"

	"github.com/spf13/cobra"

	"marketsync/cmd/client/cmd/types"
	"marketsync/internal/app/client"
)

var ProductCmd = &cobra.Command{
	Use:   "product",
	Short: "Работа с товарами",
	Long: `Создание, просмотр и правка товаров в локальном каталоге.

Все изменения сохраняются локально и попадают на сервер при ближайшей
синхронизации.`,
}

func appFrom(cmd *cobra.Command) (*client.App, error) {
	app, _ := cmd.Context().Value(types.ClientAppKey).(*client.App)
	if app == nil {
		return nil, fmt.Errorf("приложение не инициализировано")
	}
	return app, nil
}
