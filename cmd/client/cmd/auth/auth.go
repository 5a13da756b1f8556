package auth

import (
	"fmt"

	"github.com/spf13/cobra"

	"marketsync/cmd/client/cmd/types"
	"marketsync/internal/app/client"
)

var AuthCmd = &cobra.Command{
	Use:   "auth",
	Short: "Управление аутентификацией",
	Long:  `Регистрация, вход и выход из учетной записи продавца.`,
}

func appFrom(cmd *cobra.Command) (*client.App, error) {
	app, _ := cmd.Context().Value(types.ClientAppKey).(*client.App)
	if app == nil {
		return nil, fmt.Errorf("приложение не инициализировано")
	}
	return app, nil
}
