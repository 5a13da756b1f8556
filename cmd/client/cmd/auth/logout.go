// cmd/client/cmd/auth/logout.go
package auth

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var LogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Выйти из системы",
	Long:  `Удаляет сохраненный токен сессии с устройства. Локальный каталог и журнал правок остаются.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		if err := app.Logout(); err != nil {
			return fmt.Errorf("ошибка выхода: %w", err)
		}

		color.Green("Выход выполнен")
		return nil
	},
}
