// cmd/client/cmd/sync/full.go
package sync

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var fullForce bool

var FullCmd = &cobra.Command{
	Use:   "full",
	Short: "Полная загрузка каталога",
	Long: `Заменяет локальную копию каталога полным состоянием сервера.

Используется при первом запуске устройства и при подозрении на
рассинхронизацию. Неотправленные локальные правки сохраняются.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		if !app.IsAuthenticated() {
			return fmt.Errorf("требуется аутентификация. Выполните: marketsync auth login")
		}

		pending, err := app.PendingCount()
		if err != nil {
			return err
		}
		if pending > 0 && !fullForce {
			color.Yellow("В журнале %d неотправленных правок.", pending)
			fmt.Println("Сначала выполните 'marketsync sync' или повторите с флагом --force.")
			return nil
		}

		fmt.Println("Загрузка полного состояния каталога...")
		result, err := app.FullSync(cmd.Context())
		if err != nil {
			return fmt.Errorf("ошибка полной загрузки: %w", err)
		}

		color.Green("Каталог загружен: %d записей", result.Downloaded)
		return nil
	},
}

func init() {
	FullCmd.Flags().BoolVar(&fullForce, "force", false, "выполнить несмотря на неотправленные правки")
}
