// cmd/client/cmd/sync/sync.go
package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"marketsync/cmd/client/cmd/types"
	"marketsync/internal/app/client"
)

var syncStatus bool

var SyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Синхронизация с сервером",
	Long: `Отправляет накопленные локальные правки на сервер и забирает
изменения, сделанные с других устройств.

Конфликты параллельных правок фиксируются на сервере; их список
доступен через 'marketsync sync conflicts'.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		if syncStatus {
			return showStatus(app)
		}

		return runSync(cmd.Context(), app)
	},
}

func runSync(ctx context.Context, app *client.App) error {
	fmt.Println("=== Синхронизация каталога ===")

	if !app.IsAuthenticated() {
		return fmt.Errorf("требуется аутентификация. Выполните: marketsync auth login")
	}

	fmt.Println("Проверка соединения с сервером...")
	if err := app.CheckConnection(ctx); err != nil {
		return fmt.Errorf("сервер недоступен: %w", err)
	}

	fmt.Println("Начало синхронизации...")
	result, err := app.Sync(ctx)
	if err != nil {
		return fmt.Errorf("ошибка синхронизации: %w", err)
	}

	fmt.Println()
	color.Green("Синхронизация завершена!")
	fmt.Printf("Время выполнения: %v\n", result.Duration.Round(time.Millisecond))
	fmt.Printf("Отправлено на сервер: %d\n", result.Uploaded)
	fmt.Printf("Получено с сервера: %d\n", result.Downloaded)

	if result.Conflicts > 0 {
		color.Yellow("Обнаружено конфликтов: %d", result.Conflicts)
		fmt.Println("Используйте 'marketsync sync conflicts' для просмотра")
	}

	if len(result.Errors) > 0 {
		color.Red("Ошибок при синхронизации: %d", len(result.Errors))
		for i, e := range result.Errors {
			if i >= 3 {
				fmt.Printf("  ... и еще %d ошибок\n", len(result.Errors)-3)
				break
			}
			fmt.Printf("  • %s %s: %s\n", e.Operation, e.EntityID, e.Error)
		}
	}

	return nil
}

func showStatus(app *client.App) error {
	fmt.Println("=== Статус синхронизации ===")

	fmt.Printf("Устройство: %s\n", app.DeviceID())

	pending, err := app.PendingCount()
	if err != nil {
		return err
	}
	fmt.Printf("Неотправленных правок: %d\n", pending)

	lastSync, err := app.LastSyncAt()
	if err != nil {
		return err
	}
	if lastSync.IsZero() {
		fmt.Println("Синхронизация еще не выполнялась")
	} else {
		fmt.Printf("Последняя синхронизация: %s\n", lastSync.Local().Format("2006-01-02 15:04:05"))
	}

	stats := app.SyncStats()
	if stats.TotalSyncs > 0 {
		fmt.Printf("Проходов за сессию: %d (отправлено %d, получено %d, конфликтов %d)\n",
			stats.TotalSyncs, stats.TotalUploaded, stats.TotalDownloaded, stats.TotalConflicts)
	}

	return nil
}

func appFrom(cmd *cobra.Command) (*client.App, error) {
	app, _ := cmd.Context().Value(types.ClientAppKey).(*client.App)
	if app == nil {
		return nil, fmt.Errorf("приложение не инициализировано")
	}
	return app, nil
}

func init() {
	SyncCmd.Flags().BoolVarP(&syncStatus, "status", "s", false, "показать статус синхронизации")
}
