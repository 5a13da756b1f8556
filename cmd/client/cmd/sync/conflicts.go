// cmd/client/cmd/sync/conflicts.go
package sync

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var ConflictsCmd = &cobra.Command{
	Use:   "conflicts",
	Short: "Список неразрешенных конфликтов",
	Long: `Показывает конфликты синхронизации, ожидающие разрешения на сервере.

Конфликт возникает, когда сущность правили параллельно с нескольких
устройств. Разрешение: 'marketsync sync resolve'.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		if !app.IsAuthenticated() {
			return fmt.Errorf("требуется аутентификация. Выполните: marketsync auth login")
		}

		conflicts, err := app.Conflicts(cmd.Context())
		if err != nil {
			return fmt.Errorf("ошибка получения конфликтов: %w", err)
		}

		if len(conflicts) == 0 {
			fmt.Println("Неразрешенных конфликтов нет")
			return nil
		}

		fmt.Printf("Неразрешенных конфликтов: %d\n\n", len(conflicts))

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tСУЩНОСТЬ\tОПЕРАЦИЯ\tУСТРОЙСТВО\tВРЕМЯ КЛИЕНТА")
		for _, c := range conflicts {
			fmt.Fprintf(w, "%s\t%s %s\t%s\t%s\t%s\n",
				c.ID, c.EntityType, c.EntityID, c.Operation, c.DeviceID,
				c.ClientTimestamp.Local().Format("2006-01-02 15:04:05"))
		}
		if err := w.Flush(); err != nil {
			return err
		}

		fmt.Println()
		fmt.Println("Разрешение: marketsync sync resolve <id> --keep-server|--keep-client|--merge file.json")
		return nil
	},
}
