// cmd/client/cmd/sync/resolve.go
package sync

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	domainsync "marketsync/internal/domain/sync"
)

var (
	keepServer bool
	keepClient bool
	mergeFile  string
)

var ResolveCmd = &cobra.Command{
	Use:   "resolve [conflict-id]",
	Short: "Разрешить конфликт",
	Long: `Разрешает конфликт синхронизации на сервере.

Способы разрешения:
  --keep-server  оставить серверную версию, правку устройства отбросить
  --keep-client  применить правку устройства поверх серверной версии
  --merge FILE   применить объединенный документ из JSON-файла

После разрешения запустите 'marketsync sync', чтобы итоговое состояние
разошлось на устройства.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		if !app.IsAuthenticated() {
			return fmt.Errorf("требуется аутентификация. Выполните: marketsync auth login")
		}

		var resolution domainsync.Resolution
		var merged json.RawMessage

		switch {
		case keepServer && !keepClient && mergeFile == "":
			resolution = domainsync.ResolutionKeepServer
		case keepClient && !keepServer && mergeFile == "":
			resolution = domainsync.ResolutionKeepClient
		case mergeFile != "" && !keepServer && !keepClient:
			resolution = domainsync.ResolutionMerge
			data, err := os.ReadFile(mergeFile)
			if err != nil {
				return fmt.Errorf("ошибка чтения файла объединения: %w", err)
			}
			if !json.Valid(data) {
				return fmt.Errorf("файл объединения содержит невалидный JSON")
			}
			merged = data
		default:
			return fmt.Errorf("укажите ровно один способ разрешения: --keep-server, --keep-client или --merge")
		}

		if err := app.ResolveConflict(cmd.Context(), args[0], resolution, merged); err != nil {
			return fmt.Errorf("ошибка разрешения конфликта: %w", err)
		}

		color.Green("Конфликт разрешен: %s (%s)", args[0], resolution)
		return nil
	},
}

func init() {
	ResolveCmd.Flags().BoolVar(&keepServer, "keep-server", false, "оставить серверную версию")
	ResolveCmd.Flags().BoolVar(&keepClient, "keep-client", false, "применить правку устройства")
	ResolveCmd.Flags().StringVar(&mergeFile, "merge", "", "JSON-файл с объединенным документом")
}
