// cmd/client/cmd/auth/login.go
package auth

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var rememberMe bool

var LoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Войти в систему MarketSync",
	Long: `Аутентификация на сервере MarketSync.

После входа токен сохраняется локально для последующих операций.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		fmt.Println("=== Вход в систему ===")
		fmt.Println()

		fmt.Print("Логин: ")
		var login string
		_, _ = fmt.Scanln(&login)

		fmt.Print("Пароль: ")
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			return fmt.Errorf("ошибка чтения пароля: %w", err)
		}
		fmt.Println()

		fmt.Println("Аутентификация...")
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		token, err := app.Login(ctx, login, string(password))
		if err != nil {
			return fmt.Errorf("ошибка аутентификации: %w", err)
		}

		if rememberMe {
			if err := app.SaveToken(token); err != nil {
				return fmt.Errorf("ошибка сохранения токена: %w", err)
			}
		}

		fmt.Println()
		color.Green("Вход выполнен успешно!")

		// Сразу подтягиваем изменения сервера
		fmt.Println("Синхронизация каталога...")
		result, err := app.Sync(ctx)
		if err != nil {
			color.Yellow("Предупреждение: ошибка синхронизации: %v", err)
			fmt.Println("Вы можете продолжить работу в офлайн-режиме")
		} else if !result.Success {
			color.Yellow("Синхронизация завершена с ошибками (%d)", len(result.Errors))
		} else {
			color.Green("Каталог синхронизирован")
		}

		return nil
	},
}

func init() {
	LoginCmd.Flags().BoolVarP(&rememberMe, "remember", "r", true, "сохранить токен на устройстве")
}
