// cmd/client/cmd/auth/register.go
package auth

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"marketsync/internal/domain/user"
)

var RegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Зарегистрировать продавца",
	Long: `Регистрация учетной записи продавца и его бизнеса на сервере.

Все товары и категории, которые создаст это устройство, будут
принадлежать зарегистрированному бизнесу.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		fmt.Println("=== Регистрация ===")
		fmt.Println()

		fmt.Print("Логин: ")
		var login string
		_, _ = fmt.Scanln(&login)

		fmt.Print("Название бизнеса: ")
		reader := bufio.NewReader(os.Stdin)
		businessName, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("ошибка чтения названия бизнеса: %w", err)
		}
		businessName = strings.TrimSpace(businessName)

		fmt.Print("Пароль: ")
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			return fmt.Errorf("ошибка чтения пароля: %w", err)
		}
		fmt.Println()

		fmt.Print("Повторите пароль: ")
		passwordConfirm, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			return fmt.Errorf("ошибка чтения пароля: %w", err)
		}
		fmt.Println()

		if string(password) != string(passwordConfirm) {
			return fmt.Errorf("пароли не совпадают")
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		businessID, err := app.Register(ctx, user.RegisterRequest{
			BaseRequest: user.BaseRequest{
				Login:    login,
				Password: string(password),
			},
			BusinessName: businessName,
		})
		if err != nil {
			return fmt.Errorf("ошибка регистрации: %w", err)
		}

		fmt.Println()
		color.Green("Регистрация завершена! Идентификатор бизнеса: %d", businessID)
		fmt.Println("Теперь войдите в систему: marketsync auth login")

		return nil
	},
}
