// cmd/client/cmd/init.go
package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"marketsync/cmd/client/cmd/auth"
	"marketsync/cmd/client/cmd/category"
	"marketsync/cmd/client/cmd/image"
	"marketsync/cmd/client/cmd/product"
	"marketsync/cmd/client/cmd/sync"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Инициализировать клиент MarketSync",
	Long: `Команда init выполняет первоначальную настройку устройства:
	1. Создает локальное хранилище каталога
	2. Закрепляет за устройством идентификатор
	3. Проверяет соединение с сервером

Идентификатор устройства участвует в синхронизации: сервер ведет для
каждого устройства отдельную отметку последней синхронизации.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		fmt.Println("=== Инициализация MarketSync ===")
		fmt.Println()

		// Хранилище и идентификатор устройства уже созданы в setupApp
		fmt.Printf("Идентификатор устройства: %s\n", app.DeviceID())

		fmt.Println("Проверка соединения с сервером...")
		if err := app.CheckConnection(cmd.Context()); err != nil {
			color.Yellow("Предупреждение: не удалось подключиться к серверу: %v", err)
			fmt.Println("Вы можете работать в офлайн-режиме, но синхронизация будет недоступна.")
		} else {
			color.Green("Соединение с сервером установлено")
		}

		fmt.Println()
		color.Green("Инициализация завершена!")
		fmt.Println()
		fmt.Println("Что дальше:")
		fmt.Println("1. Зарегистрируйтесь на сервере: marketsync auth register")
		fmt.Println("2. Войдите в систему: marketsync auth login")
		fmt.Println("3. Загрузите каталог: marketsync sync full")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)

	rootCmd.AddCommand(auth.AuthCmd)
	auth.AuthCmd.AddCommand(auth.RegisterCmd)
	auth.AuthCmd.AddCommand(auth.LoginCmd)
	auth.AuthCmd.AddCommand(auth.LogoutCmd)

	rootCmd.AddCommand(product.ProductCmd)
	product.ProductCmd.AddCommand(product.CreateCmd)
	product.ProductCmd.AddCommand(product.GetCmd)
	product.ProductCmd.AddCommand(product.ListCmd)
	product.ProductCmd.AddCommand(product.UpdateCmd)
	product.ProductCmd.AddCommand(product.DeleteCmd)

	rootCmd.AddCommand(category.CategoryCmd)
	category.CategoryCmd.AddCommand(category.CreateCmd)
	category.CategoryCmd.AddCommand(category.ListCmd)
	category.CategoryCmd.AddCommand(category.DeleteCmd)

	rootCmd.AddCommand(image.ImageCmd)
	image.ImageCmd.AddCommand(image.AddCmd)
	image.ImageCmd.AddCommand(image.ListCmd)
	image.ImageCmd.AddCommand(image.RemoveCmd)

	rootCmd.AddCommand(sync.SyncCmd)
	sync.SyncCmd.AddCommand(sync.FullCmd)
	sync.SyncCmd.AddCommand(sync.ConflictsCmd)
	sync.SyncCmd.AddCommand(sync.ResolveCmd)
}
