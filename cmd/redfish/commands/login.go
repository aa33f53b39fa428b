package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

// NewLoginCommand creates the login command
func NewLoginCommand() *cobra.Command {
	var (
		username string
		password string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login to a Redfish service",
		Long:  "Authenticate against a Redfish service endpoint, preferring a session when the service offers one",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" {
				username = viper.GetString("username")
			}

			if username == "" {
				reader := bufio.NewReader(os.Stdin)
				fmt.Print("Username: ")
				username, _ = reader.ReadString('\n')
				username = strings.TrimSpace(username)
			}

			if password == "" {
				password = viper.GetString("password")
			}

			if password == "" {
				fmt.Print("Password: ")
				bytePassword, err := term.ReadPassword(int(syscall.Stdin))
				if err != nil {
					return fmt.Errorf("failed to read password: %w", err)
				}
				password = string(bytePassword)
				fmt.Println()
			}

			config := configFromViper()
			config.Username = ""
			config.Password = ""

			root, err := connectRootWith(cmd.Context(), config)
			if err != nil {
				return err
			}

			if err := root.Login(cmd.Context(), username, password); err != nil {
				return err
			}

			defer func() { _ = root.Logout(cmd.Context()) }()

			fmt.Printf("Logged in to %s as %s\n", viper.GetString("endpoint"), username)

			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "account username")
	cmd.Flags().StringVar(&password, "password", "", "account password")

	return cmd
}
