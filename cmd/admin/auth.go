package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aTrapDeer/utworld/internal/config"
)

func (a *app) loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				email = a.profile.Email
			}
			if email == "" {
				return errors.New("--email is required")
			}
			if password == "" {
				password = os.Getenv("ADMIN_PASSWORD")
			}
			if password == "" {
				fmt.Fprint(a.out, "Password: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("reading password: %w", err)
				}
				password = strings.TrimSpace(line)
			}

			if _, err := a.client.Login(cmd.Context(), email, password); err != nil {
				return err
			}
			a.profile.Email = email
			if err := config.SaveProfile(a.profilePath, a.profile); err != nil {
				return fmt.Errorf("saving profile: %w", err)
			}
			a.success("Logged in as %s", email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email (remembered in the profile)")
	cmd.Flags().StringVar(&password, "password", "", "password (else $ADMIN_PASSWORD, else prompt)")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.Logout(); err != nil {
				return err
			}
			a.success("Logged out")
			return nil
		},
	}
}

func (a *app) meCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := a.client.Me(cmd.Context())
			if err != nil {
				return err
			}
			return a.printJSON(u)
		},
	}
}
